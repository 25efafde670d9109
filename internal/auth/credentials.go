package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/geocoder89/boardhub/internal/security"
)

var ErrInvalidCredentials = errors.New("incorrect email or password")

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// Authenticate returns ErrInvalidCredentials for both an unknown email and a wrong password.
func Authenticate(ctx context.Context, users UserLookup, email, password string) (user.User, error) {
	u, err := users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// equalise timing with the wrong-password path
			_ = security.CheckPassword(fallbackHash(), password)
			return user.User{}, ErrInvalidCredentials
		}
		return user.User{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := security.CheckPassword(u.PasswordHash, password); err != nil {
		return user.User{}, ErrInvalidCredentials
	}

	return u, nil
}

func fallbackHash() string {
	dummyHashOnce.Do(func() {
		dummyHash, _ = security.HashPassword("boardhub-timing-placeholder")
	})
	return dummyHash
}
