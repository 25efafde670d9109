package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/boardhub/internal/domain/user"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrUserNotFound = errors.New("could not find user")
)

// Principal is the authenticated caller.
type Principal struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     user.Role `json:"role"`
}

func (p Principal) IsAdmin() bool {
	return p.Role.IsAdmin()
}

func PrincipalOf(u user.User) Principal {
	return Principal{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type AccessVerifier interface {
	VerifyAccess(raw string, now time.Time) (*Claims, error)
}

type Guard struct {
	tokens AccessVerifier
	users  UserLookup
	now    func() time.Time
}

func NewGuard(tokens AccessVerifier, users UserLookup) *Guard {
	return &Guard{tokens: tokens, users: users, now: time.Now}
}

// WithClock replaces the wall clock, mostly for tests.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

func (g *Guard) Resolve(ctx context.Context, raw string) (Principal, error) {
	claims, err := g.tokens.VerifyAccess(raw, g.now())
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	u, err := g.users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Principal{}, ErrUserNotFound
		}
		return Principal{}, fmt.Errorf("resolve principal: %w", err)
	}

	return PrincipalOf(u), nil
}

// ParseBearer extracts the token from an Authorization header value.
func ParseBearer(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
