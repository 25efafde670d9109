package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/geocoder89/boardhub/internal/config"
	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/geocoder89/boardhub/internal/security"
	"gopkg.in/yaml.v3"
)

// UserStore is the slice of the credential store seeding needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, p user.CreateParams) (user.User, error)
}

// EnsureAdminUser creates the bootstrap admin if configured and missing.
func EnsureAdminUser(ctx context.Context, users UserStore, cfg config.AdminConfig) (bool, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return false, nil
	}

	return ensureUser(ctx, users, SeedUser{
		Username: cfg.Username,
		Email:    cfg.Email,
		Password: cfg.Password,
		Role:     user.RoleAdmin,
	})
}

type SeedUser struct {
	Username string    `yaml:"username"`
	Email    string    `yaml:"email"`
	Password string    `yaml:"password"`
	Role     user.Role `yaml:"role"`
}

type seedFile struct {
	Users []SeedUser `yaml:"users"`
}

// SeedFromFile loads users from a YAML file such as:
//
//	users:
//	  - username: ops
//	    email: ops@example.com
//	    password: change-me-now
//	    role: admin
//
// Existing emails are skipped. It returns how many users were created.
func SeedFromFile(ctx context.Context, users UserStore, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	return SeedFromYAML(ctx, users, data)
}

func SeedFromYAML(ctx context.Context, users UserStore, data []byte) (int, error) {
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}

	created := 0
	for _, u := range sf.Users {
		if u.Email == "" || u.Password == "" {
			continue
		}

		ok, err := ensureUser(ctx, users, u)
		if err != nil {
			return created, fmt.Errorf("seed %s: %w", u.Email, err)
		}
		if ok {
			created++
		}
	}

	return created, nil
}

func ensureUser(ctx context.Context, users UserStore, su SeedUser) (bool, error) {
	email := user.NormalizeEmail(su.Email)

	_, err := users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return false, err
	}

	hash, err := security.HashPassword(su.Password)
	if err != nil {
		return false, err
	}

	role := su.Role
	if role == "" {
		role = user.DefaultRole
	}

	username := su.Username
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}

	_, err = users.Create(ctx, user.CreateParams{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if errors.Is(err, user.ErrEmailTaken) {
		// another instance seeded it first
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}
