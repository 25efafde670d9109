package db_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/geocoder89/boardhub/internal/config"
	"github.com/geocoder89/boardhub/internal/db"
	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/geocoder89/boardhub/internal/repo/memory"
	"github.com/geocoder89/boardhub/internal/security"
)

func TestEnsureAdminUser(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()

	created, err := db.EnsureAdminUser(ctx, users, config.AdminConfig{})
	if err != nil || created {
		t.Fatalf("unconfigured admin: got (%v, %v)", created, err)
	}

	cfg := config.AdminConfig{Email: "Root@Example.com", Password: "root-password", Username: "root"}

	created, err = db.EnsureAdminUser(ctx, users, cfg)
	if err != nil || !created {
		t.Fatalf("first run: got (%v, %v)", created, err)
	}

	created, err = db.EnsureAdminUser(ctx, users, cfg)
	if err != nil || created {
		t.Fatalf("second run should be a no-op: got (%v, %v)", created, err)
	}

	u, err := users.GetByEmail(ctx, "root@example.com")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if u.Role != user.RoleAdmin {
		t.Fatalf("got role %s, want admin", u.Role)
	}
	if err := security.CheckPassword(u.PasswordHash, "root-password"); err != nil {
		t.Fatalf("stored hash does not match: %v", err)
	}
}

func TestSeedFromFile(t *testing.T) {
	ctx := context.Background()
	users := memory.NewStore().Users()

	path := filepath.Join(t.TempDir(), "users.yaml")
	data := []byte(`
users:
  - username: ops
    email: ops@example.com
    password: ops-password
    role: admin
  - email: dev@example.com
    password: dev-password
  - email: nopassword@example.com
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write seed file: %v", err)
	}

	n, err := db.SeedFromFile(ctx, users, path)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != 2 {
		t.Fatalf("created %d users, want 2", n)
	}

	dev, err := users.GetByEmail(ctx, "dev@example.com")
	if err != nil {
		t.Fatalf("lookup dev: %v", err)
	}
	if dev.Role != user.DefaultRole || dev.Username != "dev" {
		t.Fatalf("defaults not applied: %+v", dev)
	}

	n, err = db.SeedFromFile(ctx, users, path)
	if err != nil || n != 0 {
		t.Fatalf("reseed should skip existing users: got (%d, %v)", n, err)
	}
}

func TestSeedFromYAML_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "unknown_role", data: "users:\n  - email: a@example.com\n    password: a-password\n    role: owner\n"},
		{name: "malformed", data: "users: [\n"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			if _, err := db.SeedFromYAML(context.Background(), memory.NewStore().Users(), []byte(tt.data)); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}

	if _, err := db.SeedFromFile(context.Background(), memory.NewStore().Users(), filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("missing file should fail")
	}
}
