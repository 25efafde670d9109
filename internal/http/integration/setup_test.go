package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/geocoder89/boardhub/internal/auth"
	"github.com/geocoder89/boardhub/internal/config"
	"github.com/geocoder89/boardhub/internal/db"
	apphttp "github.com/geocoder89/boardhub/internal/http"
	"github.com/geocoder89/boardhub/internal/http/handlers"
	"github.com/geocoder89/boardhub/internal/observability"
	"github.com/geocoder89/boardhub/internal/repo/memory"
	"github.com/geocoder89/boardhub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin-password"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func baseDeps(t *testing.T) apphttp.Deps {
	t.Helper()

	tokens, err := auth.NewManager("integration-secret", "HS256", 30*time.Minute, 24*time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	reg := prometheus.NewRegistry()

	return apphttp.Deps{
		Log:             testLogger(),
		Tokens:          tokens,
		Revocations:     memory.NewTokenDenylist(),
		Prom:            observability.NewProm(reg),
		Gatherer:        reg,
		RateLimitAuth:   1000,
		RateLimitWindow: time.Minute,
	}
}

func seedAdmin(t *testing.T, users db.UserStore) {
	t.Helper()

	_, err := db.EnsureAdminUser(context.Background(), users, config.AdminConfig{
		Email:    adminEmail,
		Password: adminPassword,
		Username: "admin",
	})
	if err != nil {
		t.Fatalf("seed admin: %v", err)
	}
}

func setupMemoryRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	seedAdmin(t, store.Users())

	d := baseDeps(t)
	d.Users = store.Users()
	d.Profiles = store.Profiles()
	d.Projects = store.Projects()
	d.Tickets = store.Tickets()

	return apphttp.NewRouter(d)
}

// setupPostgresRouter runs against TEST_DB_DSN and skips when it is unset.
func setupPostgresRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to create pgx pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.ApplySchema(ctx, pool); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE tickets, projects, profiles, users CASCADE`); err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}

	d := baseDeps(t)
	roles := postgres.NewRolesRepo(pool, d.Prom)
	users := postgres.NewUsersRepo(pool, d.Prom, roles)
	seedAdmin(t, users)

	d.Users = users
	d.Profiles = postgres.NewProfilesRepo(pool, d.Prom)
	d.Projects = postgres.NewProjectsRepo(pool, d.Prom)
	d.Tickets = postgres.NewTicketsRepo(pool, d.Prom)
	d.ReadyChecks = map[string]handlers.ReadyCheck{"postgres": pool.Ping}

	return apphttp.NewRouter(d)
}

type client struct {
	t      *testing.T
	router *gin.Engine
}

func (c client) do(method, path, bearer string, body any) *httptest.ResponseRecorder {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	return w
}

func (c client) expect(w *httptest.ResponseRecorder, status int) {
	c.t.Helper()
	if w.Code != status {
		c.t.Fatalf("got status %d, want %d, body=%s", w.Code, status, w.Body.String())
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v body=%s", err, w.Body.String())
	}
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	resp := decode[struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}](t, w)
	return resp.Error.Code
}

func (c client) signUp(username, email, password string) map[string]any {
	c.t.Helper()

	w := c.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	c.expect(w, http.StatusCreated)
	return decode[map[string]any](c.t, w)
}

func (c client) login(email, password string) auth.TokenPair {
	c.t.Helper()

	w := c.do(http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password})
	c.expect(w, http.StatusOK)
	return decode[auth.TokenPair](c.t, w)
}
