package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/geocoder89/boardhub/internal/actorctx"
	"github.com/geocoder89/boardhub/internal/auth"
	"github.com/geocoder89/boardhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLoggerAddsUserID(t *testing.T) {
	var buf bytes.Buffer
	log := observability.NewLoggerTo(&buf, "test")

	ctx := actorctx.WithPrincipal(context.Background(), auth.Principal{ID: "u-1"})
	log.InfoContext(ctx, "hello")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v: %s", err, buf.String())
	}

	if line["user_id"] != "u-1" {
		t.Fatalf("got user_id=%v, want u-1", line["user_id"])
	}
	if line["service"] != observability.ServiceName {
		t.Fatalf("got service=%v", line["service"])
	}
}

func TestObserveDB(t *testing.T) {
	p := observability.NewProm(prometheus.NewRegistry())

	_ = p.ObserveDB("users.get", func() error { return nil })
	_ = p.ObserveDB("users.get", func() error { return pgx.ErrNoRows })
	_ = p.ObserveDB("users.create", func() error { return &pgconn.PgError{Code: "23505"} })
	_ = p.ObserveDB("projects.create", func() error { return &pgconn.PgError{Code: "23503"} })
	_ = p.ObserveDB("projects.list", func() error { return errors.New("connection reset") })

	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.create", "unique_violation")); got != 1 {
		t.Fatalf("unique_violation: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("projects.create", "foreign_key_violation")); got != 1 {
		t.Fatalf("foreign_key_violation: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("projects.list", "connection")); got != 1 {
		t.Fatalf("connection: got %v, want 1", got)
	}
	if got := testutil.CollectAndCount(p.DbErrorsTotal); got != 3 {
		t.Fatalf("got %d error series, want 3 (no-rows is not an error)", got)
	}

	var nilProm *observability.Prom
	called := false
	_ = nilProm.ObserveDB("noop", func() error { called = true; return nil })
	if !called {
		t.Fatalf("nil Prom must still run fn")
	}
	nilProm.AuthEvent("login", "ok")
}

func TestGinHandleMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	p := observability.NewProm(prometheus.NewRegistry())

	r := gin.New()
	r.Use(p.GinHandleMiddleware())
	r.GET("/board/projects/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/board/projects/abc", nil))
	}

	if got := testutil.ToFloat64(p.RequestsTotal.WithLabelValues("GET", "/board/projects/:id", "200")); got != 3 {
		t.Fatalf("got %v requests, want 3", got)
	}
}
