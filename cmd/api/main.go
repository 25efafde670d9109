package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/boardhub/internal/auth"
	"github.com/geocoder89/boardhub/internal/config"
	"github.com/geocoder89/boardhub/internal/db"
	httpx "github.com/geocoder89/boardhub/internal/http"
	"github.com/geocoder89/boardhub/internal/http/handlers"
	"github.com/geocoder89/boardhub/internal/observability"
	"github.com/geocoder89/boardhub/internal/repo/memory"
	"github.com/geocoder89/boardhub/internal/repo/postgres"
	"github.com/geocoder89/boardhub/internal/repo/redisstore"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		slog.Error("boardhub exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := observability.NewLogger(cfg.Env)

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTelEnabled, cfg.OTelEndpoint, cfg.Env)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		sctx, cancel := config.WithTimeout(5 * time.Second)
		defer cancel()
		if err := shutdownTracer(sctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	tokens, err := auth.NewManager(cfg.JWT.Secret, cfg.JWT.Algorithm, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	if err != nil {
		return fmt.Errorf("token manager: %w", err)
	}

	deps := httpx.Deps{
		Log:                log,
		Prod:               cfg.IsProd(),
		Tokens:             tokens,
		Prom:               prom,
		Gatherer:           reg,
		ReadyChecks:        map[string]handlers.ReadyCheck{},
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitAuth:      cfg.RateLimitAuth,
		RateLimitWindow:    cfg.RateLimitWindow,
	}

	var users db.UserStore

	switch cfg.StorageDriver {
	case config.DriverPostgres:
		pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()

		if err := db.ApplySchema(ctx, pool); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}

		roles := postgres.NewRolesRepo(pool, prom)
		pgUsers := postgres.NewUsersRepo(pool, prom, roles)

		users = pgUsers
		deps.Users = pgUsers
		deps.Profiles = postgres.NewProfilesRepo(pool, prom)
		deps.Projects = postgres.NewProjectsRepo(pool, prom)
		deps.Tickets = postgres.NewTicketsRepo(pool, prom)
		deps.ReadyChecks["postgres"] = pool.Ping

	case config.DriverMemory:
		store := memory.NewStore()

		users = store.Users()
		deps.Users = store.Users()
		deps.Profiles = store.Profiles()
		deps.Projects = store.Projects()
		deps.Tickets = store.Tickets()
	}

	if cfg.Redis.Addr != "" {
		rc := redisstore.New(redisstore.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rc.Close() }()

		pctx, cancel := config.WithTimeoutFrom(ctx, 3*time.Second)
		err := rc.Ping(pctx)
		cancel()
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}

		deps.Revocations = redisstore.NewTokenDenylist(rc)
		deps.ReadyChecks["redis"] = rc.Ping
	} else {
		deps.Revocations = memory.NewTokenDenylist()
	}

	if created, err := db.EnsureAdminUser(ctx, users, cfg.Admin); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	} else if created {
		log.Info("admin user created", "email", cfg.Admin.Email)
	}

	if cfg.SeedUsersFile != "" {
		n, err := db.SeedFromFile(ctx, users, cfg.SeedUsersFile)
		if err != nil {
			return fmt.Errorf("seed users: %w", err)
		}
		log.Info("seed users loaded", "file", cfg.SeedUsersFile, "created", n)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httpx.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	sctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
