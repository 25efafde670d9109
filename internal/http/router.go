package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/boardhub/internal/auth"
	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/geocoder89/boardhub/internal/http/handlers"
	"github.com/geocoder89/boardhub/internal/http/middlewares"
	"github.com/geocoder89/boardhub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

type Deps struct {
	Log  *slog.Logger
	Prod bool

	Users       handlers.UserStore
	Profiles    handlers.ProfileStore
	Projects    handlers.ProjectStore
	Tickets     handlers.TicketStore
	Tokens      *auth.Manager
	Revocations auth.Revocations

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	ReadyChecks map[string]handlers.ReadyCheck

	CORSAllowedOrigins []string
	RateLimitAuth      int
	RateLimitWindow    time.Duration
}

func NewRouter(d Deps) *gin.Engine {
	if d.Prod {
		gin.SetMode(gin.ReleaseMode)
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(observability.ServiceName))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders(d.Prod))
	r.Use(middlewares.CORSMiddleware(d.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))
	r.Use(middlewares.RequireJSON())

	health := handlers.NewHealthHandler(d.ReadyChecks)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	guard := auth.NewGuard(d.Tokens, d.Users)
	authMW := middlewares.NewAuthMiddleware(guard, d.Prom)

	limit := d.RateLimitAuth
	if limit <= 0 {
		limit = 20
	}
	window := d.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	limiter := middlewares.NewRateLimiter(limit, window)

	authH := handlers.NewAuthHandler(d.Users, d.Tokens, d.Revocations, d.Prom)
	meH := handlers.NewMeHandler(d.Users)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/signup", limiter.Middleware(middlewares.KeyByIP), authH.SignUp)
		authGroup.POST("/login", limiter.Middleware(middlewares.KeyByIP), authH.Login)
		authGroup.POST("/refresh", limiter.Middleware(middlewares.KeyByIP), authH.Refresh)
		authGroup.POST("/logout", authH.Logout)

		me := authGroup.Group("/me", authMW.RequireAuth())
		me.GET("", meH.Get)
		me.PATCH("", meH.Patch)
		me.DELETE("", meH.Delete)
	}

	profilesH := handlers.NewProfilesHandler(d.Profiles)
	projectsH := handlers.NewProjectsHandler(d.Projects)
	ticketsH := handlers.NewTicketsHandler(d.Tickets, d.Projects)

	board := r.Group("/board", authMW.RequireAuth())
	{
		board.GET("/profiles", authMW.RequireRole(auth.NewRoleGate(user.RoleAdmin)), profilesH.List)

		board.GET("/my_profile", profilesH.GetMine)
		board.POST("/my_profile", profilesH.CreateMine)
		board.PATCH("/my_profile", profilesH.PatchMine)

		board.GET("/projects", projectsH.List)
		board.POST("/projects", projectsH.Create)
		board.GET("/projects/:id", projectsH.Get)
		board.PATCH("/projects/:id", projectsH.Update)
		board.DELETE("/projects/:id", projectsH.Delete)

		board.GET("/tickets", ticketsH.List)
		board.POST("/tickets", ticketsH.Create)
		board.GET("/tickets/:id", ticketsH.Get)
		board.PATCH("/tickets/:id", ticketsH.Update)
		board.DELETE("/tickets/:id", ticketsH.Delete)
	}

	return r
}
