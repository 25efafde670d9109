package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/boardhub/internal/actorctx"
	"github.com/geocoder89/boardhub/internal/auth"
	"github.com/geocoder89/boardhub/internal/observability"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (auth.Principal, error)
}

type AuthMiddleware struct {
	guard PrincipalResolver
	prom  *observability.Prom
}

func NewAuthMiddleware(guard PrincipalResolver, prom *observability.Prom) *AuthMiddleware {
	return &AuthMiddleware{guard: guard, prom: prom}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := auth.ParseBearer(c.GetHeader("Authorization"))
		if !ok {
			m.prom.AuthEvent("guard", "missing_token")
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
			return
		}

		p, err := m.guard.Resolve(c.Request.Context(), raw)
		switch {
		case err == nil:
		case errors.Is(err, auth.ErrUnauthorized):
			m.prom.AuthEvent("guard", reasonOf(err))
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Invalid or expired access token")
			return
		case errors.Is(err, auth.ErrUserNotFound):
			m.prom.AuthEvent("guard", "user_not_found")
			abortJSON(c, http.StatusNotFound, "user_not_found", "Could not find user")
			return
		default:
			slog.Default().ErrorContext(c.Request.Context(), "resolve principal failed", "err", err)
			abortJSON(c, http.StatusInternalServerError, "internal_error", "Could not authenticate request")
			return
		}

		m.prom.AuthEvent("guard", "ok")

		c.Set(ctxPrincipal, p)
		c.Request = c.Request.WithContext(actorctx.WithPrincipal(c.Request.Context(), p))

		c.Next()
	}
}

func PrincipalFromContext(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(ctxPrincipal)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok
}

func reasonOf(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpired):
		return "expired"
	case errors.Is(err, auth.ErrTokenType):
		return "wrong_token_type"
	default:
		return "invalid_signature"
	}
}
