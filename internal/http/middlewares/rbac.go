package middlewares

import (
	"net/http"

	"github.com/geocoder89/boardhub/internal/auth"
	"github.com/gin-gonic/gin"
)

// RequireRole must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(gate auth.RoleGate) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)
		if !ok {
			abortJSON(c, http.StatusUnauthorized, "unauthorized", "Missing identity context")
			return
		}

		if err := gate.Check(p); err != nil {
			m.prom.AuthEvent("gate", "forbidden")
			abortJSON(c, http.StatusForbidden, "forbidden", "Operation not permitted")
			return
		}

		c.Next()
	}
}
