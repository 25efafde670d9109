package handlers

import (
	"github.com/geocoder89/boardhub/internal/access"
	"github.com/geocoder89/boardhub/internal/actorctx"
	"github.com/geocoder89/boardhub/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// principalOrAbort reads the caller RequireAuth attached to the request context.
func principalOrAbort(ctx *gin.Context) (auth.Principal, bool) {
	p, ok := actorctx.PrincipalFrom(ctx.Request.Context())
	if !ok {
		RespondUnauthorized(ctx, "Authentication required")
		return auth.Principal{}, false
	}
	return p, true
}

func scopeOrAbort(ctx *gin.Context) (access.Scope, bool) {
	p, ok := principalOrAbort(ctx)
	if !ok {
		return access.Scope{}, false
	}
	return access.ScopeFor(p), true
}

// pathID returns the :id param. Malformed ids are reported as not found.
func pathID(ctx *gin.Context, notFound string) (string, bool) {
	id := ctx.Param("id")
	if uuid.Validate(id) != nil {
		RespondNotFound(ctx, notFound)
		return "", false
	}
	return id, true
}
