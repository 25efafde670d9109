package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/boardhub/internal/auth"
	"github.com/geocoder89/boardhub/internal/domain/profile"
	"github.com/geocoder89/boardhub/internal/domain/project"
	"github.com/geocoder89/boardhub/internal/domain/ticket"
	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get("request_id")

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, "unauthorized", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// respondStoreError maps domain errors to the API taxonomy.
// Anything unrecognised is logged and reported as a 500 with fallback as message.
func respondStoreError(ctx *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, project.ErrNotFound):
		RespondNotFound(ctx, "Project not found")
	case errors.Is(err, ticket.ErrNotFound):
		RespondNotFound(ctx, "Ticket not found")
	case errors.Is(err, profile.ErrNotFound):
		RespondNotFound(ctx, "Profile not found")
	case errors.Is(err, user.ErrNotFound), errors.Is(err, auth.ErrUserNotFound):
		RespondError(ctx, http.StatusNotFound, "user_not_found", "Could not find user", nil)
	case errors.Is(err, profile.ErrAlreadyExists):
		RespondConflict(ctx, "profile_exists", "Profile already exists for this user")
	case errors.Is(err, user.ErrOwnerNotFound):
		RespondError(ctx, http.StatusBadRequest, "owner_not_found", "Referenced user does not exist", nil)
	case errors.Is(err, user.ErrEmailTaken):
		RespondError(ctx, http.StatusBadRequest, "duplicate_email", "User with this email already exists", nil)
	default:
		slog.Default().ErrorContext(ctx.Request.Context(), fallback, "err", err)
		RespondInternal(ctx, fallback)
	}
}
