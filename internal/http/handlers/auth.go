package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/boardhub/internal/auth"
	"github.com/geocoder89/boardhub/internal/config"
	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/geocoder89/boardhub/internal/observability"
	"github.com/geocoder89/boardhub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, p user.CreateParams) (user.User, error)
	Update(ctx context.Context, id string, p user.Patch) (user.User, error)
	Delete(ctx context.Context, id string) error
}

type AuthHandler struct {
	users       UserStore
	tokens      *auth.Manager
	revocations auth.Revocations
	prom        *observability.Prom
	now         func() time.Time
}

func NewAuthHandler(users UserStore, tokens *auth.Manager, revocations auth.Revocations, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		users:       users,
		tokens:      tokens,
		revocations: revocations,
		prom:        prom,
		now:         time.Now,
	}
}

// WithClock replaces the clock used to issue and verify tokens.
func (h *AuthHandler) WithClock(now func() time.Time) *AuthHandler {
	h.now = now
	return h
}

type SignUpRequest struct {
	Username string `json:"username" binding:"required,min=1,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest
	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		RespondBadRequest(ctx, "Password could not be accepted", nil)
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.users.Create(cctx, user.CreateParams{
		Username:     req.Username,
		Email:        user.NormalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         user.DefaultRole,
	})
	if err != nil {
		h.prom.AuthEvent("signup", "error")
		respondStoreError(ctx, err, "Could not create user")
		return
	}

	h.prom.AuthEvent("signup", "ok")
	ctx.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := auth.Authenticate(cctx, h.users, user.NormalizeEmail(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.prom.AuthEvent("login", "invalid_credentials")
			RespondError(ctx, http.StatusBadRequest, "invalid_credentials", "Incorrect email or password", nil)
			return
		}
		respondStoreError(ctx, err, "Could not log in")
		return
	}

	pair, err := h.tokens.IssuePair(u.Email, h.now())
	if err != nil {
		RespondInternal(ctx, "Could not issue tokens")
		return
	}

	h.prom.AuthEvent("login", "ok")
	ctx.JSON(http.StatusOK, pair)
}

// Refresh rotates a refresh token: the presented jti is revoked and a new pair is issued.
// The refresh token travels as the bearer credential.
func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, ok := auth.ParseBearer(ctx.GetHeader("Authorization"))
	if !ok {
		RespondUnauthorized(ctx, "Missing refresh token")
		return
	}

	now := h.now()
	claims, err := h.tokens.VerifyRefresh(raw, now)
	if err != nil {
		h.prom.AuthEvent("refresh", "invalid")
		RespondUnauthorized(ctx, "Invalid or expired refresh token")
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	revoked, err := h.revocations.Revoke(cctx, claims.ID, claims.ExpiresAt.Time)
	if err != nil {
		respondStoreError(ctx, err, "Could not refresh session")
		return
	}
	if !revoked {
		h.prom.AuthEvent("refresh", "reused")
		RespondUnauthorized(ctx, "Refresh token already used")
		return
	}

	u, err := h.users.GetByEmail(cctx, claims.Subject)
	if err != nil {
		respondStoreError(ctx, err, "Could not refresh session")
		return
	}

	pair, err := h.tokens.IssuePair(u.Email, now)
	if err != nil {
		RespondInternal(ctx, "Could not issue tokens")
		return
	}

	h.prom.AuthEvent("refresh", "ok")
	ctx.JSON(http.StatusOK, pair)
}

// Logout is idempotent. Invalid or already revoked tokens still get a 204.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, ok := auth.ParseBearer(ctx.GetHeader("Authorization"))
	if ok {
		if claims, err := h.tokens.VerifyRefresh(raw, h.now()); err == nil {
			cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
			defer cancel()

			if _, err := h.revocations.Revoke(cctx, claims.ID, claims.ExpiresAt.Time); err != nil {
				respondStoreError(ctx, err, "Could not log out")
				return
			}
			h.prom.AuthEvent("logout", "ok")
		}
	}

	ctx.Status(http.StatusNoContent)
}
