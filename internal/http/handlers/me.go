package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/boardhub/internal/config"
	"github.com/geocoder89/boardhub/internal/domain/user"
	"github.com/geocoder89/boardhub/internal/security"
	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	users UserStore
}

func NewMeHandler(users UserStore) *MeHandler {
	return &MeHandler{users: users}
}

// UpdateMeRequest changes the caller's own account. Changing the email
// invalidates outstanding tokens, since tokens are issued for the email.
type UpdateMeRequest struct {
	Username *string `json:"username" binding:"omitempty,min=1,max=64"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
}

func (h *MeHandler) Get(ctx *gin.Context) {
	p, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, p.ID)
	if err != nil {
		respondStoreError(ctx, err, "Could not load user")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, u)
}

func (h *MeHandler) Patch(ctx *gin.Context) {
	p, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	var req UpdateMeRequest
	if !BindJSON(ctx, &req) {
		return
	}

	patch := user.Patch{Username: req.Username}
	if req.Email != nil {
		email := user.NormalizeEmail(*req.Email)
		patch.Email = &email
	}
	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			RespondBadRequest(ctx, "Password could not be accepted", nil)
			return
		}
		patch.PasswordHash = &hash
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		RespondBadRequest(ctx, "Username must not be blank", nil)
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	var (
		u   user.User
		err error
	)
	if patch.IsEmpty() {
		u, err = h.users.GetByID(cctx, p.ID)
	} else {
		u, err = h.users.Update(cctx, p.ID, patch)
	}
	if err != nil {
		respondStoreError(ctx, err, "Could not update user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *MeHandler) Delete(ctx *gin.Context) {
	p, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.users.Delete(cctx, p.ID); err != nil {
		respondStoreError(ctx, err, "Could not delete user")
		return
	}

	ctx.Status(http.StatusNoContent)
}
