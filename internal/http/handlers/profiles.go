package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/boardhub/internal/access"
	"github.com/geocoder89/boardhub/internal/config"
	"github.com/geocoder89/boardhub/internal/domain/profile"
	"github.com/gin-gonic/gin"
)

type ProfileStore interface {
	List(ctx context.Context) ([]profile.Profile, error)
	GetByUserID(ctx context.Context, userID string) (profile.Profile, error)
	Create(ctx context.Context, np profile.NewParams) (profile.Profile, error)
	UpdateByUserID(ctx context.Context, userID string, patch profile.Patch) (profile.Profile, error)
}

type ProfilesHandler struct {
	profiles ProfileStore
}

func NewProfilesHandler(profiles ProfileStore) *ProfilesHandler {
	return &ProfilesHandler{profiles: profiles}
}

// List is mounted behind the admin gate.
func (h *ProfilesHandler) List(ctx *gin.Context) {
	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	items, err := h.profiles.List(cctx)
	if err != nil {
		respondStoreError(ctx, err, "Could not list profiles")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (h *ProfilesHandler) GetMine(ctx *gin.Context) {
	p, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	pr, err := h.profiles.GetByUserID(cctx, p.ID)
	if err != nil {
		respondStoreError(ctx, err, "Could not load profile")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, pr)
}

func (h *ProfilesHandler) CreateMine(ctx *gin.Context) {
	p, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	var req profile.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	owner := access.ScopeFor(p).OwnerForCreate(req.UserID)

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	pr, err := h.profiles.Create(cctx, req.Params(owner))
	if err != nil {
		respondStoreError(ctx, err, "Could not create profile")
		return
	}

	ctx.JSON(http.StatusCreated, pr)
}

func (h *ProfilesHandler) PatchMine(ctx *gin.Context) {
	p, ok := principalOrAbort(ctx)
	if !ok {
		return
	}

	var patch profile.Patch
	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	pr, err := h.profiles.UpdateByUserID(cctx, p.ID, patch)
	if err != nil {
		respondStoreError(ctx, err, "Could not update profile")
		return
	}

	ctx.JSON(http.StatusOK, pr)
}
