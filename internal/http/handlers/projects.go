package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/boardhub/internal/access"
	"github.com/geocoder89/boardhub/internal/config"
	"github.com/geocoder89/boardhub/internal/domain/project"
	"github.com/geocoder89/boardhub/internal/pagination"
	"github.com/gin-gonic/gin"
)

type ProjectStore interface {
	List(ctx context.Context, scope access.Scope, page pagination.Request) (pagination.Page[project.Project], error)
	Get(ctx context.Context, scope access.Scope, id string) (project.Project, error)
	Create(ctx context.Context, np project.NewParams) (project.Project, error)
	Update(ctx context.Context, scope access.Scope, id string, patch project.Patch) (project.Project, error)
	Delete(ctx context.Context, scope access.Scope, id string) error
}

type ProjectsHandler struct {
	projects ProjectStore
}

func NewProjectsHandler(projects ProjectStore) *ProjectsHandler {
	return &ProjectsHandler{projects: projects}
}

func (h *ProjectsHandler) List(ctx *gin.Context) {
	scope, ok := scopeOrAbort(ctx)
	if !ok {
		return
	}

	var q PageQuery
	if !BindQuery(ctx, &q) {
		return
	}
	page, ok := q.request(ctx)
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	res, err := h.projects.List(cctx, scope, page)
	if err != nil {
		respondStoreError(ctx, err, "Could not list projects")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, pageResponse(res))
}

func (h *ProjectsHandler) Get(ctx *gin.Context) {
	scope, ok := scopeOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Project not found")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.projects.Get(cctx, scope, id)
	if err != nil {
		respondStoreError(ctx, err, "Could not load project")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, p)
}

// Create assigns the caller as owner unless an admin names someone else.
func (h *ProjectsHandler) Create(ctx *gin.Context) {
	scope, ok := scopeOrAbort(ctx)
	if !ok {
		return
	}

	var req project.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.projects.Create(cctx, req.Params(scope.OwnerForCreate(req.UserID)))
	if err != nil {
		respondStoreError(ctx, err, "Could not create project")
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

func (h *ProjectsHandler) Update(ctx *gin.Context) {
	scope, ok := scopeOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Project not found")
	if !ok {
		return
	}

	var patch project.Patch
	if !BindJSON(ctx, &patch) {
		return
	}
	if !scope.CanReassign() {
		patch.UserID = nil
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	p, err := h.projects.Update(cctx, scope, id, patch)
	if err != nil {
		respondStoreError(ctx, err, "Could not update project")
		return
	}

	ctx.JSON(http.StatusOK, p)
}

func (h *ProjectsHandler) Delete(ctx *gin.Context) {
	scope, ok := scopeOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Project not found")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.projects.Delete(cctx, scope, id); err != nil {
		respondStoreError(ctx, err, "Could not delete project")
		return
	}

	ctx.Status(http.StatusNoContent)
}
