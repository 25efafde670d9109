package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/boardhub/internal/access"
	"github.com/geocoder89/boardhub/internal/config"
	"github.com/geocoder89/boardhub/internal/domain/ticket"
	"github.com/geocoder89/boardhub/internal/pagination"
	"github.com/gin-gonic/gin"
)

type TicketStore interface {
	List(ctx context.Context, scope access.Scope, filter ticket.ListFilter) (pagination.Page[ticket.Ticket], error)
	Get(ctx context.Context, scope access.Scope, id string) (ticket.Ticket, error)
	Create(ctx context.Context, np ticket.NewParams) (ticket.Ticket, error)
	Update(ctx context.Context, scope access.Scope, id string, patch ticket.Patch) (ticket.Ticket, error)
	Delete(ctx context.Context, scope access.Scope, id string) error
}

// Tickets are owned through their project, so the handler checks the
// target project against the caller's scope before writing.
type TicketsHandler struct {
	tickets  TicketStore
	projects ProjectStore
}

func NewTicketsHandler(tickets TicketStore, projects ProjectStore) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, projects: projects}
}

type ListTicketsQuery struct {
	PageQuery
	ProjectID string `form:"project_id" binding:"omitempty,uuid"`
}

func (h *TicketsHandler) List(ctx *gin.Context) {
	scope, ok := scopeOrAbort(ctx)
	if !ok {
		return
	}

	var q ListTicketsQuery
	if !BindQuery(ctx, &q) {
		return
	}

	page, ok := q.request(ctx)
	if !ok {
		return
	}

	filter := ticket.ListFilter{Page: page}
	if q.ProjectID != "" {
		filter.ProjectID = &q.ProjectID
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	res, err := h.tickets.List(cctx, scope, filter)
	if err != nil {
		respondStoreError(ctx, err, "Could not list tickets")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, pageResponse(res))
}

func (h *TicketsHandler) Get(ctx *gin.Context) {
	scope, ok := scopeOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Ticket not found")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	t, err := h.tickets.Get(cctx, scope, id)
	if err != nil {
		respondStoreError(ctx, err, "Could not load ticket")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, t)
}

func (h *TicketsHandler) Create(ctx *gin.Context) {
	scope, ok := scopeOrAbort(ctx)
	if !ok {
		return
	}

	var req ticket.CreateRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if _, err := h.projects.Get(cctx, scope, req.ProjectID); err != nil {
		respondStoreError(ctx, err, "Could not create ticket")
		return
	}

	t, err := h.tickets.Create(cctx, req.Params())
	if err != nil {
		respondStoreError(ctx, err, "Could not create ticket")
		return
	}

	ctx.JSON(http.StatusCreated, t)
}

func (h *TicketsHandler) Update(ctx *gin.Context) {
	scope, ok := scopeOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Ticket not found")
	if !ok {
		return
	}

	var patch ticket.Patch
	if !BindJSON(ctx, &patch) {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	// moving a ticket requires the destination project to be visible too
	if patch.ProjectID != nil {
		if _, err := h.projects.Get(cctx, scope, *patch.ProjectID); err != nil {
			respondStoreError(ctx, err, "Could not update ticket")
			return
		}
	}

	t, err := h.tickets.Update(cctx, scope, id, patch)
	if err != nil {
		respondStoreError(ctx, err, "Could not update ticket")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TicketsHandler) Delete(ctx *gin.Context) {
	scope, ok := scopeOrAbort(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "Ticket not found")
	if !ok {
		return
	}

	cctx, cancel := config.WithTimeoutFrom(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.tickets.Delete(cctx, scope, id); err != nil {
		respondStoreError(ctx, err, "Could not delete ticket")
		return
	}

	ctx.Status(http.StatusNoContent)
}
