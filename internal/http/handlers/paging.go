package handlers

import (
	"net/http"

	"github.com/geocoder89/boardhub/internal/pagination"
	"github.com/gin-gonic/gin"
)

type PageQuery struct {
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=200"`
	Cursor string `form:"cursor"`
}

func (q PageQuery) request(ctx *gin.Context) (pagination.Request, bool) {
	req := pagination.Request{Limit: q.Limit}
	if q.Cursor == "" {
		return req, true
	}

	c, err := pagination.Decode(q.Cursor)
	if err != nil {
		RespondError(ctx, http.StatusBadRequest, "invalid_cursor", "Cursor is malformed", nil)
		return pagination.Request{}, false
	}
	req.After = &c
	return req, true
}

type listResponse[T any] struct {
	Items      []T    `json:"items"`
	Count      int    `json:"count"`
	NextCursor string `json:"next_cursor,omitempty"`
}

func pageResponse[T any](p pagination.Page[T]) listResponse[T] {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Count: len(items), NextCursor: p.NextCursor}
}
