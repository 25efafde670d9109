package project

import (
	"errors"
	"time"

	"github.com/geocoder89/boardhub/internal/pagination"
)

var ErrNotFound = errors.New("project not found")

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p Project) Cursor() pagination.Cursor {
	return pagination.Cursor{CreatedAt: p.CreatedAt, ID: p.ID}
}

type CreateRequest struct {
	Name        string  `json:"name" binding:"required,min=1,max=120"`
	Description string  `json:"description" binding:"omitempty,max=2000"`
	UserID      *string `json:"user_id" binding:"omitempty,uuid"`
}

// NewParams is what a store persists once the owner has been resolved.
type NewParams struct {
	Name        string
	Description string
	UserID      string
}

type Patch struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=120"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	UserID      *string `json:"user_id" binding:"omitempty,uuid"`
}

func (p Patch) Apply(pr Project) Project {
	if p.Name != nil {
		pr.Name = *p.Name
	}
	if p.Description != nil {
		pr.Description = *p.Description
	}
	if p.UserID != nil {
		pr.UserID = *p.UserID
	}
	return pr
}

func (r CreateRequest) Params(ownerID string) NewParams {
	return NewParams{
		Name:        r.Name,
		Description: r.Description,
		UserID:      ownerID,
	}
}
