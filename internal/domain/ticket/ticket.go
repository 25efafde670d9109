package ticket

import (
	"errors"
	"time"

	"github.com/geocoder89/boardhub/internal/pagination"
)

var ErrNotFound = errors.New("ticket not found")

const DefaultStatus = "open"

type Ticket struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	ProjectID   string    `json:"project_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t Ticket) Cursor() pagination.Cursor {
	return pagination.Cursor{CreatedAt: t.CreatedAt, ID: t.ID}
}

type CreateRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"omitempty,max=2000"`
	Status      string `json:"status" binding:"omitempty,max=32"`
	ProjectID   string `json:"project_id" binding:"required,uuid"`
}

type NewParams struct {
	Name        string
	Description string
	Status      string
	ProjectID   string
}

func (r CreateRequest) Params() NewParams {
	status := r.Status
	if status == "" {
		status = DefaultStatus
	}
	return NewParams{
		Name:        r.Name,
		Description: r.Description,
		Status:      status,
		ProjectID:   r.ProjectID,
	}
}

type Patch struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=120"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	Status      *string `json:"status" binding:"omitempty,min=1,max=32"`
	ProjectID   *string `json:"project_id" binding:"omitempty,uuid"`
}

func (p Patch) Apply(t Ticket) Ticket {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.ProjectID != nil {
		t.ProjectID = *p.ProjectID
	}
	return t
}

// ListFilter narrows a ticket listing. Visibility is applied separately.
type ListFilter struct {
	ProjectID *string
	Page      pagination.Request
}
