package profile

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("profile not found")
	ErrAlreadyExists = errors.New("profile already exists for user")
)

type Profile struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRequest.UserID is honoured only for admins.
type CreateRequest struct {
	UserID      *string `json:"user_id" binding:"omitempty,uuid"`
	FirstName   string  `json:"first_name" binding:"required,min=1,max=80"`
	LastName    string  `json:"last_name" binding:"required,min=1,max=80"`
	PhoneNumber string  `json:"phone_number" binding:"omitempty,max=32"`
	AvatarURL   string  `json:"avatar_url" binding:"omitempty,url,max=512"`
}

type Patch struct {
	FirstName   *string `json:"first_name" binding:"omitempty,min=1,max=80"`
	LastName    *string `json:"last_name" binding:"omitempty,min=1,max=80"`
	PhoneNumber *string `json:"phone_number" binding:"omitempty,max=32"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,url,max=512"`
}

func (p Patch) Apply(pr Profile) Profile {
	if p.FirstName != nil {
		pr.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		pr.LastName = *p.LastName
	}
	if p.PhoneNumber != nil {
		pr.PhoneNumber = *p.PhoneNumber
	}
	if p.AvatarURL != nil {
		pr.AvatarURL = *p.AvatarURL
	}
	return pr
}

// NewParams is what a store persists once the owner has been resolved.
type NewParams struct {
	UserID      string
	FirstName   string
	LastName    string
	PhoneNumber string
	AvatarURL   string
}

func (r CreateRequest) Params(ownerID string) NewParams {
	return NewParams{
		UserID:      ownerID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PhoneNumber: r.PhoneNumber,
		AvatarURL:   r.AvatarURL,
	}
}
