// Package pagination implements keyset pagination over (created_at, id).
package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is the last row a client has seen.
type Cursor struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
}

func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func Decode(cursor string) (Cursor, error) {
	if cursor == "" {
		return Cursor{}, ErrInvalidCursor
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, ErrInvalidCursor
	}
	if c.CreatedAt.IsZero() || uuid.Validate(c.ID) != nil {
		return Cursor{}, ErrInvalidCursor
	}
	return c, nil
}

// Less orders rows the way ORDER BY created_at, id does.
func (c Cursor) Less(o Cursor) bool {
	if !c.CreatedAt.Equal(o.CreatedAt) {
		return c.CreatedAt.Before(o.CreatedAt)
	}
	return c.ID < o.ID
}

type Request struct {
	Limit int
	After *Cursor
}

// Size is the effective page size.
func (r Request) Size() int {
	switch {
	case r.Limit <= 0:
		return DefaultLimit
	case r.Limit > MaxLimit:
		return MaxLimit
	default:
		return r.Limit
	}
}

type Page[T any] struct {
	Items      []T
	NextCursor string
}

// Trim cuts rows fetched with Size()+1 down to one page and derives the next cursor.
func Trim[T any](rows []T, r Request, key func(T) Cursor) (Page[T], error) {
	size := r.Size()
	if len(rows) <= size {
		return Page[T]{Items: rows}, nil
	}

	rows = rows[:size]
	next, err := Encode(key(rows[size-1]))
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: rows, NextCursor: next}, nil
}

// Slice pages an already ordered in-memory slice.
func Slice[T any](sorted []T, r Request, key func(T) Cursor) (Page[T], error) {
	start := 0
	if r.After != nil {
		for start < len(sorted) && !r.After.Less(key(sorted[start])) {
			start++
		}
	}

	end := start + r.Size() + 1
	if end > len(sorted) {
		end = len(sorted)
	}
	return Trim(sorted[start:end], r, key)
}
