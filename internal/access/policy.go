// Package access decides which owned rows a principal may see or touch.
//
// Admins see every row. Everyone else sees only rows whose owner is the
// caller. Rows outside the scope are reported as not found, never as
// forbidden, so their existence is not confirmed.
package access

import "github.com/geocoder89/boardhub/internal/auth"

type Scope struct {
	admin    bool
	callerID string
}

func ScopeFor(p auth.Principal) Scope {
	return Scope{admin: p.IsAdmin(), callerID: p.ID}
}

func (s Scope) Unrestricted() bool {
	return s.admin
}

// OwnerFilter returns the owner id a query must be constrained to.
// ok is false when the scope is unrestricted.
func (s Scope) OwnerFilter() (ownerID string, ok bool) {
	if s.admin {
		return "", false
	}
	return s.callerID, true
}

func (s Scope) Visible(ownerID string) bool {
	return s.admin || ownerID == s.callerID
}

// OwnerForCreate picks the owner of a new row. Only admins may name someone else.
func (s Scope) OwnerForCreate(requested *string) string {
	if s.admin && requested != nil && *requested != "" {
		return *requested
	}
	return s.callerID
}

func (s Scope) CanReassign() bool {
	return s.admin
}

func Filter[T any](s Scope, items []T, ownerOf func(T) string) []T {
	if s.admin {
		return items
	}

	out := make([]T, 0, len(items))
	for _, it := range items {
		if ownerOf(it) == s.callerID {
			out = append(out, it)
		}
	}
	return out
}
