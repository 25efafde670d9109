package auth

import (
	"errors"

	"github.com/geocoder89/boardhub/internal/domain/user"
)

var ErrForbidden = errors.New("operation not permitted")

// RoleGate is an allow-list of roles fixed at construction.
type RoleGate struct {
	allowed map[user.Role]struct{}
}

func NewRoleGate(roles ...user.Role) RoleGate {
	allowed := make(map[user.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return RoleGate{allowed: allowed}
}

func (g RoleGate) Check(p Principal) error {
	if _, ok := g.allowed[p.Role]; !ok {
		return ErrForbidden
	}
	return nil
}
