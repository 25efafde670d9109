package user

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownRole = errors.New("unknown role")

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

// DefaultRole is assigned on signup.
const DefaultRole = RoleManager

func (r Role) String() string {
	return string(r)
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager:
		return true
	}
	return false
}

// ParseRole converts a stored role name into the closed Role set.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownRole, s)
	}
	return r, nil
}

// UnmarshalText lets seed files and request bodies carry plain role names.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
