package domain

import "fmt"

type UserRole string

const (
	RoleAdmin        UserRole = "admin"
	RoleCollaborator UserRole = "collaborator"
)

func ParseUserRole(raw string) (UserRole, error) {
	switch r := UserRole(raw); r {
	case RoleAdmin, RoleCollaborator:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
}

func (r UserRole) IsAdmin() bool { return r == RoleAdmin }
