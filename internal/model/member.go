package model

import (
	"fmt"
	"time"
)

// Role of a user within a project.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// ParseRole converts a stored role string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleOwner:
		return RoleOwner, nil
	case RoleMember:
		return RoleMember, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// CanManageMembers reports whether the role may add or remove members.
func (r Role) CanManageMembers() bool {
	switch r {
	case RoleOwner:
		return true
	case RoleMember:
		return false
	}
	return false
}

type ProjectMember struct {
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberView is a member row joined with the member's email.
type MemberView struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	Email  string `json:"email"`
}
