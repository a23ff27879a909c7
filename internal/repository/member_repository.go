package repository

import (
	"context"

	"github.com/zippyboards/backend/internal/model"
)

// MemberRepository persists project memberships.
//
// The server wires two instances: one on the application pool for reads done
// on behalf of the acting user, and one on the service-role pool for the
// writes that only run after an ownership check.
type MemberRepository interface {
	// GetRole returns ErrNotFound when the user is not a member.
	GetRole(ctx context.Context, projectID, userID string) (model.Role, error)
	Exists(ctx context.Context, projectID, userID string) (bool, error)
	// ListIfAllowed returns the members of a project with their emails, or
	// ErrNotFound when viewerID is not a member of it.
	ListIfAllowed(ctx context.Context, projectID, viewerID string) ([]*model.MemberView, error)
	// Add returns ErrAlreadyExists when the membership exists.
	Add(ctx context.Context, member *model.ProjectMember) error
	// Remove is idempotent: deleting an absent row succeeds.
	Remove(ctx context.Context, projectID, userID string) error
}
