package service

import (
	"context"

	"github.com/zippyboards/backend/internal/model"
)

// PageInvalidator drops cached project pages after membership changes.
type PageInvalidator interface {
	Invalidate(ctx context.Context, projectID string) error
}

// MembershipService gates membership changes behind an ownership check.
// The actions never return errors; failures are reported in the ActionResult.
type MembershipService interface {
	AddMember(ctx context.Context, projectID, email string) ActionResult
	RemoveMember(ctx context.Context, projectID, userID string) ActionResult
	// ListMembers returns ErrPermissionDenied unless the caller is a member.
	ListMembers(ctx context.Context, projectID string) ([]*model.MemberView, error)
}
