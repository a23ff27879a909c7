package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/zippyboards/backend/internal/repository"
	"github.com/zippyboards/backend/pkg/auth"
)

// requireOwner returns the acting user's id when they own the project.
func requireOwner(ctx context.Context, members repository.MemberRepository, projectID, deniedMsg string) (string, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	if err := parseProjectID(projectID); err != nil {
		return "", err
	}
	role, err := members.GetRole(ctx, projectID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", newError(CodePermissionDenied, deniedMsg)
	}
	if err != nil {
		return "", remoteError("Error checking project ownership.", err)
	}
	if !role.CanManageMembers() {
		return "", newError(CodePermissionDenied, deniedMsg)
	}
	return userID, nil
}

// requireMember returns the acting user's id when they belong to the project.
func requireMember(ctx context.Context, members repository.MemberRepository, projectID string) (string, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return "", ErrUnauthenticated
	}
	if err := parseProjectID(projectID); err != nil {
		return "", err
	}
	ok, err := members.Exists(ctx, projectID, userID)
	if err != nil {
		return "", remoteError("Error checking project membership.", err)
	}
	if !ok {
		return "", newError(CodePermissionDenied, "Permission denied: You are not a member of this project.")
	}
	return userID, nil
}

// parseProjectID rejects ids that cannot name a project row.
func parseProjectID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return newError(CodeNotFound, "Project not found.")
	}
	return nil
}
