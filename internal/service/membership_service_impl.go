package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/zippyboards/backend/internal/model"
	"github.com/zippyboards/backend/internal/repository"
	"github.com/zippyboards/backend/pkg/auth"
)

// MembershipServiceImpl implements MembershipService.
//
// members runs on the application pool and answers questions about the
// acting user. admin runs on the service-role pool and is only used for
// writes after the ownership check has passed.
type MembershipServiceImpl struct {
	members repository.MemberRepository
	admin   repository.MemberRepository
	users   repository.UserRepository
	pages   PageInvalidator
}

// NewMembershipService wires the service. pages may be nil.
func NewMembershipService(members, admin repository.MemberRepository, users repository.UserRepository, pages PageInvalidator) MembershipService {
	return &MembershipServiceImpl{members: members, admin: admin, users: users, pages: pages}
}

// AddMember adds the user registered under email to the project as a member.
func (s *MembershipServiceImpl) AddMember(ctx context.Context, projectID, email string) (res ActionResult) {
	defer recoverAction("add_member", &res)

	if err := s.addMember(ctx, projectID, email); err != nil {
		logActionFailure("add_member", projectID, err)
		return Failed(err)
	}
	slog.Info("member added", "project_id", projectID)
	return Succeeded()
}

func (s *MembershipServiceImpl) addMember(ctx context.Context, projectID, email string) error {
	if _, err := requireOwner(ctx, s.members, projectID, "Permission denied: Only project owners can add members."); err != nil {
		return err
	}

	addr, err := parseEmail(email)
	if err != nil {
		return err
	}
	target, err := s.users.FindByEmail(ctx, addr)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(CodeNotFound, "User with this email not found.")
	}
	if err != nil {
		return remoteError("Error finding user.", err)
	}

	exists, err := s.members.Exists(ctx, projectID, target.ID)
	if err != nil {
		return remoteError("Error checking existing membership.", err)
	}
	if exists {
		return ErrAlreadyMember
	}

	err = s.admin.Add(ctx, &model.ProjectMember{
		ProjectID: projectID,
		UserID:    target.ID,
		Role:      model.RoleMember,
	})
	if errors.Is(err, repository.ErrAlreadyExists) {
		// lost a race with a concurrent add
		return ErrAlreadyMember
	}
	if err != nil {
		return remoteError("Failed to add member", err)
	}

	s.invalidate(ctx, projectID)
	return nil
}

// RemoveMember removes userID from the project. Owners cannot remove themselves.
func (s *MembershipServiceImpl) RemoveMember(ctx context.Context, projectID, userID string) (res ActionResult) {
	defer recoverAction("remove_member", &res)

	if err := s.removeMember(ctx, projectID, userID); err != nil {
		logActionFailure("remove_member", projectID, err)
		return Failed(err)
	}
	slog.Info("member removed", "project_id", projectID, "user_id", userID)
	return Succeeded()
}

func (s *MembershipServiceImpl) removeMember(ctx context.Context, projectID, userID string) error {
	actorID, err := requireOwner(ctx, s.members, projectID, "Permission denied: Only project owners can remove members.")
	if err != nil {
		return err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return newError(CodeValidationFailure, "A user to remove is required.")
	}
	if _, err := uuid.Parse(userID); err != nil {
		return newError(CodeValidationFailure, "Invalid user id.")
	}
	if userID == actorID {
		return ErrSelfRemovalForbidden
	}

	if err := s.admin.Remove(ctx, projectID, userID); err != nil {
		return remoteError("Failed to remove member", err)
	}

	s.invalidate(ctx, projectID)
	return nil
}

// ListMembers returns the project's members with their emails.
func (s *MembershipServiceImpl) ListMembers(ctx context.Context, projectID string) ([]*model.MemberView, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if err := parseProjectID(projectID); err != nil {
		return nil, err
	}
	members, err := s.members.ListIfAllowed(ctx, projectID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(CodePermissionDenied, "Permission denied: You are not a member of this project.")
	}
	if err != nil {
		return nil, remoteError("Error loading project members.", err)
	}
	return members, nil
}

func (s *MembershipServiceImpl) invalidate(ctx context.Context, projectID string) {
	if s.pages == nil {
		return
	}
	if err := s.pages.Invalidate(ctx, projectID); err != nil {
		// the write already happened; a stale page expires with its TTL
		slog.Warn("project page invalidation failed", "project_id", projectID, "error", err)
	}
}

// parseEmail accepts a bare address and returns it case-folded.
func parseEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", newError(CodeValidationFailure, "Please enter a valid email address.")
	}
	return model.NormalizeEmail(addr.Address), nil
}

func recoverAction(action string, res *ActionResult) {
	if r := recover(); r != nil {
		slog.Error("action panicked", "action", action, "panic", r)
		*res = Failed(ErrUnexpected)
	}
}

func logActionFailure(action, projectID string, err error) {
	switch CodeOf(err) {
	case CodeRemoteServiceError, CodeUnexpectedError:
		slog.Error("action failed", "action", action, "project_id", projectID, "error", err)
	default:
		slog.Info("action rejected", "action", action, "project_id", projectID, "code", CodeOf(err))
	}
}
