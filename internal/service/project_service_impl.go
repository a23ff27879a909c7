package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/zippyboards/backend/internal/model"
	"github.com/zippyboards/backend/internal/repository"
	"github.com/zippyboards/backend/pkg/auth"
)

const (
	projectNameMin = 3
	projectNameMax = 100
)

// ProjectServiceImpl implements ProjectService.
type ProjectServiceImpl struct {
	projectRepo repository.ProjectRepository
	memberRepo  repository.MemberRepository
	pages       PageCache
}

// NewProjectService wires the service. pages may be nil to disable caching.
func NewProjectService(projectRepo repository.ProjectRepository, memberRepo repository.MemberRepository, pages PageCache) ProjectService {
	return &ProjectServiceImpl{projectRepo: projectRepo, memberRepo: memberRepo, pages: pages}
}

// ListMine returns the projects the caller is a member of.
func (s *ProjectServiceImpl) ListMine(ctx context.Context) ([]*model.Project, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	projects, err := s.projectRepo.ListByMemberID(ctx, userID)
	if err != nil {
		return nil, remoteError("Error loading projects.", err)
	}
	return projects, nil
}

// Create stores a project owned by the caller together with the owner membership.
func (s *ProjectServiceImpl) Create(ctx context.Context, name, description string) (*model.Project, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	name, err := validateProjectName(name)
	if err != nil {
		return nil, err
	}
	p := &model.Project{
		OwnerID:     userID,
		Name:        name,
		Description: strings.TrimSpace(description),
	}
	if err := s.projectRepo.CreateWithOwner(ctx, p); err != nil {
		return nil, remoteError("Failed to create project", err)
	}
	slog.Info("project created", "project_id", p.ID, "owner_id", userID)
	return p, nil
}

// Page returns the project with its members. Only members may read it.
func (s *ProjectServiceImpl) Page(ctx context.Context, id string) (*model.ProjectPage, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}
	if err := parseProjectID(id); err != nil {
		return nil, err
	}

	if page := s.cachedPage(ctx, id); page != nil && pageHasMember(page, userID) {
		return page, nil
	}

	members, err := s.memberRepo.ListIfAllowed(ctx, id, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(CodePermissionDenied, "Permission denied: You are not a member of this project.")
	}
	if err != nil {
		return nil, remoteError("Error loading project members.", err)
	}
	project, err := s.projectRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(CodeNotFound, "Project not found.")
	}
	if err != nil {
		return nil, remoteError("Error loading project.", err)
	}

	page := &model.ProjectPage{Project: project, Members: members}
	if s.pages != nil {
		if err := s.pages.Set(ctx, page); err != nil {
			slog.Warn("project page cache write failed", "project_id", id, "error", err)
		}
	}
	return page, nil
}

func (s *ProjectServiceImpl) cachedPage(ctx context.Context, id string) *model.ProjectPage {
	if s.pages == nil {
		return nil
	}
	page, err := s.pages.Get(ctx, id)
	if err != nil {
		slog.Warn("project page cache read failed", "project_id", id, "error", err)
		return nil
	}
	return page
}

func pageHasMember(page *model.ProjectPage, userID string) bool {
	for _, m := range page.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// Update changes the name and/or description. Owner only.
func (s *ProjectServiceImpl) Update(ctx context.Context, id string, name, description *string) (*model.Project, error) {
	if _, err := requireOwner(ctx, s.memberRepo, id, "Permission denied: Only project owners can edit the project."); err != nil {
		return nil, err
	}
	p, err := s.projectRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(CodeNotFound, "Project not found.")
	}
	if err != nil {
		return nil, remoteError("Error loading project.", err)
	}
	if name != nil {
		n, err := validateProjectName(*name)
		if err != nil {
			return nil, err
		}
		p.Name = n
	}
	if description != nil {
		p.Description = strings.TrimSpace(*description)
	}
	if err := s.projectRepo.Update(ctx, p); err != nil {
		return nil, remoteError("Failed to update project", err)
	}
	s.invalidate(ctx, id)
	return p, nil
}

// Delete removes the project with its memberships and tasks. Owner only.
func (s *ProjectServiceImpl) Delete(ctx context.Context, id string) error {
	if _, err := requireOwner(ctx, s.memberRepo, id, "Permission denied: Only project owners can delete the project."); err != nil {
		return err
	}
	err := s.projectRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(CodeNotFound, "Project not found.")
	}
	if err != nil {
		return remoteError("Failed to delete project", err)
	}
	s.invalidate(ctx, id)
	slog.Info("project deleted", "project_id", id)
	return nil
}

func (s *ProjectServiceImpl) invalidate(ctx context.Context, id string) {
	if s.pages == nil {
		return
	}
	if err := s.pages.Invalidate(ctx, id); err != nil {
		slog.Warn("project page invalidation failed", "project_id", id, "error", err)
	}
}

func validateProjectName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < projectNameMin || n > projectNameMax {
		return "", newError(CodeValidationFailure, "Project name must be between 3 and 100 characters.")
	}
	return name, nil
}
