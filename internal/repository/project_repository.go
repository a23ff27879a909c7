package repository

import (
	"context"

	"github.com/zippyboards/backend/internal/model"
)

// ProjectRepository persists projects.
type ProjectRepository interface {
	GetByID(ctx context.Context, id string) (*model.Project, error)
	ListByMemberID(ctx context.Context, userID string) ([]*model.Project, error)
	// CreateWithOwner inserts the project and the owner's membership row in one transaction.
	CreateWithOwner(ctx context.Context, project *model.Project) error
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string) error
}
