package repository

import (
	"context"

	"github.com/zippyboards/backend/internal/model"
)

// TaskRepository persists tasks.
type TaskRepository interface {
	// ListByProject returns the project's tasks, newest first.
	ListByProject(ctx context.Context, projectID string) ([]*model.Task, error)
	GetByID(ctx context.Context, id string) (*model.Task, error)
	Create(ctx context.Context, task *model.Task) error
	Update(ctx context.Context, task *model.Task) error
	UpdateStatus(ctx context.Context, id string, status model.Lane) (*model.Task, error)
	Delete(ctx context.Context, id string) error
}
