package service

import (
	"context"
	"time"

	"github.com/zippyboards/backend/internal/board"
	"github.com/zippyboards/backend/internal/model"
)

// NewTask is the input of TaskService.Create. Zero Status and Priority take
// the defaults backlog and medium.
type NewTask struct {
	Title       string
	Description string
	Status      model.Lane
	Priority    model.Priority
	DueDate     *time.Time
	AssignedTo  *string
}

// TaskService is the business logic around tasks. Every operation requires
// the caller to be a member of the task's project.
type TaskService interface {
	List(ctx context.Context, projectID string) ([]*model.Task, error)
	Board(ctx context.Context, projectID string, filter board.FilterOption, key board.SortKey, dir board.Direction) (board.Lanes, error)
	Create(ctx context.Context, projectID string, in NewTask) (*model.Task, error)
	Update(ctx context.Context, taskID string, patch model.TaskPatch) (*model.Task, error)
	UpdateStatus(ctx context.Context, taskID string, status model.Lane) (*model.Task, error)
	Delete(ctx context.Context, taskID string) error
}
