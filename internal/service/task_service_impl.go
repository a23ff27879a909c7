package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zippyboards/backend/internal/board"
	"github.com/zippyboards/backend/internal/model"
	"github.com/zippyboards/backend/internal/repository"
	"github.com/zippyboards/backend/pkg/auth"
)

// TaskServiceImpl implements TaskService.
type TaskServiceImpl struct {
	taskRepo   repository.TaskRepository
	memberRepo repository.MemberRepository
	now        func() time.Time
}

// NewTaskService wires the service.
func NewTaskService(taskRepo repository.TaskRepository, memberRepo repository.MemberRepository) TaskService {
	return &TaskServiceImpl{taskRepo: taskRepo, memberRepo: memberRepo, now: time.Now}
}

// List returns the project's tasks, newest first.
func (s *TaskServiceImpl) List(ctx context.Context, projectID string) ([]*model.Task, error) {
	if _, err := requireMember(ctx, s.memberRepo, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, remoteError("Failed to load tasks", err)
	}
	return tasks, nil
}

// Board returns the project's tasks partitioned into lanes, filtered and sorted.
func (s *TaskServiceImpl) Board(ctx context.Context, projectID string, filter board.FilterOption, key board.SortKey, dir board.Direction) (board.Lanes, error) {
	tasks, err := s.List(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return board.Derive(board.Partition(tasks), filter, key, dir, s.now()), nil
}

// Create inserts a task into the project.
func (s *TaskServiceImpl) Create(ctx context.Context, projectID string, in NewTask) (*model.Task, error) {
	if _, err := requireMember(ctx, s.memberRepo, projectID); err != nil {
		return nil, err
	}

	t := &model.Task{
		ProjectID:   projectID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
		Priority:    in.Priority,
		DueDate:     in.DueDate,
	}
	if t.Title == "" {
		return nil, newError(CodeValidationFailure, "Task title is required.")
	}
	if t.Status == "" {
		t.Status = model.LaneBacklog
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if err := validateLanePriority(t.Status, t.Priority); err != nil {
		return nil, err
	}
	if in.AssignedTo != nil && *in.AssignedTo != "" {
		if err := s.checkAssignee(ctx, projectID, *in.AssignedTo); err != nil {
			return nil, err
		}
		a := *in.AssignedTo
		t.AssignedTo = &a
	}

	if err := s.taskRepo.Create(ctx, t); err != nil {
		return nil, remoteError("Failed to create task", err)
	}
	return t, nil
}

// Update applies field edits to a task.
func (s *TaskServiceImpl) Update(ctx context.Context, taskID string, patch model.TaskPatch) (*model.Task, error) {
	t, err := s.loadForMember(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, newError(CodeValidationFailure, "Task title is required.")
		}
		patch.Title = &title
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, newError(CodeValidationFailure, "Invalid task status.")
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		return nil, newError(CodeValidationFailure, "Invalid task priority.")
	}
	if !patch.ClearAssignee && patch.AssignedTo != nil {
		if *patch.AssignedTo == "" {
			patch.AssignedTo = nil
			patch.ClearAssignee = true
		} else if err := s.checkAssignee(ctx, t.ProjectID, *patch.AssignedTo); err != nil {
			return nil, err
		}
	}

	patch.Apply(t)
	if err := s.taskRepo.Update(ctx, t); err != nil {
		return nil, remoteError("Failed to update task", err)
	}
	return t, nil
}

// UpdateStatus moves a task to another lane.
func (s *TaskServiceImpl) UpdateStatus(ctx context.Context, taskID string, status model.Lane) (*model.Task, error) {
	if !status.Valid() {
		return nil, newError(CodeValidationFailure, "Invalid task status.")
	}
	if _, err := s.loadForMember(ctx, taskID); err != nil {
		return nil, err
	}
	t, err := s.taskRepo.UpdateStatus(ctx, taskID, status)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(CodeNotFound, "Task not found.")
	}
	if err != nil {
		return nil, remoteError("Failed to update task status", err)
	}
	return t, nil
}

// Delete removes a task. Any member of the project may delete its tasks.
func (s *TaskServiceImpl) Delete(ctx context.Context, taskID string) error {
	if _, err := s.loadForMember(ctx, taskID); err != nil {
		return err
	}
	err := s.taskRepo.Delete(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return newError(CodeNotFound, "Task not found.")
	}
	if err != nil {
		return remoteError("Failed to delete task", err)
	}
	slog.Info("task deleted", "task_id", taskID)
	return nil
}

// loadForMember fetches the task and checks the caller belongs to its project.
// Tasks of other projects are reported as permission errors, not as missing.
func (s *TaskServiceImpl) loadForMember(ctx context.Context, taskID string) (*model.Task, error) {
	if _, ok := auth.UserIDFromContext(ctx); !ok {
		return nil, ErrUnauthenticated
	}
	if _, err := uuid.Parse(taskID); err != nil {
		return nil, newError(CodeNotFound, "Task not found.")
	}
	t, err := s.taskRepo.GetByID(ctx, taskID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, newError(CodeNotFound, "Task not found.")
	}
	if err != nil {
		return nil, remoteError("Failed to load task", err)
	}
	if _, err := requireMember(ctx, s.memberRepo, t.ProjectID); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskServiceImpl) checkAssignee(ctx context.Context, projectID, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		return newError(CodeValidationFailure, "Tasks can only be assigned to project members.")
	}
	ok, err := s.memberRepo.Exists(ctx, projectID, userID)
	if err != nil {
		return remoteError("Error checking assignee.", err)
	}
	if !ok {
		return newError(CodeValidationFailure, "Tasks can only be assigned to project members.")
	}
	return nil
}

func validateLanePriority(l model.Lane, p model.Priority) error {
	if !l.Valid() {
		return newError(CodeValidationFailure, "Invalid task status.")
	}
	if !p.Valid() {
		return newError(CodeValidationFailure, "Invalid task priority.")
	}
	return nil
}
