package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zippyboards/backend/internal/model"
)

// PgTaskRepository is the PostgreSQL implementation of TaskRepository.
type PgTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPgTaskRepository creates a PgTaskRepository.
func NewPgTaskRepository(pool *pgxpool.Pool) *PgTaskRepository {
	return &PgTaskRepository{pool: pool}
}

const taskSelectCols = `id, project_id, title, description, status, priority, due_date, assigned_to, created_at, updated_at`

func scanTask(scan func(...any) error) (*model.Task, error) {
	var t model.Task
	var description *string
	var status, priority string
	if err := scan(&t.ID, &t.ProjectID, &t.Title, &description, &status, &priority,
		&t.DueDate, &t.AssignedTo, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	if description != nil {
		t.Description = *description
	}
	t.Status = model.Lane(status)
	t.Priority = model.Priority(priority)
	return &t, nil
}

// ListByProject returns all tasks of a project ordered by created_at desc.
func (r *PgTaskRepository) ListByProject(ctx context.Context, projectID string) ([]*model.Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskSelectCols+` FROM tasks WHERE project_id = $1 ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetByID returns the task with the given id.
func (r *PgTaskRepository) GetByID(ctx context.Context, id string) (*model.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskSelectCols+` FROM tasks WHERE id = $1`, id)
	return scanTask(row.Scan)
}

// Create inserts the task and fills in ID and timestamps.
func (r *PgTaskRepository) Create(ctx context.Context, task *model.Task) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (project_id, title, description, status, priority, due_date, assigned_to)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`,
		task.ProjectID, task.Title, task.Description, string(task.Status), string(task.Priority),
		task.DueDate, task.AssignedTo,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	return translate(err)
}

// Update writes every editable column of the task.
func (r *PgTaskRepository) Update(ctx context.Context, task *model.Task) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE tasks SET title = $1, description = NULLIF($2, ''), status = $3, priority = $4,
		        due_date = $5, assigned_to = $6, updated_at = NOW()
		 WHERE id = $7
		 RETURNING updated_at`,
		task.Title, task.Description, string(task.Status), string(task.Priority),
		task.DueDate, task.AssignedTo, task.ID,
	).Scan(&task.UpdatedAt)
	return translate(err)
}

// UpdateStatus moves the task to another lane and returns the stored row.
func (r *PgTaskRepository) UpdateStatus(ctx context.Context, id string, status model.Lane) (*model.Task, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE tasks SET status = $1, updated_at = NOW() WHERE id = $2
		 RETURNING `+taskSelectCols,
		string(status), id,
	)
	return scanTask(row.Scan)
}

// Delete removes the task.
func (r *PgTaskRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
