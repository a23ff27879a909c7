package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zippyboards/backend/internal/model"
)

// PgProjectRepository is the PostgreSQL implementation of ProjectRepository.
type PgProjectRepository struct {
	pool *pgxpool.Pool
}

// NewPgProjectRepository creates a PgProjectRepository.
func NewPgProjectRepository(pool *pgxpool.Pool) *PgProjectRepository {
	return &PgProjectRepository{pool: pool}
}

const projectSelectCols = `p.id, p.owner_id, p.name, p.description, p.created_at, p.updated_at`

func scanProject(scan func(...any) error) (*model.Project, error) {
	var p model.Project
	var description *string
	if err := scan(&p.ID, &p.OwnerID, &p.Name, &description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	if description != nil {
		p.Description = *description
	}
	return &p, nil
}

// GetByID returns the project with the given id.
func (r *PgProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+projectSelectCols+` FROM projects p WHERE p.id = $1`, id)
	return scanProject(row.Scan)
}

// ListByMemberID returns every project the user is a member of, newest first.
func (r *PgProjectRepository) ListByMemberID(ctx context.Context, userID string) ([]*model.Project, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+projectSelectCols+`
		 FROM projects p
		 INNER JOIN project_members m ON m.project_id = p.id
		 WHERE m.user_id = $1
		 ORDER BY p.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*model.Project
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// CreateWithOwner inserts the project row and the creator's owner membership.
// Both writes commit together or not at all.
func (r *PgProjectRepository) CreateWithOwner(ctx context.Context, project *model.Project) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO projects (owner_id, name, description)
		 VALUES ($1, $2, NULLIF($3, ''))
		 RETURNING id, created_at, updated_at`,
		project.OwnerID, project.Name, project.Description,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert project: %w", translate(err))
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO project_members (project_id, user_id, role) VALUES ($1, $2, $3)`,
		project.ID, project.OwnerID, string(model.RoleOwner),
	); err != nil {
		return fmt.Errorf("insert owner membership: %w", translate(err))
	}
	return tx.Commit(ctx)
}

// Update changes name and description.
func (r *PgProjectRepository) Update(ctx context.Context, project *model.Project) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE projects SET name = $1, description = NULLIF($2, ''), updated_at = NOW()
		 WHERE id = $3
		 RETURNING updated_at`,
		project.Name, project.Description, project.ID,
	).Scan(&project.UpdatedAt)
	return translate(err)
}

// Delete removes the project; members and tasks cascade.
func (r *PgProjectRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
