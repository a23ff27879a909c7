package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zippyboards/backend/internal/model"
)

// PgMemberRepository is the PostgreSQL implementation of MemberRepository.
type PgMemberRepository struct {
	pool *pgxpool.Pool
}

// NewPgMemberRepository creates a PgMemberRepository on the given pool.
func NewPgMemberRepository(pool *pgxpool.Pool) *PgMemberRepository {
	return &PgMemberRepository{pool: pool}
}

// GetRole returns the user's role in the project.
func (r *PgMemberRepository) GetRole(ctx context.Context, projectID, userID string) (model.Role, error) {
	var role string
	err := r.pool.QueryRow(ctx,
		`SELECT role FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID,
	).Scan(&role)
	if err != nil {
		return "", translate(err)
	}
	return model.ParseRole(role)
}

// Exists reports whether the membership row exists.
func (r *PgMemberRepository) Exists(ctx context.Context, projectID, userID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM project_members WHERE project_id = $1 AND user_id = $2)`,
		projectID, userID,
	).Scan(&exists)
	return exists, err
}

// ListIfAllowed lists members only when the viewer is one of them.
// The membership check and the read run in a single statement; a member
// always sees at least their own row, so an empty result means not allowed.
func (r *PgMemberRepository) ListIfAllowed(ctx context.Context, projectID, viewerID string) ([]*model.MemberView, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT m.user_id, m.role, u.email
		 FROM project_members m
		 INNER JOIN users u ON u.id = m.user_id
		 WHERE m.project_id = $1
		   AND EXISTS (SELECT 1 FROM project_members v WHERE v.project_id = $1 AND v.user_id = $2)
		 ORDER BY m.role = 'owner' DESC, m.created_at`,
		projectID, viewerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*model.MemberView
	for rows.Next() {
		var mv model.MemberView
		var role string
		if err := rows.Scan(&mv.UserID, &role, &mv.Email); err != nil {
			return nil, err
		}
		if mv.Role, err = model.ParseRole(role); err != nil {
			return nil, err
		}
		members = append(members, &mv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrNotFound
	}
	return members, nil
}

// Add inserts a membership row.
func (r *PgMemberRepository) Add(ctx context.Context, member *model.ProjectMember) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO project_members (project_id, user_id, role)
		 VALUES ($1, $2, $3)
		 RETURNING created_at`,
		member.ProjectID, member.UserID, string(member.Role),
	).Scan(&member.CreatedAt)
	return translate(err)
}

// Remove deletes a membership row; absent rows are not an error.
func (r *PgMemberRepository) Remove(ctx context.Context, projectID, userID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`,
		projectID, userID,
	)
	return err
}
