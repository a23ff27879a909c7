package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zippyboards/backend/internal/model"
)

// PgUserRepository is the PostgreSQL implementation of UserRepository.
type PgUserRepository struct {
	pool *pgxpool.Pool
}

// NewPgUserRepository creates a PgUserRepository.
func NewPgUserRepository(pool *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{pool: pool}
}

// Ping checks the DB connection (implements DB).
func (r *PgUserRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanUser(scan func(...any) error) (*model.User, error) {
	var u model.User
	var passwordHash, githubID *string
	if err := scan(&u.ID, &u.Email, &passwordHash, &githubID, &u.Name, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, translate(err)
	}
	if passwordHash != nil {
		u.PasswordHash = *passwordHash
	}
	if githubID != nil {
		u.GitHubID = *githubID
	}
	return &u, nil
}

const userSelectCols = `id, email, password_hash, github_id, name, created_at, updated_at`

// FindByID returns the user with the given id.
func (r *PgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userSelectCols+` FROM users WHERE id = $1`, id)
	return scanUser(row.Scan)
}

// FindByEmail is an exact, indexed lookup on the case-folded email.
func (r *PgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userSelectCols+` FROM users WHERE email = $1`, model.NormalizeEmail(email))
	return scanUser(row.Scan)
}

// FindByGitHubID returns the user linked to a GitHub account.
func (r *PgUserRepository) FindByGitHubID(ctx context.Context, githubID string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+userSelectCols+` FROM users WHERE github_id = $1`, githubID)
	return scanUser(row.Scan)
}

// Create inserts the user and fills in ID and timestamps.
func (r *PgUserRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = model.NormalizeEmail(user.Email)
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, password_hash, github_id, name) VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4)
		 RETURNING id, created_at, updated_at`,
		user.Email, user.PasswordHash, user.GitHubID, user.Name,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return translate(err)
}

// SetGitHubID links an existing user to a GitHub account.
func (r *PgUserRepository) SetGitHubID(ctx context.Context, userID, githubID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET github_id = $1, updated_at = NOW() WHERE id = $2`,
		githubID, userID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
