package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/zippyboards/backend/internal/model"
)

// PgWaitlistRepository is the PostgreSQL implementation of WaitlistRepository.
type PgWaitlistRepository struct {
	pool *pgxpool.Pool
}

// NewPgWaitlistRepository creates a PgWaitlistRepository.
func NewPgWaitlistRepository(pool *pgxpool.Pool) *PgWaitlistRepository {
	return &PgWaitlistRepository{pool: pool}
}

// Add inserts the entry with a case-folded email.
func (r *PgWaitlistRepository) Add(ctx context.Context, entry *model.WaitlistEntry) error {
	entry.Email = model.NormalizeEmail(entry.Email)
	err := r.pool.QueryRow(ctx,
		`INSERT INTO waitlist (email) VALUES ($1) RETURNING id, created_at`,
		entry.Email,
	).Scan(&entry.ID, &entry.CreatedAt)
	return translate(err)
}
