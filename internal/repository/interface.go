package repository

import (
	"context"

	"github.com/zippyboards/backend/internal/model"
)

// DB checks that the database connection is alive.
type DB interface {
	Ping(ctx context.Context) error
}

// UserRepository persists users. Emails are stored and matched case-folded.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByGitHubID(ctx context.Context, githubID string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	SetGitHubID(ctx context.Context, userID, githubID string) error
}
