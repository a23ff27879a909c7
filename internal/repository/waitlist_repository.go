package repository

import (
	"context"

	"github.com/zippyboards/backend/internal/model"
)

// WaitlistRepository persists waitlist signups.
type WaitlistRepository interface {
	// Add returns ErrAlreadyExists for an email that is already listed.
	Add(ctx context.Context, entry *model.WaitlistEntry) error
}
