// Package optimistic applies a local change before its remote commit is
// confirmed and reloads authoritative state when the commit fails.
package optimistic

import (
	"context"
	"errors"
	"fmt"
)

// Mutation is one speculative change.
//
// Apply changes local state and must not block. Commit sends the change to
// the remote store. Reload replaces local state with the remote one and runs
// only when Commit fails; it may be nil.
type Mutation struct {
	Apply  func()
	Commit func(ctx context.Context) error
	Reload func(ctx context.Context) error
}

// Do applies m, commits it and reloads on failure, all on the calling goroutine.
// It returns nil on success, otherwise the commit error joined with any reload error.
func Do(ctx context.Context, m Mutation) error {
	if m.Apply != nil {
		m.Apply()
	}
	return settle(ctx, m)
}

// Start applies m on the calling goroutine and settles it in the background.
// The returned channel receives exactly one value and is then closed.
func Start(ctx context.Context, m Mutation) <-chan error {
	if m.Apply != nil {
		m.Apply()
	}
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- settle(ctx, m)
	}()
	return done
}

func settle(ctx context.Context, m Mutation) error {
	if m.Commit == nil {
		return nil
	}
	err := m.Commit(ctx)
	if err == nil {
		return nil
	}
	err = fmt.Errorf("commit: %w", err)
	if m.Reload == nil {
		return err
	}
	if rerr := m.Reload(ctx); rerr != nil {
		return errors.Join(err, fmt.Errorf("reload: %w", rerr))
	}
	return err
}
