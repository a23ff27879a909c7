// Package board keeps a project's three-lane task board in memory and
// reconciles local moves with the task API.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/zippyboards/backend/internal/model"
	"github.com/zippyboards/backend/internal/optimistic"
)

// ErrInvalidMove is returned by MoveTask when its arguments do not describe
// a task currently on the board.
var ErrInvalidMove = errors.New("invalid move")

// Remote is the task store the board reads from and writes lane changes to.
type Remote interface {
	ListTasks(ctx context.Context, projectID string) ([]*model.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status model.Lane) (*model.Task, error)
}

// Manager holds one project's board. It is safe for concurrent use.
type Manager struct {
	remote    Remote
	projectID string
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	lanes   Lanes
	err     string
	filter  FilterOption
	sortKey SortKey
	dir     Direction

	pending sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used for background commit failures.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithClock overrides time.Now for the overdue filter.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager returns an empty board for projectID. Call LoadTasks to fill it.
func NewManager(remote Remote, projectID string, opts ...Option) *Manager {
	m := &Manager{
		remote:    remote,
		projectID: projectID,
		logger:    slog.Default(),
		now:       time.Now,
		lanes:     Partition(nil),
		filter:    FilterAll,
		sortKey:   SortCreatedAt,
		dir:       Desc,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// ProjectID returns the project the board belongs to.
func (m *Manager) ProjectID() string { return m.projectID }

// LoadTasks replaces the lanes with the remote state. On failure the lanes
// are kept and the message is available from Err.
func (m *Manager) LoadTasks(ctx context.Context) error {
	tasks, err := m.remote.ListTasks(ctx, m.projectID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.err = fmt.Sprintf("Failed to load tasks: %v", err)
		return fmt.Errorf("load tasks: %w", err)
	}
	m.lanes = Partition(tasks)
	m.err = ""
	return nil
}

// Err returns the last load error message, or "" after a successful load.
func (m *Manager) Err() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// MoveTask moves the task at fromIndex of fromLane to toIndex of toLane.
// The new order is visible as soon as MoveTask returns; the lane change is
// sent to the remote in the background and the board reloads if it fails.
// Moving a task onto its own position does nothing.
func (m *Manager) MoveTask(ctx context.Context, taskID string, fromLane model.Lane, fromIndex int, toLane model.Lane, toIndex int) error {
	if fromLane == toLane && fromIndex == toIndex {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.validateMove(taskID, fromLane, fromIndex, toLane, toIndex); err != nil {
		return err
	}

	bg := context.WithoutCancel(ctx)
	m.pending.Add(1)
	done := optimistic.Start(bg, optimistic.Mutation{
		Apply: func() { m.moveLocked(fromLane, fromIndex, toLane, toIndex) },
		Commit: func(ctx context.Context) error {
			updated, err := m.remote.UpdateTaskStatus(ctx, taskID, toLane)
			if err != nil {
				return err
			}
			m.reconcile(updated)
			return nil
		},
		Reload: m.LoadTasks,
	})
	go func() {
		defer m.pending.Done()
		if err := <-done; err != nil {
			m.logger.Warn("board move not saved, resynchronised",
				"project_id", m.projectID, "task_id", taskID, "lane", toLane, "error", err)
		}
	}()
	return nil
}

func (m *Manager) validateMove(taskID string, fromLane model.Lane, fromIndex int, toLane model.Lane, toIndex int) error {
	if !fromLane.Valid() || !toLane.Valid() {
		return fmt.Errorf("%w: unknown lane", ErrInvalidMove)
	}
	src := m.lanes[fromLane]
	if fromIndex < 0 || fromIndex >= len(src) {
		return fmt.Errorf("%w: index %d out of range in %s", ErrInvalidMove, fromIndex, fromLane)
	}
	if src[fromIndex].ID != taskID {
		return fmt.Errorf("%w: task %s is not at %s[%d]", ErrInvalidMove, taskID, fromLane, fromIndex)
	}
	limit := len(m.lanes[toLane])
	if fromLane == toLane {
		limit--
	}
	if toIndex < 0 || toIndex > limit {
		return fmt.Errorf("%w: index %d out of range in %s", ErrInvalidMove, toIndex, toLane)
	}
	return nil
}

// moveLocked assumes the move was validated and m.mu is held.
func (m *Manager) moveLocked(fromLane model.Lane, fromIndex int, toLane model.Lane, toIndex int) {
	src := m.lanes[fromLane]
	moved := *src[fromIndex]
	moved.Status = toLane

	src = append(src[:fromIndex:fromIndex], src[fromIndex+1:]...)
	m.lanes[fromLane] = src

	dst := m.lanes[toLane]
	out := make([]*model.Task, 0, len(dst)+1)
	out = append(out, dst[:toIndex]...)
	out = append(out, &moved)
	out = append(out, dst[toIndex:]...)
	m.lanes[toLane] = out
}

// reconcile replaces the local copy of t with the server's version when the
// task still sits in the lane the server reports.
func (m *Manager) reconcile(t *model.Task) {
	if t == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	lane, i, ok := m.locateLocked(t.ID)
	if ok && lane == t.Status {
		c := *t
		m.lanes[lane][i] = &c
	}
}

// Wait blocks until every background commit and resync has finished.
func (m *Manager) Wait() {
	m.pending.Wait()
}

// Lanes returns a copy of the current lanes.
func (m *Manager) Lanes() Lanes {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lanes.Clone()
}

// Count returns the number of tasks on the board.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lanes.Count()
}

// Locate returns the lane and index of taskID.
func (m *Manager) Locate(taskID string) (model.Lane, int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locateLocked(taskID)
}

func (m *Manager) locateLocked(taskID string) (model.Lane, int, bool) {
	for _, lane := range model.Lanes {
		for i, t := range m.lanes[lane] {
			if t.ID == taskID {
				return lane, i, true
			}
		}
	}
	return "", 0, false
}

// ApplyFilter selects the filter and returns the resulting view.
func (m *Manager) ApplyFilter(opt FilterOption) Lanes {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filter = opt
	return m.viewLocked()
}

// ApplySort selects the ordering and returns the resulting view.
func (m *Manager) ApplySort(key SortKey, dir Direction) Lanes {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sortKey = key
	m.dir = dir
	return m.viewLocked()
}

// View returns the lanes under the selected filter and ordering.
func (m *Manager) View() Lanes {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewLocked()
}

func (m *Manager) viewLocked() Lanes {
	return Derive(m.lanes.Clone(), m.filter, m.sortKey, m.dir, m.now())
}
