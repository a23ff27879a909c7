package model

import (
	"fmt"
	"time"
)

// Lane is the board column a task sits in. It is stored in the tasks.status column.
type Lane string

const (
	LaneBacklog    Lane = "backlog"
	LaneInProgress Lane = "in_progress"
	LaneDone       Lane = "done"
)

// Lanes lists the board lanes in display order.
var Lanes = []Lane{LaneBacklog, LaneInProgress, LaneDone}

// Valid reports whether l is one of the three board lanes.
func (l Lane) Valid() bool {
	switch l {
	case LaneBacklog, LaneInProgress, LaneDone:
		return true
	}
	return false
}

// ParseLane accepts the stored form and the hyphenated form used by older clients ("in-progress").
func ParseLane(s string) (Lane, error) {
	if s == "in-progress" {
		return LaneInProgress, nil
	}
	l := Lane(s)
	if !l.Valid() {
		return "", fmt.Errorf("invalid lane %q", s)
	}
	return l, nil
}

// Priority of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank returns high=3, medium=2, low=1 and 0 for anything else.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Lane       `json:"status"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsAssigned reports whether the task has an assignee.
func (t *Task) IsAssigned() bool {
	return t.AssignedTo != nil && *t.AssignedTo != ""
}

// IsOverdue reports whether the task has a due date strictly before now.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now)
}

// TaskPatch is a partial update of a task. Nil fields are left unchanged;
// ClearDueDate / ClearAssignee reset the nullable columns.
type TaskPatch struct {
	Title         *string
	Description   *string
	Status        *Lane
	Priority      *Priority
	DueDate       *time.Time
	ClearDueDate  bool
	AssignedTo    *string
	ClearAssignee bool
}

// Apply copies the patch onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.ClearAssignee {
		t.AssignedTo = nil
	} else if p.AssignedTo != nil {
		a := *p.AssignedTo
		t.AssignedTo = &a
	}
}
