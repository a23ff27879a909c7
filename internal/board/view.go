package board

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/zippyboards/backend/internal/model"
)

// Lanes maps each board lane to its ordered tasks.
type Lanes map[model.Lane][]*model.Task

// Count returns the number of tasks across all lanes.
func (l Lanes) Count() int {
	n := 0
	for _, tasks := range l {
		n += len(tasks)
	}
	return n
}

// Clone copies the lane slices and the tasks they point to.
func (l Lanes) Clone() Lanes {
	out := make(Lanes, len(model.Lanes))
	for _, lane := range model.Lanes {
		src := l[lane]
		dst := make([]*model.Task, len(src))
		for i, t := range src {
			c := *t
			dst[i] = &c
		}
		out[lane] = dst
	}
	return out
}

// FilterOption selects which tasks a view shows.
type FilterOption string

const (
	FilterAll        FilterOption = "all"
	FilterAssigned   FilterOption = "assigned"
	FilterUnassigned FilterOption = "unassigned"
	FilterOverdue    FilterOption = "overdue"
)

// ParseFilter parses a filter name. Empty means FilterAll.
func ParseFilter(s string) (FilterOption, error) {
	switch f := FilterOption(strings.ToLower(s)); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterAssigned, FilterUnassigned, FilterOverdue:
		return f, nil
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

// SortKey selects the view ordering.
type SortKey string

const (
	SortCreatedAt SortKey = "created_at"
	SortDueDate   SortKey = "due_date"
	SortPriority  SortKey = "priority"
	SortTitle     SortKey = "title"
)

// ParseSortKey parses a sort key. Empty means SortCreatedAt.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(s)); k {
	case "":
		return SortCreatedAt, nil
	case SortCreatedAt, SortDueDate, SortPriority, SortTitle:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Direction of a sort.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection parses "asc" or "desc". Empty means Desc.
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(s)); d {
	case "":
		return Desc, nil
	case Asc, Desc:
		return d, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}

// Partition groups tasks by lane, newest first. Tasks with an unknown lane are dropped.
// Every lane is present in the result, possibly empty.
func Partition(tasks []*model.Task) Lanes {
	out := make(Lanes, len(model.Lanes))
	for _, lane := range model.Lanes {
		out[lane] = []*model.Task{}
	}
	for _, t := range tasks {
		if !t.Status.Valid() {
			continue
		}
		out[t.Status] = append(out[t.Status], t)
	}
	for _, lane := range model.Lanes {
		out[lane] = Sort(out[lane], SortCreatedAt, Desc)
	}
	return out
}

// Filter returns the tasks matching opt, keeping their order.
func Filter(tasks []*model.Task, opt FilterOption, now time.Time) []*model.Task {
	out := make([]*model.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, opt, now) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t *model.Task, opt FilterOption, now time.Time) bool {
	switch opt {
	case FilterAssigned:
		return t.IsAssigned()
	case FilterUnassigned:
		return !t.IsAssigned()
	case FilterOverdue:
		return t.IsOverdue(now)
	default:
		return true
	}
}

// Sort returns a stably sorted copy of tasks. Tasks without a due date sort
// after dated ones under SortDueDate in both directions.
func Sort(tasks []*model.Task, key SortKey, dir Direction) []*model.Task {
	out := slices.Clone(tasks)
	if out == nil {
		out = []*model.Task{}
	}
	sign := 1
	if dir == Desc {
		sign = -1
	}
	slices.SortStableFunc(out, func(a, b *model.Task) int {
		if key == SortDueDate {
			switch {
			case a.DueDate == nil && b.DueDate == nil:
				return 0
			case a.DueDate == nil:
				return 1
			case b.DueDate == nil:
				return -1
			}
		}
		return sign * compare(a, b, key)
	})
	return out
}

func compare(a, b *model.Task, key SortKey) int {
	switch key {
	case SortDueDate:
		return a.DueDate.Compare(*b.DueDate)
	case SortPriority:
		return a.Priority.Rank() - b.Priority.Rank()
	case SortTitle:
		return strings.Compare(a.Title, b.Title)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

// Derive filters then sorts every lane. lanes is not modified.
func Derive(lanes Lanes, opt FilterOption, key SortKey, dir Direction, now time.Time) Lanes {
	out := make(Lanes, len(model.Lanes))
	for _, lane := range model.Lanes {
		out[lane] = Sort(Filter(lanes[lane], opt, now), key, dir)
	}
	return out
}
