package repository

import (
	"strings"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

// Matches evaluates the filter against a todo in process. Stores without a
// query language use it directly; SQL and document stores must agree with it.
func (f TodoFilter) Matches(t *domain.Todo) bool {
	if t == nil || !t.IsVisibleTo(f.ViewerID) {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if len(f.Tags) > 0 && !intersects(t.Tags, f.Tags) {
		return false
	}
	if f.DueFrom != nil || f.DueTo != nil {
		if t.DueDate == nil {
			return false
		}
		if f.DueFrom != nil && t.DueDate.Before(*f.DueFrom) {
			return false
		}
		if f.DueTo != nil && t.DueDate.After(*f.DueTo) {
			return false
		}
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	return true
}

func intersects(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// Normalize fills in the default sort (createdAt, descending).
func (s TodoSort) Normalize() TodoSort {
	if s.Field == "" {
		s.Field = SortByCreatedAt
	}
	if s.Direction != SortAsc {
		s.Direction = SortDesc
	}
	return s
}

// Compare orders a before b under s: negative when a comes first. Missing due
// dates sort lowest, and the identifier breaks ties in the same direction.
func (s TodoSort) Compare(a, b *domain.Todo) int {
	s = s.Normalize()
	c := compareField(s.Field, a, b)
	if c == 0 && s.Field != SortByID {
		c = strings.Compare(a.ID, b.ID)
	}
	return c * int(s.Direction)
}

func compareField(field SortField, a, b *domain.Todo) int {
	switch field {
	case SortByID:
		return strings.Compare(a.ID, b.ID)
	case SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	case SortByUpdatedAt:
		return a.UpdatedAt.Compare(b.UpdatedAt)
	case SortByDueDate:
		return compareOptionalTime(a.DueDate, b.DueDate)
	case SortByPriority:
		return compareInt(a.Priority.Rank(), b.Priority.Rank())
	case SortByStatus:
		return compareInt(a.Status.Rank(), b.Status.Rank())
	case SortByTitle:
		return strings.Compare(a.Title, b.Title)
	default:
		return 0
	}
}

func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Follows reports whether row comes strictly after the cursor row under s.
func (s TodoSort) Follows(row, cursor *domain.Todo) bool {
	return s.Compare(row, cursor) > 0
}

// FollowsID is the identifier-only bound used when the cursor row is gone.
func (s TodoSort) FollowsID(id, cursorID string) bool {
	if s.Normalize().Direction == SortAsc {
		return id > cursorID
	}
	return id < cursorID
}
