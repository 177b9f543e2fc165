package repository

import (
	"context"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

// SortField names a sortable todo attribute.
type SortField string

const (
	SortByID        SortField = "id"
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByDueDate   SortField = "dueDate"
	SortByPriority  SortField = "priority"
	SortByStatus    SortField = "status"
	SortByTitle     SortField = "title"
)

// SortDirection is either ascending or descending.
type SortDirection int

const (
	SortDesc SortDirection = -1
	SortAsc  SortDirection = 1
)

// TodoFilter is the normalized predicate a store must apply. Zero-valued
// fields contribute no constraint, except ViewerID which is always required.
type TodoFilter struct {
	// ViewerID restricts results to todos the viewer owns or is mentioned in.
	ViewerID string
	Status   domain.Status
	Priority domain.Priority
	// Tags matches todos sharing at least one tag.
	Tags []string
	// DueFrom and DueTo are inclusive bounds on the due date.
	DueFrom *time.Time
	DueTo   *time.Time
	// Search is a case-insensitive substring of title or description.
	Search string
}

// TodoSort orders results; ID is always appended as a tie-break in the same
// direction.
type TodoSort struct {
	Field     SortField
	Direction SortDirection
}

// TodoQuery is a filtered, sorted and optionally bounded read.
type TodoQuery struct {
	Filter TodoFilter
	Sort   TodoSort
	// After is the last identifier of the previous page. Empty means first page.
	After string
	// Limit caps the number of rows; zero means no cap beyond the store's own.
	Limit int
}

// BulkResult reports the outcome of a set-based update.
type BulkResult struct {
	Matched  int64 `json:"matchedCount"`
	Modified int64 `json:"modifiedCount"`
}

// TodoRepository persists todos and resolves owner/mention/editor references
// at read time.
type TodoRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Todo, error)
	Find(ctx context.Context, query TodoQuery) ([]domain.Todo, error)
	Create(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	Update(ctx context.Context, todo *domain.Todo) (*domain.Todo, error)
	Delete(ctx context.Context, id string) error
	// CompleteMany marks every todo in ids owned by ownerID as completed in a
	// single atomic operation.
	CompleteMany(ctx context.Context, ids []string, ownerID string) (BulkResult, error)
}
