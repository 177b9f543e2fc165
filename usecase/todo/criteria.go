package todo

import (
	"strings"
	"time"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

const dateLayout = "2006-01-02"

// Criteria carries the raw filter and sort parameters shared by fetch and export.
type Criteria struct {
	Status    string
	Priority  string
	Tags      string
	DateFrom  string
	DateTo    string
	Search    string
	SortBy    string
	SortOrder string
}

var sortFields = map[string]repository.SortField{
	"id":        repository.SortByID,
	"_id":       repository.SortByID,
	"createdAt": repository.SortByCreatedAt,
	"updatedAt": repository.SortByUpdatedAt,
	"dueDate":   repository.SortByDueDate,
	"date":      repository.SortByDueDate,
	"priority":  repository.SortByPriority,
	"status":    repository.SortByStatus,
	"title":     repository.SortByTitle,
}

// BuildFilter turns raw criteria into a store filter scoped to viewerID.
// Blank tag tokens and unparseable dates contribute no constraint.
func BuildFilter(viewerID string, c Criteria) repository.TodoFilter {
	filter := repository.TodoFilter{
		ViewerID: viewerID,
		Status:   domain.Status(strings.TrimSpace(c.Status)),
		Priority: domain.Priority(strings.TrimSpace(c.Priority)),
		Tags:     domain.CleanTags(domain.SplitCSV(c.Tags)),
		Search:   strings.TrimSpace(c.Search),
	}
	if len(filter.Tags) == 0 {
		filter.Tags = nil
	}
	if from, ok := parseDay(c.DateFrom); ok {
		filter.DueFrom = &from
	}
	if to, ok := parseDay(c.DateTo); ok {
		end := endOfDay(to)
		filter.DueTo = &end
	}
	return filter
}

// BuildSort resolves sortBy/sortOrder. Unknown fields sort by createdAt and
// anything but "asc" is descending.
func BuildSort(sortBy, sortOrder string) repository.TodoSort {
	field, ok := sortFields[strings.TrimSpace(sortBy)]
	if !ok {
		field = repository.SortByCreatedAt
	}
	dir := repository.SortDesc
	if strings.EqualFold(strings.TrimSpace(sortOrder), "asc") {
		dir = repository.SortAsc
	}
	return repository.TodoSort{Field: field, Direction: dir}
}

func (c Criteria) query(viewerID string) repository.TodoQuery {
	return repository.TodoQuery{
		Filter: BuildFilter(viewerID, c),
		Sort:   BuildSort(c.SortBy, c.SortOrder),
	}
}

// parseDay accepts a calendar date or an RFC 3339 timestamp.
func parseDay(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), time.UTC)
}

// ParseDueDate parses a due date supplied on create or update.
func ParseDueDate(raw string) (*time.Time, error) {
	t, ok := parseDay(raw)
	if !ok {
		return nil, domain.NewError(domain.ErrCodeInvalid, "invalid due date")
	}
	return &t, nil
}
