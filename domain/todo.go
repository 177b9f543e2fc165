package domain

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Status is the lifecycle state of a todo.
type Status string

const (
	StatusTodo      Status = "todo"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Priority orders todos by urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Rank returns the sort weight of p; unknown values sort first.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	default:
		return 0
	}
}

// Rank returns the sort weight of s in declaration order.
func (s Status) Rank() int {
	switch s {
	case StatusTodo:
		return 1
	case StatusPending:
		return 2
	case StatusCompleted:
		return 3
	default:
		return 0
	}
}

// ParseStatus accepts a known status, case-insensitively.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Rank() > 0
}

// ParsePriority accepts a known priority, case-insensitively.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Rank() > 0
}

// Note is an entry in the append-in-intent notes log of a todo.
type Note struct {
	ID      string    `json:"id"`
	Content string    `json:"content"`
	Editor  UserRef   `json:"editor"`
	Date    time.Time `json:"date"`
}

// Todo is a task owned by one user and visible to the users it mentions.
type Todo struct {
	ID             string     `json:"id"`
	Owner          UserRef    `json:"user"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Status         Status     `json:"status"`
	Priority       Priority   `json:"priority"`
	Tags           []string   `json:"tags"`
	MentionedUsers []UserRef  `json:"mentionedUsers"`
	Notes          []Note     `json:"notes"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// ApplyDefaults fills the enum defaults and trims text fields.
func (t *Todo) ApplyDefaults() {
	if t == nil {
		return
	}
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	if t.Status == "" {
		t.Status = StatusTodo
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	t.Tags = CleanTags(t.Tags)
	if t.MentionedUsers == nil {
		t.MentionedUsers = []UserRef{}
	}
	if t.Notes == nil {
		t.Notes = []Note{}
	}
}

// Validate checks the invariants every persisted todo must hold.
func (t *Todo) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrTitleRequired
	}
	err := validation.ValidateStruct(t,
		validation.Field(&t.Owner, validation.By(func(any) error {
			if !IsValidID(t.Owner.ID) {
				return validation.NewError("validation_owner", "owner must be a valid identifier")
			}
			return nil
		})),
		validation.Field(&t.Status, validation.Required, validation.In(StatusTodo, StatusPending, StatusCompleted)),
		validation.Field(&t.Priority, validation.Required, validation.In(PriorityLow, PriorityMedium, PriorityHigh)),
		validation.Field(&t.Tags, validation.Each(validation.By(func(v any) error {
			if s, _ := v.(string); strings.TrimSpace(s) == "" {
				return validation.NewError("validation_tag", "tags must not be blank")
			}
			return nil
		}))),
		validation.Field(&t.Notes, validation.Each(validation.By(func(v any) error {
			if n, _ := v.(Note); strings.TrimSpace(n.Content) == "" {
				return validation.NewError("validation_note", "note content is required")
			}
			return nil
		}))),
	)
	if err != nil {
		return WrapError(ErrCodeInvalid, "invalid todo", err)
	}
	return nil
}

// IsOwnedBy reports whether userID owns the todo.
func (t *Todo) IsOwnedBy(userID string) bool {
	return t != nil && userID != "" && t.Owner.ID == userID
}

// Mentions reports whether userID is in the mentioned users.
func (t *Todo) Mentions(userID string) bool {
	if t == nil || userID == "" {
		return false
	}
	for _, u := range t.MentionedUsers {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// IsVisibleTo reports whether userID may read the todo.
func (t *Todo) IsVisibleTo(userID string) bool {
	return t.IsOwnedBy(userID) || t.Mentions(userID)
}

func (t *Todo) IsCompleted() bool {
	return t != nil && t.Status == StatusCompleted
}

// MentionIDs returns the identifiers of the mentioned users.
func (t *Todo) MentionIDs() []string {
	ids := make([]string, 0, len(t.MentionedUsers))
	for _, u := range t.MentionedUsers {
		ids = append(ids, u.ID)
	}
	return ids
}

// SplitCSV splits a comma-separated list, trimming tokens and dropping empty ones.
func SplitCSV(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// CleanTags trims tags, dropping blanks and duplicates while keeping display order.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
