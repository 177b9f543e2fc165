package bolt

import (
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/infrastructure/boltdb"
)

// todoRecord is the stored form of a todo: references are kept as ids and
// resolved against the users bucket on read.
type todoRecord struct {
	ID          string       `json:"id"`
	OwnerID     string       `json:"owner_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	Tags        []string     `json:"tags,omitempty"`
	MentionIDs  []string     `json:"mention_ids,omitempty"`
	Notes       []noteRecord `json:"notes,omitempty"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type noteRecord struct {
	ID       string    `json:"id"`
	Content  string    `json:"content"`
	EditorID string    `json:"editor_id"`
	Date     time.Time `json:"date"`
}

func newTodoRecord(t *domain.Todo) todoRecord {
	rec := todoRecord{
		ID:          t.ID,
		OwnerID:     t.Owner.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		Tags:        t.Tags,
		MentionIDs:  t.MentionIDs(),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	for _, n := range t.Notes {
		rec.Notes = append(rec.Notes, noteRecord{
			ID:       n.ID,
			Content:  n.Content,
			EditorID: n.Editor.ID,
			Date:     n.Date,
		})
	}
	return rec
}

func decodeTodo(data []byte) (todoRecord, error) {
	var rec todoRecord
	err := json.Unmarshal(data, &rec)
	return rec, err
}

// resolver caches user lookups for the lifetime of one transaction.
type resolver struct {
	users *bolt.Bucket
	cache map[string]domain.UserRef
}

func newResolver(tx *bolt.Tx) *resolver {
	return &resolver{users: tx.Bucket(boltdb.BucketUsers), cache: map[string]domain.UserRef{}}
}

func (r *resolver) ref(id string) domain.UserRef {
	if ref, ok := r.cache[id]; ok {
		return ref
	}
	ref := domain.UserRef{ID: id}
	if raw := r.users.Get([]byte(id)); raw != nil {
		var u domain.User
		if err := json.Unmarshal(raw, &u); err == nil {
			ref = u.Ref()
		}
	}
	r.cache[id] = ref
	return ref
}

func (r *resolver) todo(rec todoRecord) domain.Todo {
	t := domain.Todo{
		ID:             rec.ID,
		Owner:          r.ref(rec.OwnerID),
		Title:          rec.Title,
		Description:    rec.Description,
		Status:         domain.Status(rec.Status),
		Priority:       domain.Priority(rec.Priority),
		Tags:           append([]string{}, rec.Tags...),
		MentionedUsers: make([]domain.UserRef, 0, len(rec.MentionIDs)),
		Notes:          make([]domain.Note, 0, len(rec.Notes)),
		DueDate:        rec.DueDate,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
	}
	for _, id := range rec.MentionIDs {
		t.MentionedUsers = append(t.MentionedUsers, r.ref(id))
	}
	for _, n := range rec.Notes {
		t.Notes = append(t.Notes, domain.Note{
			ID:      n.ID,
			Content: n.Content,
			Editor:  r.ref(n.EditorID),
			Date:    n.Date,
		})
	}
	return t
}
