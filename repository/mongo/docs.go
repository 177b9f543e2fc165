package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	mongodrv "go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/fastygo/tasktracker/domain"
)

type todoDoc struct {
	ID             string     `bson:"_id"`
	UserID         string     `bson:"user"`
	Title          string     `bson:"title"`
	Description    string     `bson:"description"`
	Status         string     `bson:"status"`
	Priority       string     `bson:"priority"`
	Tags           []string   `bson:"tags"`
	MentionedUsers []string   `bson:"mentionedUsers"`
	Notes          []noteDoc  `bson:"notes"`
	DueDate        *time.Time `bson:"dueDate,omitempty"`
	CreatedAt      time.Time  `bson:"createdAt"`
	UpdatedAt      time.Time  `bson:"updatedAt"`
}

type noteDoc struct {
	ID      string    `bson:"_id"`
	Content string    `bson:"content"`
	Editor  string    `bson:"editor"`
	Date    time.Time `bson:"date"`
}

type userDoc struct {
	ID        string            `bson:"_id"`
	Username  string            `bson:"username"`
	Email     string            `bson:"email"`
	Role      string            `bson:"role"`
	Status    string            `bson:"status"`
	Metadata  map[string]string `bson:"metadata,omitempty"`
	CreatedAt time.Time         `bson:"createdAt"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

func (d userDoc) user() *domain.User {
	return &domain.User{
		ID:        d.ID,
		Username:  d.Username,
		Email:     d.Email,
		Role:      d.Role,
		Status:    d.Status,
		Metadata:  d.Metadata,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

func newTodoDoc(t *domain.Todo) todoDoc {
	doc := todoDoc{
		ID:             t.ID,
		UserID:         t.Owner.ID,
		Title:          t.Title,
		Description:    t.Description,
		Status:         string(t.Status),
		Priority:       string(t.Priority),
		Tags:           nonNil(t.Tags),
		MentionedUsers: nonNil(t.MentionIDs()),
		Notes:          []noteDoc{},
		DueDate:        t.DueDate,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
	for _, n := range t.Notes {
		doc.Notes = append(doc.Notes, noteDoc{ID: n.ID, Content: n.Content, Editor: n.Editor.ID, Date: n.Date})
	}
	return doc
}

// referencedIDs lists every user id a todo points at.
func (d todoDoc) referencedIDs() []string {
	ids := append([]string{d.UserID}, d.MentionedUsers...)
	for _, n := range d.Notes {
		ids = append(ids, n.Editor)
	}
	return ids
}

// resolveUsers looks up every referenced user in one query.
func resolveUsers(ctx context.Context, users *mongodrv.Collection, ids []string) (map[string]domain.UserRef, error) {
	refs := make(map[string]domain.UserRef, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := refs[id]; ok {
			continue
		}
		refs[id] = domain.UserRef{ID: id}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return refs, nil
	}

	cursor, err := users.Find(ctx, bson.M{"_id": bson.M{"$in": unique}})
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	for _, d := range docs {
		refs[d.ID] = d.user().Ref()
	}
	return refs, nil
}

func (d todoDoc) todo(refs map[string]domain.UserRef) domain.Todo {
	t := domain.Todo{
		ID:             d.ID,
		Owner:          lookup(refs, d.UserID),
		Title:          d.Title,
		Description:    d.Description,
		Status:         domain.Status(d.Status),
		Priority:       domain.Priority(d.Priority),
		Tags:           nonNil(d.Tags),
		MentionedUsers: make([]domain.UserRef, 0, len(d.MentionedUsers)),
		Notes:          make([]domain.Note, 0, len(d.Notes)),
		DueDate:        d.DueDate,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
	for _, id := range d.MentionedUsers {
		t.MentionedUsers = append(t.MentionedUsers, lookup(refs, id))
	}
	for _, n := range d.Notes {
		t.Notes = append(t.Notes, domain.Note{ID: n.ID, Content: n.Content, Editor: lookup(refs, n.Editor), Date: n.Date})
	}
	return t
}

// lookup keeps the bare id of a user that no longer resolves.
func lookup(refs map[string]domain.UserRef, id string) domain.UserRef {
	if ref, ok := refs[id]; ok {
		return ref
	}
	return domain.UserRef{ID: id}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
