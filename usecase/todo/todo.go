package todo

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
	appLogger "github.com/fastygo/tasktracker/pkg/logger"
)

// Config bounds page and export sizes.
type Config struct {
	DefaultLimit  int
	MaxLimit      int
	ExportMaxRows int
}

type UseCase struct {
	todos  repository.TodoRepository
	users  repository.UserRepository
	cfg    Config
	logger *zap.Logger
}

func New(todos repository.TodoRepository, users repository.UserRepository, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 10
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = 100
	}
	if cfg.ExportMaxRows <= 0 {
		cfg.ExportMaxRows = 5000
	}
	return &UseCase{
		todos:  todos,
		users:  users,
		cfg:    cfg,
		logger: logger,
	}
}

// CreateInput is the payload of a new todo. Tags and mentions are
// comma-separated; Note becomes the first note when not blank.
type CreateInput struct {
	Title                 string
	Description           string
	Note                  string
	DueDate               string
	Priority              string
	Tags                  string
	MentionedUsernamesCsv string
}

// NoteInput is one entry of a replacement notes list.
type NoteInput struct {
	ID       string
	Content  string
	EditorID string
	Date     *time.Time
}

// UpdateInput carries a partial update; nil fields are left untouched.
type UpdateInput struct {
	Title                 *string
	Description           *string
	Priority              *string
	Status                *string
	Tags                  *[]string
	MentionedUsernamesCsv *string
	DueDate               *string
	Notes                 *[]NoteInput
}

// Get returns a todo the viewer owns or is mentioned on.
func (uc *UseCase) Get(ctx context.Context, viewerID, id string) (*domain.Todo, error) {
	todo, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !todo.IsVisibleTo(viewerID) {
		return nil, domain.ErrForbidden
	}
	return todo, nil
}

func (uc *UseCase) Create(ctx context.Context, ownerID string, in CreateInput) (*domain.Todo, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.ErrTitleRequired
	}

	todo := &domain.Todo{
		Owner:       domain.UserRef{ID: ownerID},
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.StatusTodo,
		Priority:    domain.Priority(strings.TrimSpace(in.Priority)),
		Tags:        domain.SplitCSV(in.Tags),
	}
	if strings.TrimSpace(in.DueDate) != "" {
		due, err := ParseDueDate(in.DueDate)
		if err != nil {
			return nil, err
		}
		todo.DueDate = due
	}
	if strings.TrimSpace(in.Note) != "" {
		todo.Notes = []domain.Note{{
			Content: in.Note,
			Editor:  domain.UserRef{ID: ownerID},
			Date:    time.Now().UTC(),
		}}
	}

	todo.ApplyDefaults()
	if err := todo.Validate(); err != nil {
		return nil, err
	}

	mentions, err := uc.resolveMentions(ctx, in.MentionedUsernamesCsv)
	if err != nil {
		return nil, err
	}
	todo.MentionedUsers = mentions

	created, err := uc.todos.Create(ctx, todo)
	if err != nil {
		appLogger.WithRequestID(ctx, uc.logger).Error("failed to create todo", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	return created, nil
}

// Update applies a partial update. Only the owner may change a todo.
func (uc *UseCase) Update(ctx context.Context, ownerID, id string, in UpdateInput) (*domain.Todo, error) {
	todo, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !todo.IsOwnedBy(ownerID) {
		return nil, domain.ErrForbidden
	}

	if in.Title != nil {
		todo.Title = *in.Title
	}
	if in.Description != nil {
		todo.Description = *in.Description
	}
	if in.Priority != nil {
		todo.Priority = domain.Priority(strings.TrimSpace(*in.Priority))
	}
	if in.Status != nil {
		todo.Status = domain.Status(strings.TrimSpace(*in.Status))
	}
	if in.DueDate != nil && strings.TrimSpace(*in.DueDate) != "" {
		due, err := ParseDueDate(*in.DueDate)
		if err != nil {
			return nil, err
		}
		todo.DueDate = due
	}
	if in.Tags != nil {
		todo.Tags = domain.CleanTags(*in.Tags)
	}
	if in.Notes != nil {
		todo.Notes = replaceNotes(ownerID, *in.Notes)
	}

	todo.ApplyDefaults()
	if err := todo.Validate(); err != nil {
		return nil, err
	}

	if in.MentionedUsernamesCsv != nil {
		mentions, err := uc.resolveMentions(ctx, *in.MentionedUsernamesCsv)
		if err != nil {
			return nil, err
		}
		todo.MentionedUsers = mentions
	}

	updated, err := uc.todos.Update(ctx, todo)
	if err != nil {
		appLogger.WithRequestID(ctx, uc.logger).Error("failed to update todo", zap.String("todo_id", todo.ID), zap.Error(err))
		return nil, err
	}
	return updated, nil
}

func (uc *UseCase) Delete(ctx context.Context, ownerID, id string) error {
	todo, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if !todo.IsOwnedBy(ownerID) {
		return domain.ErrForbidden
	}
	if err := uc.todos.Delete(ctx, todo.ID); err != nil {
		appLogger.WithRequestID(ctx, uc.logger).Error("failed to delete todo", zap.String("todo_id", todo.ID), zap.Error(err))
		return err
	}
	return nil
}

// load validates the id before reading, so a malformed id never reaches the store.
func (uc *UseCase) load(ctx context.Context, id string) (*domain.Todo, error) {
	if !domain.IsValidID(id) {
		return nil, domain.ErrInvalidID
	}
	return uc.todos.GetByID(ctx, domain.NormalizeID(id))
}

func (uc *UseCase) resolveMentions(ctx context.Context, csv string) ([]domain.UserRef, error) {
	names := domain.SplitCSV(csv)
	if len(names) == 0 {
		return []domain.UserRef{}, nil
	}
	refs, err := uc.users.FindByUsernames(ctx, names)
	if err != nil {
		appLogger.WithRequestID(ctx, uc.logger).Error("failed to resolve mentioned usernames", zap.Error(err))
		return nil, err
	}
	return refs, nil
}

// replaceNotes builds a new notes list. Missing editors default to the
// caller and missing dates to now.
func replaceNotes(callerID string, in []NoteInput) []domain.Note {
	now := time.Now().UTC()
	notes := make([]domain.Note, 0, len(in))
	for _, n := range in {
		note := domain.Note{
			Content: n.Content,
			Editor:  domain.UserRef{ID: callerID},
			Date:    now,
		}
		if domain.IsValidID(n.ID) {
			note.ID = domain.NormalizeID(n.ID)
		}
		if domain.IsValidID(n.EditorID) {
			note.Editor = domain.UserRef{ID: domain.NormalizeID(n.EditorID)}
		}
		if n.Date != nil && !n.Date.IsZero() {
			note.Date = n.Date.UTC()
		}
		notes = append(notes, note)
	}
	return notes
}
