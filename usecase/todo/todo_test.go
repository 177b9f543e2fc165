package todo

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/infrastructure/boltdb"
	"github.com/fastygo/tasktracker/repository"
	boltrepo "github.com/fastygo/tasktracker/repository/bolt"
)

type fixture struct {
	uc    *UseCase
	todos repository.TodoRepository
	users repository.UserRepository
	ada   *domain.User
	bob   *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "todos.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	f := &fixture{
		todos: boltrepo.NewTodoRepository(db),
		users: boltrepo.NewUserRepository(db),
	}
	f.uc = New(f.todos, f.users, Config{DefaultLimit: 10, MaxLimit: 100, ExportMaxRows: 5000}, nil)
	f.ada = f.seedUser(t, "ada")
	f.bob = f.seedUser(t, "bob")
	return f
}

func (f *fixture) seedUser(t *testing.T, name string) *domain.User {
	t.Helper()
	u := &domain.User{ID: domain.NewID(), Username: name, Status: domain.UserStatusActive}
	require.NoError(t, f.users.Upsert(context.Background(), u))
	return u
}

func (f *fixture) create(t *testing.T, owner *domain.User, in CreateInput) *domain.Todo {
	t.Helper()
	todo, err := f.uc.Create(context.Background(), owner.ID, in)
	require.NoError(t, err)
	return todo
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	todo, err := f.uc.Create(ctx, f.ada.ID, CreateInput{
		Title:                 "  Write report ",
		Note:                  "outline first",
		DueDate:               "2024-03-10",
		Priority:              "high",
		Tags:                  "work, urgent, ,work",
		MentionedUsernamesCsv: "bob, nobody",
	})
	require.NoError(t, err)

	assert.Equal(t, "Write report", todo.Title)
	assert.Equal(t, domain.StatusTodo, todo.Status)
	assert.Equal(t, domain.PriorityHigh, todo.Priority)
	assert.Equal(t, []string{"work", "urgent"}, todo.Tags)
	require.Len(t, todo.MentionedUsers, 1)
	assert.Equal(t, f.bob.ID, todo.MentionedUsers[0].ID)
	require.Len(t, todo.Notes, 1)
	assert.Equal(t, f.ada.ID, todo.Notes[0].Editor.ID)
	require.NotNil(t, todo.DueDate)
	assert.Equal(t, "2024-03-10", todo.DueDate.Format(dateLayout))
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, f.ada.ID, CreateInput{Title: "   "})
	assert.ErrorIs(t, err, domain.ErrTitleRequired)

	_, err = f.uc.Create(ctx, f.ada.ID, CreateInput{Title: "x", Priority: "urgent"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.Create(ctx, f.ada.ID, CreateInput{Title: "x", DueDate: "tomorrow"})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	defaulted, err := f.uc.Create(ctx, f.ada.ID, CreateInput{Title: "x"})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityMedium, defaulted.Priority)
	assert.Empty(t, defaulted.Notes)
}

func TestGetVisibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	carol := f.seedUser(t, "carol")

	todo := f.create(t, f.ada, CreateInput{Title: "shared", MentionedUsernamesCsv: "bob"})

	got, err := f.uc.Get(ctx, f.bob.ID, todo.ID)
	require.NoError(t, err)
	assert.Equal(t, todo.ID, got.ID)

	_, err = f.uc.Get(ctx, carol.ID, todo.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.Get(ctx, f.ada.ID, domain.NewID())
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)

	_, err = f.uc.Get(ctx, f.ada.ID, "not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	todo := f.create(t, f.ada, CreateInput{Title: "draft", DueDate: "2024-03-10", Tags: "a", MentionedUsernamesCsv: "bob"})

	// mentioned users can read but never write
	title := "hijack"
	_, err := f.uc.Update(ctx, f.bob.ID, todo.ID, UpdateInput{Title: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	status := "pending"
	blank := ""
	notes := []NoteInput{{Content: "kept"}, {Content: "by bob", EditorID: f.bob.ID}}
	updated, err := f.uc.Update(ctx, f.ada.ID, todo.ID, UpdateInput{Status: &status, DueDate: &blank, Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, "draft", updated.Title)
	assert.Equal(t, domain.StatusPending, updated.Status)
	assert.Equal(t, []string{"a"}, updated.Tags)
	require.NotNil(t, updated.DueDate)
	assert.True(t, updated.DueDate.Equal(*todo.DueDate))
	require.Len(t, updated.MentionedUsers, 1)
	require.Len(t, updated.Notes, 2)
	assert.Equal(t, f.ada.ID, updated.Notes[0].Editor.ID)
	assert.Equal(t, "bob", updated.Notes[1].Editor.Username)

	emptyTitle := " "
	_, err = f.uc.Update(ctx, f.ada.ID, todo.ID, UpdateInput{Title: &emptyTitle})
	assert.ErrorIs(t, err, domain.ErrTitleRequired)

	badStatus := "archived"
	_, err = f.uc.Update(ctx, f.ada.ID, todo.ID, UpdateInput{Status: &badStatus})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	todo := f.create(t, f.ada, CreateInput{Title: "temp", MentionedUsernamesCsv: "bob"})

	assert.ErrorIs(t, f.uc.Delete(ctx, f.bob.ID, todo.ID), domain.ErrForbidden)
	require.NoError(t, f.uc.Delete(ctx, f.ada.ID, todo.ID))
	assert.ErrorIs(t, f.uc.Delete(ctx, f.ada.ID, todo.ID), domain.ErrTodoNotFound)
}
