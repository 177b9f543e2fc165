package bolt

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bolt "go.etcd.io/bbolt"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/internal/infrastructure/boltdb"
	"github.com/fastygo/tasktracker/repository"
)

func openTestDB(t *testing.T) *bolt.DB {
	t.Helper()
	db, err := boltdb.Open(filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func seedUser(t *testing.T, users repository.UserRepository, username string) *domain.User {
	t.Helper()
	u := &domain.User{ID: domain.NewID(), Username: username, Email: username + "@example.com", Status: domain.UserStatusActive}
	require.NoError(t, users.Upsert(context.Background(), u))
	return u
}

func newTodo(owner *domain.User, title string) *domain.Todo {
	t := &domain.Todo{Owner: owner.Ref(), Title: title}
	t.ApplyDefaults()
	return t
}

func TestTodoRepository_CreateResolvesReferences(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	todos := NewTodoRepository(db)

	ada := seedUser(t, users, "ada")
	bob := seedUser(t, users, "bob")

	in := newTodo(ada, "review")
	in.MentionedUsers = []domain.UserRef{{ID: bob.ID}}
	in.Notes = []domain.Note{{Content: "first", Editor: domain.UserRef{ID: ada.ID}, Date: time.Now().UTC()}}

	created, err := todos.Create(ctx, in)
	require.NoError(t, err)
	require.True(t, domain.IsValidID(created.ID))

	assert.Equal(t, "ada", created.Owner.Username)
	require.Len(t, created.MentionedUsers, 1)
	assert.Equal(t, "bob", created.MentionedUsers[0].Username)
	require.Len(t, created.Notes, 1)
	assert.NotEmpty(t, created.Notes[0].ID)
	assert.Equal(t, "ada@example.com", created.Notes[0].Editor.Email)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestTodoRepository_RejectsUnknownUsers(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	todos := NewTodoRepository(db)

	ada := seedUser(t, users, "ada")

	in := newTodo(ada, "ghost mention")
	in.MentionedUsers = []domain.UserRef{{ID: domain.NewID()}}
	_, err := todos.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrUnknownUserRef)

	orphan := &domain.Todo{Owner: domain.UserRef{ID: domain.NewID()}, Title: "orphan"}
	orphan.ApplyDefaults()
	_, err = todos.Create(ctx, orphan)
	assert.ErrorIs(t, err, domain.ErrUnknownUserRef)
}

func TestTodoRepository_UpdateKeepsOwnerAndCreation(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	todos := NewTodoRepository(db)

	ada := seedUser(t, users, "ada")
	bob := seedUser(t, users, "bob")

	created, err := todos.Create(ctx, newTodo(ada, "draft"))
	require.NoError(t, err)

	change := *created
	change.Title = "final"
	change.Owner = bob.Ref()
	change.CreatedAt = time.Time{}

	updated, err := todos.Update(ctx, &change)
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Title)
	assert.Equal(t, ada.ID, updated.Owner.ID)
	assert.True(t, updated.CreatedAt.Equal(created.CreatedAt))
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	missing := newTodo(ada, "missing")
	missing.ID = domain.NewID()
	_, err = todos.Update(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)
}

func TestTodoRepository_Delete(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	todos := NewTodoRepository(db)

	ada := seedUser(t, users, "ada")
	created, err := todos.Create(ctx, newTodo(ada, "gone soon"))
	require.NoError(t, err)

	require.NoError(t, todos.Delete(ctx, created.ID))
	_, err = todos.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)
	assert.ErrorIs(t, todos.Delete(ctx, created.ID), domain.ErrTodoNotFound)
}

func TestTodoRepository_CompleteMany(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	todos := NewTodoRepository(db)

	ada := seedUser(t, users, "ada")
	bob := seedUser(t, users, "bob")

	mine, err := todos.Create(ctx, newTodo(ada, "mine"))
	require.NoError(t, err)
	theirs, err := todos.Create(ctx, newTodo(bob, "theirs"))
	require.NoError(t, err)

	ids := []string{mine.ID, theirs.ID, domain.NewID(), mine.ID}
	res, err := todos.CompleteMany(ctx, ids, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.BulkResult{Matched: 1, Modified: 1}, res)

	again, err := todos.CompleteMany(ctx, ids, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, repository.BulkResult{Matched: 1, Modified: 0}, again)

	got, err := todos.GetByID(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, got.Status)

	other, err := todos.GetByID(ctx, theirs.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusTodo, other.Status)
}

func TestTodoRepository_FindKeysetOnNonIDSort(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	todos := NewTodoRepository(db)

	ada := seedUser(t, users, "ada")
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	// duplicate due dates and missing ones exercise the (value, id) cursor
	var all []string
	for i := 0; i < 9; i++ {
		in := newTodo(ada, "task")
		switch i % 3 {
		case 0:
			d := due
			in.DueDate = &d
		case 1:
			d := due.Add(24 * time.Hour)
			in.DueDate = &d
		}
		created, err := todos.Create(ctx, in)
		require.NoError(t, err)
		all = append(all, created.ID)
	}

	for _, dir := range []repository.SortDirection{repository.SortAsc, repository.SortDesc} {
		sort := repository.TodoSort{Field: repository.SortByDueDate, Direction: dir}
		var walked []domain.Todo
		after := ""
		for page := 0; page < 10; page++ {
			rows, err := todos.Find(ctx, repository.TodoQuery{
				Filter: repository.TodoFilter{ViewerID: ada.ID},
				Sort:   sort,
				After:  after,
				Limit:  2,
			})
			require.NoError(t, err)
			walked = append(walked, rows...)
			if len(rows) < 2 {
				break
			}
			after = rows[len(rows)-1].ID
		}

		require.Len(t, walked, len(all), "direction %d", dir)
		seen := map[string]bool{}
		for i, row := range walked {
			assert.False(t, seen[row.ID], "duplicate %s", row.ID)
			seen[row.ID] = true
			if i > 0 {
				assert.Negative(t, sort.Compare(&walked[i-1], &row))
			}
		}
	}
}

func TestTodoRepository_FindWithVanishedCursor(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)
	todos := NewTodoRepository(db)

	ada := seedUser(t, users, "ada")
	var ids []string
	for i := 0; i < 3; i++ {
		created, err := todos.Create(ctx, newTodo(ada, "t"))
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	require.NoError(t, todos.Delete(ctx, ids[1]))

	rows, err := todos.Find(ctx, repository.TodoQuery{
		Filter: repository.TodoFilter{ViewerID: ada.ID},
		Sort:   repository.TodoSort{Field: repository.SortByID, Direction: repository.SortAsc},
		After:  ids[1],
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, ids[2], rows[0].ID)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := NewUserRepository(db)

	ada := seedUser(t, users, "ada")
	bob := seedUser(t, users, "bob")

	refs, err := users.FindByUsernames(ctx, []string{"bob", "nobody", "ada", "bob"})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, bob.ID, refs[0].ID)
	assert.Equal(t, ada.ID, refs[1].ID)

	clash := &domain.User{ID: domain.NewID(), Username: "ada", Status: domain.UserStatusActive}
	err = users.Upsert(ctx, clash)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))

	created := ada.CreatedAt
	ada.Username = "ada2"
	require.NoError(t, users.Upsert(ctx, ada))
	got, err := users.GetByID(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada2", got.Username)
	assert.True(t, got.CreatedAt.Equal(created))

	refs, err = users.FindByUsernames(ctx, []string{"ada"})
	require.NoError(t, err)
	assert.Empty(t, refs)

	_, err = users.GetByID(ctx, domain.NewID())
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
