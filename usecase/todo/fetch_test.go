package todo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktracker/domain"
)

func ids(todos []domain.Todo) []string {
	out := make([]string, 0, len(todos))
	for _, t := range todos {
		out = append(out, t.ID)
	}
	return out
}

func TestFetchByTag(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tagged := f.create(t, f.ada, CreateInput{Title: "a", Tags: "work, urgent"})
	f.create(t, f.ada, CreateInput{Title: "b", Tags: "home"})
	f.create(t, f.ada, CreateInput{Title: "c"})

	res, err := f.uc.Fetch(ctx, f.ada.ID, FetchParams{Criteria: Criteria{Tags: "urgent, nope"}})
	require.NoError(t, err)
	assert.Equal(t, []string{tagged.ID}, ids(res.AllSortedTodos))
}

func TestFetchBySameDayRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inside := f.create(t, f.ada, CreateInput{Title: "in", DueDate: "2024-03-10T15:30:00Z"})
	f.create(t, f.ada, CreateInput{Title: "after", DueDate: "2024-03-11"})
	f.create(t, f.ada, CreateInput{Title: "undated"})

	res, err := f.uc.Fetch(ctx, f.ada.ID, FetchParams{Criteria: Criteria{DateFrom: "2024-03-10", DateTo: "2024-03-10"}})
	require.NoError(t, err)
	assert.Equal(t, []string{inside.ID}, ids(res.AllSortedTodos))

	// malformed bounds are dropped
	res, err = f.uc.Fetch(ctx, f.ada.ID, FetchParams{Criteria: Criteria{DateFrom: "garbage"}})
	require.NoError(t, err)
	assert.Len(t, res.AllSortedTodos, 3)
}

func TestFetchFiltersAreConjunctive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	match := f.create(t, f.ada, CreateInput{Title: "Quarterly report", Priority: "high", Tags: "work"})
	f.create(t, f.ada, CreateInput{Title: "Quarterly review", Priority: "low", Tags: "work"})
	f.create(t, f.ada, CreateInput{Title: "Groceries", Priority: "high", Tags: "work"})
	f.create(t, f.ada, CreateInput{Title: "Quarterly taxes", Priority: "high", Tags: "home"})

	res, err := f.uc.Fetch(ctx, f.ada.ID, FetchParams{Criteria: Criteria{
		Priority: "high",
		Tags:     "work",
		Search:   "QUARTERLY",
		Status:   "todo",
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{match.ID}, ids(res.AllSortedTodos))

	res, err = f.uc.Fetch(ctx, f.ada.ID, FetchParams{Criteria: Criteria{Status: "archived"}})
	require.NoError(t, err)
	assert.Empty(t, res.AllSortedTodos)
}

func TestFetchPartitionsByRelation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	carol := f.seedUser(t, "carol")

	own := f.create(t, f.ada, CreateInput{Title: "mine"})
	mention := f.create(t, f.bob, CreateInput{Title: "bob asks ada", MentionedUsernamesCsv: "ada"})
	f.create(t, carol, CreateInput{Title: "private"})

	res, err := f.uc.Fetch(ctx, f.ada.ID, FetchParams{Criteria: Criteria{SortBy: "_id", SortOrder: "asc"}})
	require.NoError(t, err)
	assert.Equal(t, []string{own.ID, mention.ID}, ids(res.AllSortedTodos))
	assert.Equal(t, []string{own.ID}, ids(res.OwnedTodos))
	assert.Equal(t, []string{mention.ID}, ids(res.MentionedTodos))
	assert.Empty(t, res.NextCursor)
}

func TestFetchCursorWalk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var created []string
	for i := 0; i < 5; i++ {
		created = append(created, f.create(t, f.ada, CreateInput{Title: "t"}).ID)
	}

	var walked []string
	cursor := ""
	for page := 0; page < 5; page++ {
		res, err := f.uc.Fetch(ctx, f.ada.ID, FetchParams{
			Criteria: Criteria{SortBy: "_id", SortOrder: "asc"},
			Limit:    2,
			Cursor:   cursor,
		})
		require.NoError(t, err)
		walked = append(walked, ids(res.AllSortedTodos)...)
		if res.NextCursor == "" {
			break
		}
		cursor = res.NextCursor
	}
	assert.Equal(t, created, walked)
}

func TestFetchIgnoresMalformedCursor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.create(t, f.ada, CreateInput{Title: "t"})
	f.create(t, f.ada, CreateInput{Title: "t"})

	res, err := f.uc.Fetch(ctx, f.ada.ID, FetchParams{
		Criteria: Criteria{SortBy: "_id", SortOrder: "asc"},
		Limit:    1,
		Cursor:   "definitely-not-an-id",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID}, ids(res.AllSortedTodos))
	assert.Equal(t, first.ID, res.NextCursor)
}

func TestClampLimit(t *testing.T) {
	uc := New(nil, nil, Config{}, nil)
	assert.Equal(t, 10, uc.clampLimit(0))
	assert.Equal(t, 10, uc.clampLimit(-3))
	assert.Equal(t, 25, uc.clampLimit(25))
	assert.Equal(t, 100, uc.clampLimit(1000))
}

func TestPartitionIsDisjoint(t *testing.T) {
	viewer := domain.NewID()
	other := domain.NewID()
	todos := []domain.Todo{
		{ID: "1", Owner: domain.UserRef{ID: viewer}, MentionedUsers: []domain.UserRef{{ID: viewer}}},
		{ID: "2", Owner: domain.UserRef{ID: other}, MentionedUsers: []domain.UserRef{{ID: viewer}}},
		{ID: "3", Owner: domain.UserRef{ID: other}},
	}

	owned, mentioned := Partition(viewer, todos)
	assert.Equal(t, []string{"1"}, ids(owned))
	assert.Equal(t, []string{"2"}, ids(mentioned))

	owned, mentioned = Partition(viewer, nil)
	assert.NotNil(t, owned)
	assert.NotNil(t, mentioned)
}
