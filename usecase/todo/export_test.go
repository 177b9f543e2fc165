package todo

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktracker/domain"
)

func TestParseExportFormat(t *testing.T) {
	got, err := ParseExportFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, ExportCSV, got)

	got, err = ParseExportFormat("json")
	require.NoError(t, err)
	assert.Equal(t, ExportJSON, got)

	_, err = ParseExportFormat("xml")
	assert.ErrorIs(t, err, domain.ErrUnknownExportFormat)
}

func TestExportUnknownFormatSkipsStore(t *testing.T) {
	repo := &recordingRepo{}
	uc := New(repo, nil, Config{}, nil)

	_, err := uc.Export(context.Background(), domain.NewID(), "pdf", Criteria{})
	assert.ErrorIs(t, err, domain.ErrUnknownExportFormat)
	assert.Zero(t, repo.calls)
}

func TestExportNothingToExport(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.ada, CreateInput{Title: "a", Tags: "home"})

	_, err := f.uc.Export(context.Background(), f.ada.ID, "csv", Criteria{Tags: "work"})
	assert.ErrorIs(t, err, domain.ErrNothingToExport)
}

func TestExportCSV(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.ada, CreateInput{Title: "Plan, then act", Tags: "work, urgent", DueDate: "2024-03-10T15:00:00Z", Priority: "high"})

	file, err := f.uc.Export(context.Background(), f.ada.ID, "csv", Criteria{})
	require.NoError(t, err)
	assert.Equal(t, "todos.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	want := "Title,Tags,Time,Priority,Status\r\n" +
		"\"Plan, then act\",work; urgent,2024-03-10T15:00:00.000Z,high,todo\r\n"
	assert.Equal(t, want, string(file.Body))
}

func TestExportJSON(t *testing.T) {
	f := newFixture(t)
	f.create(t, f.ada, CreateInput{Title: "undated"})

	file, err := f.uc.Export(context.Background(), f.ada.ID, "JSON", Criteria{})
	require.NoError(t, err)
	assert.Equal(t, "todos.json", file.Filename)
	assert.Equal(t, "application/json", file.ContentType)

	var rows []map[string]string
	require.NoError(t, json.Unmarshal(file.Body, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, map[string]string{
		"Title":    "undated",
		"Tags":     "",
		"Time":     "",
		"Priority": "medium",
		"Status":   "todo",
	}, rows[0])
}

func TestExportMatchesFetch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, tags := range []string{"work", "work, home", "home", "", "work"} {
		f.create(t, f.ada, CreateInput{Title: "t", Tags: tags})
	}
	f.create(t, f.bob, CreateInput{Title: "mention", Tags: "work", MentionedUsernamesCsv: "ada"})

	c := Criteria{Tags: "work", SortBy: "title", SortOrder: "asc"}
	page, err := f.uc.Fetch(ctx, f.ada.ID, FetchParams{Criteria: c, Limit: 100})
	require.NoError(t, err)

	file, err := f.uc.Export(ctx, f.ada.ID, "csv", c)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(file.Body), "\r\n"), "\r\n")
	assert.Len(t, lines, len(page.AllSortedTodos)+1)
	assert.Len(t, page.AllSortedTodos, 4)
}
