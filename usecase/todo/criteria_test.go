package todo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

func TestBuildFilter(t *testing.T) {
	f := BuildFilter("viewer", Criteria{
		Status:   " pending ",
		Priority: "high",
		Tags:     " work, ,urgent,work",
		DateFrom: "2024-03-10",
		DateTo:   "2024-03-12T08:00:00+02:00",
		Search:   "  report ",
	})

	assert.Equal(t, "viewer", f.ViewerID)
	assert.Equal(t, domain.StatusPending, f.Status)
	assert.Equal(t, domain.PriorityHigh, f.Priority)
	assert.Equal(t, []string{"work", "urgent"}, f.Tags)
	assert.Equal(t, "report", f.Search)

	require.NotNil(t, f.DueFrom)
	assert.True(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC).Equal(*f.DueFrom))
	require.NotNil(t, f.DueTo)
	assert.True(t, time.Date(2024, 3, 12, 23, 59, 59, int(999*time.Millisecond), time.UTC).Equal(*f.DueTo))
}

func TestBuildFilterDropsNoise(t *testing.T) {
	f := BuildFilter("viewer", Criteria{Tags: " , ", DateFrom: "03/10/2024", DateTo: "soon"})
	assert.Nil(t, f.Tags)
	assert.Nil(t, f.DueFrom)
	assert.Nil(t, f.DueTo)
}

func TestBuildSort(t *testing.T) {
	tests := []struct {
		by, order string
		want      repository.TodoSort
	}{
		{"", "", repository.TodoSort{Field: repository.SortByCreatedAt, Direction: repository.SortDesc}},
		{"_id", "ASC", repository.TodoSort{Field: repository.SortByID, Direction: repository.SortAsc}},
		{"date", "asc", repository.TodoSort{Field: repository.SortByDueDate, Direction: repository.SortAsc}},
		{"priority", "sideways", repository.TodoSort{Field: repository.SortByPriority, Direction: repository.SortDesc}},
		{"password", "asc", repository.TodoSort{Field: repository.SortByCreatedAt, Direction: repository.SortAsc}},
	}
	for _, tt := range tests {
		t.Run(tt.by+"/"+tt.order, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildSort(tt.by, tt.order))
		})
	}
}

func TestParseDueDate(t *testing.T) {
	got, err := ParseDueDate("2024-03-10T23:30:00-02:00")
	require.NoError(t, err)
	assert.True(t, time.Date(2024, 3, 11, 1, 30, 0, 0, time.UTC).Equal(*got))

	_, err = ParseDueDate("next week")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}
