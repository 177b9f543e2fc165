package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoApplyDefaults(t *testing.T) {
	todo := &Todo{Title: "  write report  ", Tags: []string{" work", "", "work ", "urgent"}}
	todo.ApplyDefaults()

	assert.Equal(t, "write report", todo.Title)
	assert.Equal(t, StatusTodo, todo.Status)
	assert.Equal(t, PriorityMedium, todo.Priority)
	assert.Equal(t, []string{"work", "urgent"}, todo.Tags)
	assert.NotNil(t, todo.MentionedUsers)
	assert.NotNil(t, todo.Notes)
}

func TestTodoValidate(t *testing.T) {
	owner := UserRef{ID: NewID()}

	tests := []struct {
		name    string
		todo    Todo
		wantErr error
		code    ErrorCode
	}{
		{
			name: "valid",
			todo: Todo{Owner: owner, Title: "t", Status: StatusPending, Priority: PriorityHigh, Tags: []string{"a"}},
		},
		{
			name:    "missing title",
			todo:    Todo{Owner: owner, Title: "   ", Status: StatusTodo, Priority: PriorityLow},
			wantErr: ErrTitleRequired,
		},
		{
			name: "unknown status",
			todo: Todo{Owner: owner, Title: "t", Status: "done", Priority: PriorityLow},
			code: ErrCodeInvalid,
		},
		{
			name: "unknown priority",
			todo: Todo{Owner: owner, Title: "t", Status: StatusTodo, Priority: "urgent"},
			code: ErrCodeInvalid,
		},
		{
			name: "blank tag",
			todo: Todo{Owner: owner, Title: "t", Status: StatusTodo, Priority: PriorityLow, Tags: []string{"ok", " "}},
			code: ErrCodeInvalid,
		},
		{
			name: "blank note",
			todo: Todo{Owner: owner, Title: "t", Status: StatusTodo, Priority: PriorityLow, Notes: []Note{{Content: ""}}},
			code: ErrCodeInvalid,
		},
		{
			name: "bad owner",
			todo: Todo{Owner: UserRef{ID: "nobody"}, Title: "t", Status: StatusTodo, Priority: PriorityLow},
			code: ErrCodeInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.todo.Validate()
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.code != "":
				require.Error(t, err)
				assert.True(t, IsDomainError(err, tt.code), "got %v", err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestTodoVisibility(t *testing.T) {
	owner, friend, stranger := NewID(), NewID(), NewID()
	todo := &Todo{Owner: UserRef{ID: owner}, MentionedUsers: []UserRef{{ID: friend}}}

	assert.True(t, todo.IsOwnedBy(owner))
	assert.True(t, todo.IsVisibleTo(owner))
	assert.False(t, todo.IsOwnedBy(friend))
	assert.True(t, todo.Mentions(friend))
	assert.True(t, todo.IsVisibleTo(friend))
	assert.False(t, todo.IsVisibleTo(stranger))
	assert.False(t, todo.IsVisibleTo(""))
}

func TestParseEnums(t *testing.T) {
	s, ok := ParseStatus(" Completed ")
	assert.True(t, ok)
	assert.Equal(t, StatusCompleted, s)

	_, ok = ParseStatus("done")
	assert.False(t, ok)

	p, ok := ParsePriority("HIGH")
	assert.True(t, ok)
	assert.Equal(t, PriorityHigh, p)

	assert.Less(t, PriorityLow.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityHigh.Rank())
	assert.Less(t, StatusTodo.Rank(), StatusPending.Rank())
	assert.Less(t, StatusPending.Rank(), StatusCompleted.Rank())
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"work", "urgent"}, SplitCSV("work, urgent"))
	assert.Equal(t, []string{"a", "b"}, SplitCSV(" a ,, ,b,"))
	assert.Empty(t, SplitCSV(""))
	assert.NotNil(t, SplitCSV(" , "))
}

func TestCleanTags(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, CleanTags([]string{"b", " a", "b ", "  "}))
	assert.Empty(t, CleanTags(nil))
}

func TestIDs(t *testing.T) {
	a := NewID()
	b := NewID()

	assert.True(t, IsValidID(a))
	assert.Less(t, a, b, "ids must sort in creation order")

	assert.False(t, IsValidID(""))
	assert.False(t, IsValidID("not-an-id"))
	assert.False(t, IsValidID("{"+a+"}"))

	upper := "0190A1B2-C3D4-7E5F-8A9B-0C1D2E3F4A5B"
	assert.True(t, IsValidID(upper))
	assert.Equal(t, "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", NormalizeID(upper))
	assert.Equal(t, "junk", NormalizeID("junk"))
}

func TestErrorIs(t *testing.T) {
	wrapped := fmt.Errorf("loading: %w", ErrTodoNotFound)
	assert.ErrorIs(t, wrapped, ErrTodoNotFound)
	assert.NotErrorIs(t, wrapped, ErrUserNotFound)

	copyErr := NewError(ErrCodeNotFound, "todo not found")
	assert.True(t, errors.Is(copyErr, ErrTodoNotFound))

	inner := errors.New("boom")
	err := WrapError(ErrCodeInvalid, "invalid todo", inner)
	assert.ErrorIs(t, err, inner)
	assert.True(t, IsDomainError(err, ErrCodeInvalid))
	assert.False(t, IsDomainError(inner, ErrCodeInvalid))
	assert.Equal(t, "invalid todo: boom", err.Error())
}

func TestUserValidate(t *testing.T) {
	u := &User{ID: NewID(), Username: "ada", Email: "ada@example.com", Status: UserStatusActive}
	assert.NoError(t, u.Validate())
	assert.True(t, u.IsActive())

	bad := *u
	bad.Username = "a b"
	assert.True(t, IsDomainError(bad.Validate(), ErrCodeInvalid))

	bad = *u
	bad.Email = "nope"
	assert.Error(t, bad.Validate())

	bad = *u
	bad.Status = "banned"
	assert.Error(t, bad.Validate())

	ref := u.Ref()
	assert.Equal(t, UserRef{ID: u.ID, Username: "ada", Email: "ada@example.com"}, ref)
}
