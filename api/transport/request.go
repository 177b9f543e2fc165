package transport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fastygo/tasktracker/domain"
)

type ProfileUpdateRequest struct {
	Username *string           `json:"username"`
	Email    *string           `json:"email"`
	Status   *string           `json:"status"`
	Meta     map[string]string `json:"metadata"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}

// TodoCreateRequest carries a new todo. Tags and mentions are comma-separated
// and Notes is the content of the first note.
type TodoCreateRequest struct {
	Title                 string `json:"title"`
	Description           string `json:"description"`
	Notes                 string `json:"notes"`
	DueDate               string `json:"dueDate"`
	Priority              string `json:"priority"`
	Tags                  string `json:"tags"`
	MentionedUsernamesCsv string `json:"mentionedUsernamesCsv"`
}

// TodoUpdateRequest is a partial update; absent fields are left unchanged.
type TodoUpdateRequest struct {
	Title                 *string      `json:"title"`
	Description           *string      `json:"description"`
	Priority              *string      `json:"priority"`
	Status                *string      `json:"status"`
	Tags                  *TagList     `json:"tags"`
	MentionedUsernamesCsv *string      `json:"mentionedUsernamesCsv"`
	DueDate               *string      `json:"dueDate"`
	Notes                 *[]NoteInput `json:"notes"`
}

type NoteInput struct {
	ID      string     `json:"_id"`
	Content string     `json:"content"`
	Editor  string     `json:"editor"`
	Date    *time.Time `json:"date"`
}

type BulkCompleteRequest struct {
	TodoIDs []string `json:"todoIds"`
}

// TagList accepts either a comma-separated string or an array of strings.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = TagList{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*t = domain.SplitCSV(raw)
		return nil
	}
	var items []interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("tags must be a string or an array: %w", err)
	}
	out := make(TagList, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case nil:
		default:
			out = append(out, fmt.Sprint(v))
		}
	}
	*t = out
	return nil
}
