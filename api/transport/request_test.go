package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagListAcceptsStringOrArray(t *testing.T) {
	tests := map[string]TagList{
		`{"tags":"work, urgent ,"}`:   {"work", "urgent"},
		`{"tags":["home","errands"]}`: {"home", "errands"},
		`{"tags":["x",null,7]}`:       {"x", "7"},
		`{"tags":""}`:                 {},
	}
	for body, want := range tests {
		var req TodoUpdateRequest
		require.NoError(t, json.Unmarshal([]byte(body), &req), body)
		require.NotNil(t, req.Tags, body)
		assert.Equal(t, want, *req.Tags, body)
	}
}

func TestTagListRejectsObjects(t *testing.T) {
	var req TodoUpdateRequest
	assert.Error(t, json.Unmarshal([]byte(`{"tags":{"a":1}}`), &req))
}

func TestTodoUpdateRequestLeavesAbsentFieldsNil(t *testing.T) {
	var req TodoUpdateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"new","notes":[{"_id":"n1","content":"c","editor":"u1"}]}`), &req))

	require.NotNil(t, req.Title)
	assert.Equal(t, "new", *req.Title)
	assert.Nil(t, req.Status)
	assert.Nil(t, req.Tags)
	assert.Nil(t, req.DueDate)
	require.NotNil(t, req.Notes)
	assert.Equal(t, []NoteInput{{ID: "n1", Content: "c", Editor: "u1"}}, *req.Notes)
}

func TestEnvelopeString(t *testing.T) {
	assert.JSONEq(t, `{"status":"error","code":"INVALID","error":"bad"}`, NewError("INVALID", "bad").String())
	assert.JSONEq(t, `{"status":"success","data":{"ok":true}}`, NewSuccess(map[string]bool{"ok": true}).String())
}
