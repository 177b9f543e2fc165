package todo

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	appLogger "github.com/fastygo/tasktracker/pkg/logger"
)

// FetchParams is a criteria set plus one page window.
type FetchParams struct {
	Criteria
	Limit  int
	Cursor string
}

// FetchResult is one page split by the viewer's relation to each todo.
type FetchResult struct {
	OwnedTodos     []domain.Todo `json:"ownedTodos"`
	MentionedTodos []domain.Todo `json:"mentionedTodos"`
	AllSortedTodos []domain.Todo `json:"allSortedTodos"`
	NextCursor     string        `json:"nextCursor,omitempty"`
}

// Fetch returns one page of todos visible to viewerID. A malformed cursor is
// ignored and the first page is served.
func (uc *UseCase) Fetch(ctx context.Context, viewerID string, p FetchParams) (*FetchResult, error) {
	log := appLogger.WithRequestID(ctx, uc.logger)

	q := p.Criteria.query(viewerID)
	q.Limit = uc.clampLimit(p.Limit)
	if p.Cursor != "" {
		if domain.IsValidID(p.Cursor) {
			q.After = domain.NormalizeID(p.Cursor)
		} else {
			log.Debug("ignoring malformed cursor", zap.String("cursor", p.Cursor))
		}
	}

	todos, err := uc.todos.Find(ctx, q)
	if err != nil {
		log.Error("failed to fetch todos", zap.String("viewer_id", viewerID), zap.Error(err))
		return nil, err
	}

	owned, mentioned := Partition(viewerID, todos)
	result := &FetchResult{
		OwnedTodos:     owned,
		MentionedTodos: mentioned,
		AllSortedTodos: todos,
	}
	if len(todos) > 0 && len(todos) == q.Limit {
		result.NextCursor = todos[len(todos)-1].ID
	}
	return result, nil
}

// Partition splits a sorted page into the viewer's own todos and those they
// are only mentioned on. Both keep the page order and never overlap.
func Partition(viewerID string, todos []domain.Todo) (owned, mentioned []domain.Todo) {
	owned = []domain.Todo{}
	mentioned = []domain.Todo{}
	for i := range todos {
		t := &todos[i]
		switch {
		case t.IsOwnedBy(viewerID):
			owned = append(owned, *t)
		case t.Mentions(viewerID):
			mentioned = append(mentioned, *t)
		}
	}
	return owned, mentioned
}

func (uc *UseCase) clampLimit(limit int) int {
	if limit <= 0 {
		return uc.cfg.DefaultLimit
	}
	if limit > uc.cfg.MaxLimit {
		return uc.cfg.MaxLimit
	}
	return limit
}
