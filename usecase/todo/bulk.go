package todo

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
	appLogger "github.com/fastygo/tasktracker/pkg/logger"
)

// BulkCompleteResult reports the outcome of a bulk completion.
type BulkCompleteResult struct {
	Message string `json:"message"`
	repository.BulkResult
}

// CompleteMany marks the given todos completed where ownerID owns them.
// Every id is checked before the store is touched; one bad id fails the call.
func (uc *UseCase) CompleteMany(ctx context.Context, ownerID string, ids []string) (*BulkCompleteResult, error) {
	if len(ids) == 0 {
		return nil, domain.ErrInvalidIDs
	}
	normalized := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !domain.IsValidID(id) {
			return nil, domain.ErrInvalidIDs
		}
		id = domain.NormalizeID(id)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		normalized = append(normalized, id)
	}

	res, err := uc.todos.CompleteMany(ctx, normalized, ownerID)
	if err != nil {
		appLogger.WithRequestID(ctx, uc.logger).Error("bulk complete failed",
			zap.String("owner_id", ownerID), zap.Int("ids", len(normalized)), zap.Error(err))
		return nil, err
	}
	if res.Matched == 0 {
		return nil, domain.ErrNoMatchingTodos
	}

	out := &BulkCompleteResult{BulkResult: res}
	if res.Modified == 0 {
		out.Message = "Todos were already marked as complete or no changes made."
	} else {
		out.Message = fmt.Sprintf("%d todos marked as complete.", res.Modified)
	}
	return out, nil
}
