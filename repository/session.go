package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	Extend(ctx context.Context, id string, ttlSeconds int) error
	// DeleteByUser revokes every session issued to userID.
	DeleteByUser(ctx context.Context, userID string) error
}
