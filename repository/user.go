package repository

import (
	"context"

	"github.com/fastygo/tasktracker/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Upsert(ctx context.Context, user *domain.User) error
	// FindByUsernames resolves usernames to identities. Unknown usernames are
	// omitted from the result.
	FindByUsernames(ctx context.Context, usernames []string) ([]domain.UserRef, error)
}
