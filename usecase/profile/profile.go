package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
	appLogger "github.com/fastygo/tasktracker/pkg/logger"
)

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	logger   *zap.Logger
}

// Update lists the profile fields a user may change; nil leaves a field as is.
type Update struct {
	Username *string
	Email    *string
	Status   *string
	Metadata map[string]string
}

func New(users repository.UserRepository, sessions repository.SessionRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// UpdateProfile applies the update. Disabling the account revokes every
// session the user holds.
func (uc *UseCase) UpdateProfile(ctx context.Context, userID string, upd Update) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Username != nil {
		user.Username = strings.TrimSpace(*upd.Username)
	}
	if upd.Email != nil {
		user.Email = strings.TrimSpace(*upd.Email)
	}
	if upd.Status != nil {
		user.Status = strings.TrimSpace(*upd.Status)
	}
	if upd.Metadata != nil {
		user.Metadata = upd.Metadata
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}

	if !user.IsActive() && uc.sessions != nil {
		if err := uc.sessions.DeleteByUser(ctx, user.ID); err != nil {
			appLogger.WithRequestID(ctx, uc.logger).Error("failed to revoke sessions", zap.String("user_id", user.ID), zap.Error(err))
			return nil, err
		}
	}
	return user, nil
}

// Register creates or replaces a user record. It backs the admin CLI;
// self-service registration is not exposed over HTTP.
func (uc *UseCase) Register(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == "" {
		user.ID = domain.NewID()
	}
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	if user.Role == "" {
		user.Role = "member"
	}
	user.Username = strings.TrimSpace(user.Username)
	if err := user.Validate(); err != nil {
		return nil, err
	}
	if err := uc.users.Upsert(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
