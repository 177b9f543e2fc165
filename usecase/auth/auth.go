package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
	appLogger "github.com/fastygo/tasktracker/pkg/logger"
)

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *TokenIssuer
	logger   *zap.Logger
}

// Grant is a session together with the bearer token that references it.
type Grant struct {
	Session *domain.Session `json:"session"`
	Token   string          `json:"token"`
}

func New(users repository.UserRepository, sessions repository.SessionRepository, tokens *TokenIssuer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		logger:   logger,
	}
}

// CreateSession opens a session for an existing, active user.
func (uc *UseCase) CreateSession(ctx context.Context, userID string, ttl time.Duration) (*Grant, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive() {
		return nil, domain.ErrUnauthorized
	}

	session := domain.NewSession(user.ID, ttl, time.Now())
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return uc.grant(session)
}

func (uc *UseCase) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// RefreshSession extends a live session and issues a fresh token for it.
func (uc *UseCase) RefreshSession(ctx context.Context, sessionID string, ttl time.Duration) (*Grant, error) {
	if _, err := uc.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(ttl.Seconds())); err != nil {
		return nil, err
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return uc.grant(session)
}

func (uc *UseCase) RevokeSession(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

// Authenticate resolves a bearer token to its live session. Any failure,
// including a revoked or expired session, is reported as unauthorized.
func (uc *UseCase) Authenticate(ctx context.Context, token string) (*domain.Session, error) {
	claims, err := uc.tokens.Parse(token)
	if err != nil {
		appLogger.WithRequestID(ctx, uc.logger).Debug("rejected bearer token", zap.Error(err))
		return nil, domain.ErrUnauthorized
	}
	session, err := uc.GetSession(ctx, claims.SessionID)
	if err != nil {
		if !domain.IsDomainError(err, domain.ErrCodeNotFound) {
			appLogger.WithRequestID(ctx, uc.logger).Error("session lookup failed", zap.Error(err))
			return nil, err
		}
		return nil, domain.ErrUnauthorized
	}
	if session.UserID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

func (uc *UseCase) grant(session *domain.Session) (*Grant, error) {
	token, err := uc.tokens.Issue(session)
	if err != nil {
		return nil, err
	}
	return &Grant{Session: session, Token: token}, nil
}
