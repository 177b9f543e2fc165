package domain

import "time"

// Session is a login held in the session store. Bearer tokens carry its id.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewSession opens a session for userID that lives for ttl.
func NewSession(userID string, ttl time.Duration, now time.Time) *Session {
	return &Session{
		ID:        NewID(),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// Remaining is how long the session has left at reference, never negative.
func (s *Session) Remaining(reference time.Time) time.Duration {
	if s.IsExpired(reference) {
		return 0
	}
	return s.ExpiresAt.Sub(reference)
}
