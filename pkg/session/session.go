package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is the server-side state behind a session cookie.
type Session struct {
	Token          string    `json:"-"`
	UserID         uuid.UUID `json:"user_id"`
	Role           string    `json:"role"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsAuthenticated reports whether the session belongs to a user.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.UserID != uuid.Nil
}

func (s *Session) IsExpired() bool {
	return s != nil && !time.Now().Before(s.ExpiresAt)
}

// expiry is the sooner of the idle deadline and the lifetime cap.
func expiry(createdAt, now time.Time, idle, lifetime time.Duration) time.Time {
	idleAt := now.Add(idle)
	if maxAt := createdAt.Add(lifetime); maxAt.Before(idleAt) {
		return maxAt
	}
	return idleAt
}
