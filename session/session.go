package session

import (
	"time"
)

// User is the identity projection exposed to the rest of the gateway.
// It is derived from the session and never mutated directly by callers.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session is the authenticated credential pair plus user identity.
// It is created on login/registration or restored from the persisted
// store at startup, replaced wholesale on refresh, and destroyed on
// logout or unrecoverable refresh failure.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Valid reports whether the session holds both tokens and has not yet
// passed its expiry.
func (s *Session) Valid(now time.Time) bool {
	if s == nil {
		return false
	}
	if s.AccessToken == "" || s.RefreshToken == "" {
		return false
	}
	return s.ExpiresAt.After(now)
}

// ExpiresWithin reports whether the session expires inside the given
// window. Used for the proactive refresh check.
func (s *Session) ExpiresWithin(now time.Time, window time.Duration) bool {
	if s == nil {
		return false
	}
	return s.ExpiresAt.Sub(now) < window
}
