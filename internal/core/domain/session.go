package domain

import (
	"errors"
	"time"
)

// Session errors. The HTTP layer may fold these into a single 401 so the
// caller cannot probe which tokens once existed.
var ErrSessionInvalid = errors.New("invalid session")
var ErrSessionExpired = errors.New("session expired")

// Session is one authenticated client connection. Many sessions may exist
// per account concurrently (multi-device).
type Session struct {
	Token     string    `json:"token"`
	AccountID string    `json:"account_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given time.
// There is no sliding expiration: validation never renews a session.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
