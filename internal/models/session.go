package models

import (
	"time"
)

// Session contains data about an active admin API session
// A session is created when the performer unlocks the admin view with the PIN
type Session struct {
	// The session ID (the API key that identifies this session)
	ID string
	// Creation timestamp of the session
	CreatedAt time.Time
	// When will the session expire?
	ExpiresAt time.Time
}

// Expired checks if the session has already expired
func (s *Session) Expired() bool {
	return s.ExpiresAt.Before(time.Now())
}
