package models

import "time"

// Session is an issued login. It is never mutated after creation.
type Session struct {
	Token      string    `json:"token"`
	Username   string    `json:"username"`
	User       Profile   `json:"user"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	RememberMe bool      `json:"rememberMe"`
}

// Expired reports whether now is past the session expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
