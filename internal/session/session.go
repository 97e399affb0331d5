// Package session holds the authenticated user for one client run.
// The session is an explicit value handed to whoever needs it; there
// is no process-wide current-user singleton.
package session

import "time"

// Session identifies the logged-in student and carries the API token.
type Session struct {
	Token     string    `json:"token"`
	StudentID string    `json:"matricula"`
	Name      string    `json:"nombre"`
	Email     string    `json:"correo"`
	IssuedAt  time.Time `json:"issued_at"`
}

// IsZero reports whether no login has happened.
func (s Session) IsZero() bool {
	return s.Token == ""
}

// Expired reports whether the token is older than ttl. A non-positive
// ttl means tokens do not expire client-side.
func (s Session) Expired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 || s.IssuedAt.IsZero() {
		return false
	}
	return now.Sub(s.IssuedAt) > ttl
}
