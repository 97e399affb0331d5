package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsZero(t *testing.T) {
	assert.True(t, Session{}.IsZero())
	assert.False(t, Session{Token: "tok", StudentID: "A01"}.IsZero())
}

func TestExpired(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	s := Session{Token: "tok", IssuedAt: now.Add(-2 * time.Hour)}

	assert.True(t, s.Expired(time.Hour, now))
	assert.False(t, s.Expired(3*time.Hour, now))
	assert.False(t, s.Expired(0, now), "non-positive ttl never expires")
	assert.False(t, Session{Token: "tok"}.Expired(time.Hour, now), "zero IssuedAt never expires")
}
