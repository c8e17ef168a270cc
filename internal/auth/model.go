package auth

import (
	"time"

	"github.com/gofrs/uuid"
)

// Session is a server-side login session. The token doubles as the primary
// key and is handed to the client as an opaque bearer credential.
type Session struct {
	Token     uuid.UUID `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
