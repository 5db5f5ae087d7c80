package models

import (
	"time"

	"beamclip/internal/expiry"
)

// Room is a short-lived, code-addressed channel pairing two devices.
type Room struct {
	ID        string    `json:"id" bson:"_id"`
	Code      string    `json:"code" bson:"code"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

// IsExpiredAt reports whether the room is past its TTL at the given instant.
// Expiry is always derived from expires_at, never stored.
func (r *Room) IsExpiredAt(now time.Time) bool {
	return expiry.Expired(r.ExpiresAt, now)
}

// IsExpired checks the room against the current clock.
func (r *Room) IsExpired() bool {
	return r.IsExpiredAt(time.Now())
}
