// Package expiry holds the pure time policy shared by rooms and items.
package expiry

import "time"

// Timestamp computes an expiry instant from a base time and a TTL.
func Timestamp(now time.Time, ttl time.Duration) time.Time {
	return now.Add(ttl)
}

// Expired reports whether expiresAt has passed. The comparison is strict:
// now == expiresAt is not expired.
func Expired(expiresAt, now time.Time) bool {
	return now.After(expiresAt)
}
