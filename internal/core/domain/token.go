package domain

import "time"

// AuthToken is an opaque bearer token persisted per user. Expiry is implicit:
// a token is valid while now - CreatedAt stays within the configured TTL.
// Login rewinds CreatedAt in place (sliding expiry); refresh replaces the
// whole record with a fresh key.
type AuthToken struct {
	ID        string
	Key       string
	UserID    string
	CreatedAt time.Time
}

// Age returns how long ago the token was created or last slid forward.
func (t AuthToken) Age(at time.Time) time.Duration {
	return at.Sub(t.CreatedAt)
}

// ExpiredAt reports whether the token has outlived the supplied TTL at the
// given instant. Expiry is strict: a token aged exactly ttl is still valid.
func (t AuthToken) ExpiredAt(at time.Time, ttl time.Duration) bool {
	return t.Age(at) > ttl
}
