// Package storage persists client state: the bearer token, cached session
// fields and short-lived values such as the email awaiting an OTP.
//
// Values live in a KV backend. Three backends are available: a JSON file
// (the default), SQLite and PostgreSQL.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a key is absent or expired.
var ErrNotFound = errors.New("storage: not found")

// KV is a string key-value store with optional per-entry expiry.
type KV interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value under key. A zero ttl never expires.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// expiresAt converts a ttl into a unix timestamp, 0 meaning never.
func expiresAt(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now.Add(ttl).Unix()
}
