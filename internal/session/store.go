package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is a per-session key-value store. Writes are last-write-wins.
type Store interface {
	// Get returns the value of key for session sid. ok is false when the
	// key is absent or expired.
	Get(ctx context.Context, sid, key string) (value string, ok bool, err error)
	// Set stores value under key. A zero ttl never expires.
	Set(ctx context.Context, sid, key, value string, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, sid, key string) error
}

// NewID returns a fresh opaque session id.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether sid looks like an id issued by NewID.
func ValidID(sid string) bool {
	_, err := uuid.Parse(sid)
	return err == nil
}

type idContextKey struct{}

// WithID returns a copy of ctx carrying the session id.
func WithID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, idContextKey{}, sid)
}

// IDFromContext returns the session id carried by ctx, if any.
func IDFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(idContextKey{}).(string)
	return sid, ok && sid != ""
}
