package session

import (
	"context"

	"go.uber.org/zap"

	"kgportal/internal/navigator"
)

// Flag exposes the login marker of the session bound to a context. It
// satisfies navigator.SessionState and never writes to the store.
type Flag struct {
	store Store
	log   *zap.Logger
}

// NewFlag creates a read-only flag view over store.
func NewFlag(store Store, log *zap.Logger) *Flag {
	if log == nil {
		log = zap.NewNop()
	}
	return &Flag{store: store, log: log}
}

// Flag returns the stored isLoggedIn value. A missing session id or a store
// failure reads as an absent flag.
func (f *Flag) Flag(ctx context.Context) (string, bool) {
	sid, ok := IDFromContext(ctx)
	if !ok {
		return "", false
	}
	v, ok, err := f.store.Get(ctx, sid, navigator.SessionFlagKey)
	if err != nil {
		f.log.Warn("session flag read failed, treating as logged out", zap.Error(err))
		return "", false
	}
	return v, ok
}
