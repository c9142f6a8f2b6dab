package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/errors"
)

// Session identifies the active user. It is passed explicitly to the
// operations that need it.
type Session struct {
	UserID string `json:"user_id"`
}

// Sessions persists the active user under ActiveUserKey.
type Sessions struct {
	kv KV
}

// NewSessions creates a session manager over kv.
func NewSessions(kv KV) *Sessions {
	return &Sessions{kv: kv}
}

// Login validates key and makes it the active user.
func (m *Sessions) Login(ctx context.Context, key string) (*Session, error) {
	key = strings.TrimSpace(key)
	if err := capacity.ValidateUserKey(key); err != nil {
		return nil, err
	}
	if err := m.kv.Set(ctx, ActiveUserKey, key); err != nil {
		return nil, err
	}
	return &Session{UserID: key}, nil
}

// Logout clears the active user. Stored check-ins are kept.
func (m *Sessions) Logout(ctx context.Context) error {
	return m.kv.Delete(ctx, ActiveUserKey)
}

// Restore returns the active session, or NOT_FOUND when nobody is logged in.
// A stored key that no longer validates is treated as absent.
func (m *Sessions) Restore(ctx context.Context) (*Session, error) {
	key, found, err := m.kv.Get(ctx, ActiveUserKey)
	if err != nil {
		return nil, err
	}
	if !found || capacity.ValidateUserKey(key) != nil {
		return nil, errors.NewNotFound("active session")
	}
	return &Session{UserID: key}, nil
}
