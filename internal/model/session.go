package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore defines persistence operations for refresh sessions.
// Implementations receive finished token hashes; plaintext refresh
// tokens never reach the store.
type SessionStore interface {
	Create(ctx context.Context, session Session) (Session, error)
	FindActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]Session, error)
	Revoke(ctx context.Context, id uuid.UUID) (bool, error)
	RevokeAllByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// Session is one issued refresh token: its hash, owner, device
// provenance and lifecycle timestamps. RevokedAt set means the
// session is terminally invalid regardless of ExpiresAt.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash []byte
	UserAgent string
	IP        string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Active reports whether the session is neither revoked nor expired at now.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}
