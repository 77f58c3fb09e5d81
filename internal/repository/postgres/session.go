package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

type SessionRepository struct {
	db *Connection
}

func NewSessionRepository(db *Connection) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session model.Session) (model.Session, error) {
	const query = `
        INSERT INTO sessions (
            id, user_id, token_hash, user_agent, ip, expires_at, revoked_at, created_at, updated_at
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
        RETURNING id, user_id, token_hash, user_agent, ip, expires_at, revoked_at, created_at, updated_at
    `

	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	var saved model.Session
	err := r.db.QueryRow(ctx, query,
		session.ID, session.UserID, session.TokenHash, session.UserAgent, session.IP,
		session.ExpiresAt, session.RevokedAt, session.CreatedAt, session.UpdatedAt,
	).Scan(
		&saved.ID, &saved.UserID, &saved.TokenHash, &saved.UserAgent, &saved.IP,
		&saved.ExpiresAt, &saved.RevokedAt, &saved.CreatedAt, &saved.UpdatedAt,
	)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to create session: %w", err)
	}
	return saved, nil
}

func (r *SessionRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.Session, error) {
	const query = `
        SELECT id, user_id, token_hash, user_agent, ip, expires_at, revoked_at, created_at, updated_at
        FROM sessions
        WHERE user_id = $1 AND revoked_at IS NULL AND expires_at > $2
    `

	rows, err := r.db.Query(ctx, query, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to find active sessions by user: %w", err)
	}
	defer rows.Close()

	sessions := make([]model.Session, 0)
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.TokenHash, &s.UserAgent, &s.IP,
			&s.ExpiresAt, &s.RevokedAt, &s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	return sessions, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, id uuid.UUID) (bool, error) {
	const query = `
        UPDATE sessions SET revoked_at = NOW(), updated_at = NOW()
        WHERE id = $1 AND revoked_at IS NULL
    `
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to revoke session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SessionRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	const query = `
        UPDATE sessions SET revoked_at = NOW(), updated_at = NOW()
        WHERE user_id = $1 AND revoked_at IS NULL
    `
	tag, err := r.db.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions by user: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	const query = `
        DELETE FROM sessions WHERE expires_at < $1
    `
	tag, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
