package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/model"
)

var _ model.SessionStore = (*SessionRepository)(nil)

const (
	sessionKeyPrefix  = "session:"
	userIndexPrefix   = "user_sessions:"
	expiryIndexKey    = "sessions_by_expiry"
	noRevocationValue = ""
)

// revokeScript marks a single session revoked unless it already is.
// Returns 1 when this call transitioned the session.
var revokeScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
    return 0
end
if redis.call('HGET', KEYS[1], 'revoked_at') ~= '' then
    return 0
end
redis.call('HSET', KEYS[1], 'revoked_at', ARGV[1], 'updated_at', ARGV[1])
return 1
`)

// revokeAllScript walks a user's session index and revokes every
// session that is not revoked yet. Returns the number revoked.
var revokeAllScript = redis.NewScript(`
local ids = redis.call('ZRANGE', KEYS[1], 0, -1)
local count = 0
for _, id in ipairs(ids) do
    local key = ARGV[2] .. id
    if redis.call('EXISTS', key) == 1 and redis.call('HGET', key, 'revoked_at') == '' then
        redis.call('HSET', key, 'revoked_at', ARGV[1], 'updated_at', ARGV[1])
        count = count + 1
    end
end
return count
`)

// SessionRepository stores sessions in redis: one hash per session,
// a per-user sorted set for scoped lookup and a global sorted set for
// the retention sweep, both scored by expiry (unix milliseconds).
type SessionRepository struct {
	client *redis.Client
}

func NewSessionRepository(client *redis.Client) *SessionRepository {
	return &SessionRepository{client: client}
}

func (r *SessionRepository) Create(ctx context.Context, session model.Session) (model.Session, error) {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	revokedAt := noRevocationValue
	if session.RevokedAt != nil {
		revokedAt = session.RevokedAt.Format(time.RFC3339Nano)
	}

	fields := map[string]interface{}{
		"user_id":    session.UserID.String(),
		"token_hash": string(session.TokenHash),
		"user_agent": session.UserAgent,
		"ip":         session.IP,
		"expires_at": session.ExpiresAt.Format(time.RFC3339Nano),
		"revoked_at": revokedAt,
		"created_at": session.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": session.UpdatedAt.Format(time.RFC3339Nano),
	}

	member := redis.Z{Score: float64(session.ExpiresAt.UnixMilli()), Member: session.ID.String()}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, sessionKey(session.ID), fields)
	pipe.ZAdd(ctx, userIndexKey(session.UserID), member)
	pipe.ZAdd(ctx, expiryIndexKey, member)
	if _, err := pipe.Exec(ctx); err != nil {
		return model.Session{}, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

func (r *SessionRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]model.Session, error) {
	ids, err := r.client.ZRangeByScore(ctx, userIndexKey(userID), &redis.ZRangeBy{
		Min: "(" + strconv.FormatInt(now.UnixMilli(), 10),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query user session index: %w", err)
	}

	sessions := make([]model.Session, 0, len(ids))
	for _, rawID := range ids {
		id, err := uuid.Parse(rawID)
		if err != nil {
			continue
		}

		fields, err := r.client.HGetAll(ctx, sessionKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to load session %s: %w", id, err)
		}
		if len(fields) == 0 {
			// Index entry outlived the hash (purged); drop it lazily.
			r.client.ZRem(ctx, userIndexKey(userID), rawID)
			continue
		}

		session, err := parseSession(id, fields)
		if err != nil {
			return nil, fmt.Errorf("failed to parse session %s: %w", id, err)
		}
		if !session.Active(now) {
			continue
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, id uuid.UUID) (bool, error) {
	now := time.Now().Format(time.RFC3339Nano)
	res, err := revokeScript.Run(ctx, r.client, []string{sessionKey(id)}, now).Int()
	if err != nil {
		return false, fmt.Errorf("failed to revoke session: %w", err)
	}
	return res == 1, nil
}

func (r *SessionRepository) RevokeAllByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	now := time.Now().Format(time.RFC3339Nano)
	count, err := revokeAllScript.Run(ctx, r.client,
		[]string{userIndexKey(userID)},
		now, sessionKeyPrefix,
	).Int64()
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions by user: %w", err)
	}
	return count, nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	ids, err := r.client.ZRangeByScore(ctx, expiryIndexKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: "(" + strconv.FormatInt(before.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to query expiry index: %w", err)
	}

	var count int64
	for _, rawID := range ids {
		id, err := uuid.Parse(rawID)
		if err != nil {
			r.client.ZRem(ctx, expiryIndexKey, rawID)
			continue
		}

		userID, err := r.client.HGet(ctx, sessionKey(id), "user_id").Result()
		if err != nil && err != redis.Nil {
			return count, fmt.Errorf("failed to load session owner: %w", err)
		}

		deleted, err := r.client.Del(ctx, sessionKey(id)).Result()
		if err != nil {
			return count, fmt.Errorf("failed to delete session: %w", err)
		}
		if deleted > 0 {
			count++
		}

		if userID != "" {
			r.client.ZRem(ctx, userIndexPrefix+userID, rawID)
		}
		r.client.ZRem(ctx, expiryIndexKey, rawID)
	}
	return count, nil
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func userIndexKey(userID uuid.UUID) string {
	return userIndexPrefix + userID.String()
}

func parseSession(id uuid.UUID, fields map[string]string) (model.Session, error) {
	userID, err := uuid.Parse(fields["user_id"])
	if err != nil {
		return model.Session{}, fmt.Errorf("bad user_id: %w", err)
	}

	expiresAt, err := time.Parse(time.RFC3339Nano, fields["expires_at"])
	if err != nil {
		return model.Session{}, fmt.Errorf("bad expires_at: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, fields["created_at"])
	if err != nil {
		return model.Session{}, fmt.Errorf("bad created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return model.Session{}, fmt.Errorf("bad updated_at: %w", err)
	}

	session := model.Session{
		ID:        id,
		UserID:    userID,
		TokenHash: []byte(fields["token_hash"]),
		UserAgent: fields["user_agent"],
		IP:        fields["ip"],
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}

	if raw := fields["revoked_at"]; raw != noRevocationValue {
		revokedAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return model.Session{}, fmt.Errorf("bad revoked_at: %w", err)
		}
		session.RevokedAt = &revokedAt
	}

	return session, nil
}
