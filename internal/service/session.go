package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/logger"
	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/model"
)

// SessionService provides high-level operations for issuing, verifying
// and revoking refresh sessions. It composes the TokenCodec,
// TokenHasher and SessionStore.
//
// Verification failures are uniform: every malformed, tampered,
// expired or unmatched token comes back as model.ErrSessionInvalid.
// Store failures are wrapped and surface as themselves.
type SessionService struct {
	codec      model.TokenCodec
	store      model.SessionStore
	hasher     model.TokenHasher
	sessionTTL time.Duration
	logger     *logger.Logger
}

// NewSessionService creates a SessionService. sessionTTL is the
// retention window of stored session records, independent of the
// refresh token's signed expiry; the more restrictive of the two wins
// at verification time.
func NewSessionService(codec model.TokenCodec, store model.SessionStore, hasher model.TokenHasher, sessionTTL time.Duration, logger *logger.Logger) *SessionService {
	return &SessionService{
		codec:      codec,
		store:      store,
		hasher:     hasher,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// IssueTokenPair signs a new access/refresh token pair for claims.
// It has no storage side effect; pair issuance and session creation
// are separate steps so controllers can attach device metadata.
func (s *SessionService) IssueTokenPair(ctx context.Context, claims model.Claims) (model.TokenPair, error) {
	pair, err := s.codec.IssueTokenPair(claims)
	if err != nil {
		return model.TokenPair{}, fmt.Errorf("failed to issue token pair: %w", err)
	}
	return pair, nil
}

// CreateSession persists the hashed record for an issued refresh
// token. The plaintext token is hashed here and never reaches the
// store or the logs.
func (s *SessionService) CreateSession(ctx context.Context, userID uuid.UUID, refreshToken, userAgent, ip string) (model.Session, error) {
	hash, err := s.hasher.Hash(refreshToken)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to hash refresh token: %w", err)
	}

	now := time.Now()
	session := model.Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hash,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	saved, err := s.store.Create(ctx, session)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to persist session: %w", err)
	}

	s.logger.Info("Session service: session created",
		"session_id", saved.ID,
		"user_id", userID)

	return saved, nil
}

// VerifySession decides whether a presented refresh token belongs to
// a live session. Pipeline: decode the token (cheap reject for
// tampered or expired tokens, no storage access), extract the
// subject, narrow to that user's active sessions, then confirm by
// hash comparison per candidate.
func (s *SessionService) VerifySession(ctx context.Context, refreshToken string) (model.Session, error) {
	claims, err := s.codec.DecodeRefreshToken(refreshToken)
	if err != nil {
		s.logger.Debug("Session service: refresh token rejected at decode",
			"error", err.Error())
		return model.Session{}, model.ErrSessionInvalid
	}

	if claims.UserID == uuid.Nil {
		s.logger.Debug("Session service: refresh token carries no subject")
		return model.Session{}, model.ErrSessionInvalid
	}

	candidates, err := s.store.FindActiveByUser(ctx, claims.UserID, time.Now())
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to load candidate sessions: %w", err)
	}

	session, ok := s.matchSession(candidates, refreshToken)
	if !ok {
		s.logger.Debug("Session service: presented token matches no active session",
			"user_id", claims.UserID)
		return model.Session{}, model.ErrSessionInvalid
	}

	return session, nil
}

// RevokeSession marks a single session revoked. Returns false when
// the id is unknown or the session was already revoked; both are
// no-op successes.
func (s *SessionService) RevokeSession(ctx context.Context, id uuid.UUID) (bool, error) {
	revoked, err := s.store.Revoke(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to revoke session: %w", err)
	}

	if revoked {
		s.logger.Info("Session service: session revoked",
			"session_id", id)
	}

	return revoked, nil
}

// RevokeSessionByValue locates the session owning a presented refresh
// token and revokes it. An invalid token returns false without error
// and without touching any record.
func (s *SessionService) RevokeSessionByValue(ctx context.Context, refreshToken string) (bool, error) {
	session, err := s.VerifySession(ctx, refreshToken)
	if errors.Is(err, model.ErrSessionInvalid) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return s.RevokeSession(ctx, session.ID)
}

// RevokeAllSessions revokes every active session of a user and
// returns how many were revoked. Account deactivation and password
// changes must call this; stale sessions must not outlive a
// credential change.
func (s *SessionService) RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	count, err := s.store.RevokeAllByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions for user: %w", err)
	}

	if count > 0 {
		s.logger.Info("Session service: revoked all sessions for user",
			"user_id", userID,
			"count", count)
	}

	return count, nil
}

// ListActiveSessions returns the user's live sessions, newest device
// metadata included.
func (s *SessionService) ListActiveSessions(ctx context.Context, userID uuid.UUID) ([]model.Session, error) {
	sessions, err := s.store.FindActiveByUser(ctx, userID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	return sessions, nil
}

// PurgeExpiredSessions deletes expired session records and returns
// the count. Housekeeping only: verification already rejects expired
// records whether or not the purge has run.
func (s *SessionService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	count, err := s.store.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}

	if count > 0 {
		s.logger.Info("Session service: purged expired sessions",
			"count", count)
	}

	return count, nil
}

func (s *SessionService) matchSession(candidates []model.Session, refreshToken string) (model.Session, bool) {
	for _, candidate := range candidates {
		if s.hasher.Compare(candidate.TokenHash, refreshToken) {
			return candidate, true
		}
	}
	return model.Session{}, false
}
