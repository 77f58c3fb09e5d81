package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/Kemalkeremacar/MediKariyer-sub004/internal/model"
)

func newTestRepository(t *testing.T) *SessionRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionRepository(client)
}

func makeSession(userID uuid.UUID, createdAt, expiresAt time.Time) model.Session {
	return model.Session{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: []byte("$2a$04$hashhashhashhashhashha"),
		UserAgent: "test-agent",
		IP:        "127.0.0.1",
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestSessionRepository_CreateAndFindActive(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	now := time.Now()
	userID := uuid.New()

	s := makeSession(userID, now, now.Add(time.Hour))
	saved, err := repo.Create(ctx, s)
	require.NoError(t, err)
	require.Equal(t, s.ID, saved.ID)

	active, err := repo.FindActiveByUser(ctx, userID, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, s.ID, active[0].ID)
	require.Equal(t, userID, active[0].UserID)
	require.Equal(t, s.TokenHash, active[0].TokenHash)
	require.Equal(t, "test-agent", active[0].UserAgent)
	require.Nil(t, active[0].RevokedAt)
}

func TestSessionRepository_FindActive_Scoping(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	now := time.Now()
	userA := uuid.New()
	userB := uuid.New()

	_, err := repo.Create(ctx, makeSession(userA, now, now.Add(time.Hour)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, makeSession(userB, now, now.Add(time.Hour)))
	require.NoError(t, err)
	// expired session for user A
	_, err = repo.Create(ctx, makeSession(userA, now.Add(-2*time.Hour), now.Add(-time.Hour)))
	require.NoError(t, err)

	active, err := repo.FindActiveByUser(ctx, userA, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, userA, active[0].UserID)
}

func TestSessionRepository_Revoke_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	now := time.Now()
	userID := uuid.New()

	s, err := repo.Create(ctx, makeSession(userID, now, now.Add(time.Hour)))
	require.NoError(t, err)

	revoked, err := repo.Revoke(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, revoked)

	revoked, err = repo.Revoke(ctx, s.ID)
	require.NoError(t, err)
	require.False(t, revoked)

	revoked, err = repo.Revoke(ctx, uuid.New())
	require.NoError(t, err)
	require.False(t, revoked)

	active, err := repo.FindActiveByUser(ctx, userID, now)
	require.NoError(t, err)
	require.Empty(t, active)
}

func TestSessionRepository_RevokeAllByUser(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	now := time.Now()
	userA := uuid.New()
	userB := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, makeSession(userA, now, now.Add(time.Hour)))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, makeSession(userB, now, now.Add(time.Hour)))
	require.NoError(t, err)

	count, err := repo.RevokeAllByUser(ctx, userA)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)

	count, err = repo.RevokeAllByUser(ctx, userA)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	activeA, err := repo.FindActiveByUser(ctx, userA, now)
	require.NoError(t, err)
	require.Empty(t, activeA)

	activeB, err := repo.FindActiveByUser(ctx, userB, now)
	require.NoError(t, err)
	require.Len(t, activeB, 1)
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	now := time.Now()
	userID := uuid.New()

	_, err := repo.Create(ctx, makeSession(userID, now.Add(-3*time.Hour), now.Add(-2*time.Hour)))
	require.NoError(t, err)
	_, err = repo.Create(ctx, makeSession(userID, now.Add(-3*time.Hour), now.Add(-time.Hour)))
	require.NoError(t, err)
	live, err := repo.Create(ctx, makeSession(userID, now, now.Add(time.Hour)))
	require.NoError(t, err)

	count, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	count, err = repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	active, err := repo.FindActiveByUser(ctx, userID, now)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, live.ID, active[0].ID)
}

func TestSessionRepository_Create_PersistsRevokedAt(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	now := time.Now()
	userID := uuid.New()

	revokedAt := now.Add(-time.Minute)
	s := makeSession(userID, now.Add(-time.Hour), now.Add(time.Hour))
	s.RevokedAt = &revokedAt

	saved, err := repo.Create(ctx, s)
	require.NoError(t, err)
	require.NotNil(t, saved.RevokedAt)
	require.True(t, saved.RevokedAt.Equal(revokedAt))

	active, err := repo.FindActiveByUser(ctx, userID, now)
	require.NoError(t, err)
	require.Empty(t, active)

	revoked, err := repo.Revoke(ctx, s.ID)
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestSessionRepository_DeleteExpired_ConcurrentCreate(t *testing.T) {
	// Purge removes only rows already expired at the cutoff, no matter
	// how many live sessions are being created at the same time.
	ctx := context.Background()
	repo := newTestRepository(t)
	now := time.Now()
	userID := uuid.New()

	const expired = 5
	for i := 0; i < expired; i++ {
		_, err := repo.Create(ctx, makeSession(userID, now.Add(-2*time.Hour), now.Add(-time.Hour)))
		require.NoError(t, err)
	}

	const writers = 4
	const perWriter = 8

	var wg sync.WaitGroup
	errs := make(chan error, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				if _, err := repo.Create(ctx, makeSession(userID, now, now.Add(time.Hour))); err != nil {
					errs <- err
				}
			}
		}()
	}

	var purged int64
	for i := 0; i < 10; i++ {
		count, err := repo.DeleteExpired(ctx, now)
		require.NoError(t, err)
		purged += count
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	purged += count
	require.EqualValues(t, expired, purged)

	active, err := repo.FindActiveByUser(ctx, userID, now)
	require.NoError(t, err)
	require.Len(t, active, writers*perWriter)
}
