package attempts

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/pinkeeper/internal/common"
	"github.com/dmitrijs2005/pinkeeper/internal/server/models"
	"github.com/dmitrijs2005/pinkeeper/internal/ttlcache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_RoundTripAndIsolation(t *testing.T) {
	repo := NewMemoryRepository(ttlcache.WithSweepInterval(0))
	defer repo.Close()
	ctx := context.Background()

	_, err := repo.Get(ctx, "u1")
	require.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, repo.Put(ctx, &models.AttemptRecord{PrincipalID: "u1", FailureCount: 2}))
	require.NoError(t, repo.Put(ctx, &models.AttemptRecord{PrincipalID: "u2", FailureCount: 4}))

	rec, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.FailureCount)

	require.NoError(t, repo.Delete(ctx, "u1"))
	_, err = repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	rec, err = repo.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, 4, rec.FailureCount)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository(ttlcache.WithSweepInterval(0))
	defer repo.Close()
	ctx := context.Background()

	want := time.Now().Add(time.Hour)
	lockedUntil := want
	in := &models.AttemptRecord{PrincipalID: "u1", FailureCount: 5, LockedUntil: &lockedUntil}
	require.NoError(t, repo.Put(ctx, in))

	in.FailureCount = 99
	*in.LockedUntil = want.Add(time.Hour)

	out, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, out.FailureCount)
	assert.True(t, want.Equal(*out.LockedUntil))

	*out.LockedUntil = want.Add(2 * time.Hour)
	stored, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, want.Equal(*stored.LockedUntil))

	out.FailureCount = 0
	again, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, again.FailureCount)
}

func TestMemoryRepository_LockedRecordsExpire(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	repo := NewMemoryRepository(ttlcache.WithSweepInterval(0), ttlcache.WithClock(clock))
	defer repo.Close()
	ctx := context.Background()

	until := now.Add(15 * time.Minute)
	require.NoError(t, repo.Put(ctx, &models.AttemptRecord{PrincipalID: "u1", FailureCount: 5, LockedUntil: &until}))
	require.NoError(t, repo.Put(ctx, &models.AttemptRecord{PrincipalID: "u2", FailureCount: 1}))

	now = until
	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	now = now.Add(24 * time.Hour)
	_, err = repo.Get(ctx, "u2")
	assert.NoError(t, err, "open records never expire")
}

func TestMemoryRepository_HonoursCancelledContext(t *testing.T) {
	repo := NewMemoryRepository(ttlcache.WithSweepInterval(0))
	defer repo.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, repo.Put(ctx, &models.AttemptRecord{PrincipalID: "u1"}), context.Canceled)
	assert.ErrorIs(t, repo.Delete(ctx, "u1"), context.Canceled)
}
