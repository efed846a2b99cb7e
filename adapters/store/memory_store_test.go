package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := newMemoryStore(func() time.Time { return now })

	revoked, err := s.IsSessionRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, s.RevokeSession(ctx, "a", time.Minute))
	revoked, err = s.IsSessionRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	// a shorter second revocation does not shorten the first
	require.NoError(t, s.RevokeSession(ctx, "a", time.Second))
	now = now.Add(30 * time.Second)
	revoked, err = s.IsSessionRevoked(ctx, "a")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(time.Minute)
	revoked, err = s.IsSessionRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)

	// non-positive expiry is a no-op
	require.NoError(t, s.RevokeSession(ctx, "c", 0))
	revoked, err = s.IsSessionRevoked(ctx, "c")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestMemoryStorePrunesExpiredOnLookup(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := newMemoryStore(func() time.Time { return now })

	require.NoError(t, s.RevokeSession(ctx, "a", time.Second))
	now = now.Add(2 * time.Second)

	revoked, err := s.IsSessionRevoked(ctx, "a")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Empty(t, s.revoked)
}

func TestMemoryStoreSweepsAtMostEveryInterval(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := newMemoryStore(func() time.Time { return now })

	require.NoError(t, s.RevokeSession(ctx, "a", time.Second))
	now = now.Add(2 * time.Second)

	// within the interval the expired entry is left alone
	require.NoError(t, s.RevokeSession(ctx, "b", time.Hour))
	assert.Len(t, s.revoked, 2)

	now = now.Add(sweepInterval)
	require.NoError(t, s.RevokeSession(ctx, "c", time.Hour))
	assert.Len(t, s.revoked, 2)
	assert.NotContains(t, s.revoked, "a")
}
