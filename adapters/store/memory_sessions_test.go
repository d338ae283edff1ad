package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paylinkr/gatekeeper/core"
)

func newSession(id, address string) *core.Session {
	now := time.Now().UTC()
	return &core.Session{
		ID:            id,
		WalletAddress: address,
		AccountType:   core.AccountPersonal,
		IssuedAt:      now,
		ExpiresAt:     now.Add(time.Hour),
		Valid:         true,
	}
}

func TestMemorySessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()

	require.NoError(t, s.Create(ctx, newSession("s1", "SPADDR1")))

	found, err := s.Find(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "SPADDR1", found.WalletAddress)
	assert.True(t, found.Valid)

	require.NoError(t, s.Revoke(ctx, "s1"))
	found, err = s.Find(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, found.Valid)
}

func TestMemorySessionStoreFindMissing(t *testing.T) {
	s := NewMemorySessionStore()

	_, err := s.Find(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, core.KindNotFound, core.KindOf(err))
}

func TestMemorySessionStoreRevokeMissingIsNoop(t *testing.T) {
	s := NewMemorySessionStore()
	assert.NoError(t, s.Revoke(context.Background(), "nope"))
}

func TestMemorySessionStoreRevokeAddress(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore()

	require.NoError(t, s.Create(ctx, newSession("s1", "SPADDR1")))
	require.NoError(t, s.Create(ctx, newSession("s2", "SPADDR1")))
	require.NoError(t, s.Create(ctx, newSession("s3", "SPADDR2")))

	revoked, err := s.RevokeAddress(ctx, "SPADDR1")
	require.NoError(t, err)
	assert.Equal(t, 2, revoked)

	for _, id := range []string{"s1", "s2"} {
		found, err := s.Find(ctx, id)
		require.NoError(t, err)
		assert.False(t, found.Valid)
	}

	// The other address is untouched.
	other, err := s.Find(ctx, "s3")
	require.NoError(t, err)
	assert.True(t, other.Valid)

	// A second pass finds nothing left to revoke.
	revoked, err = s.RevokeAddress(ctx, "SPADDR1")
	require.NoError(t, err)
	assert.Zero(t, revoked)
}

func TestMemoryReplayGuard(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryReplayGuard()

	fresh, err := g.Remember(ctx, "nonce-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = g.Remember(ctx, "nonce-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, fresh)

	fresh, err = g.Remember(ctx, "nonce-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, fresh)
}
