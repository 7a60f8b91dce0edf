package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBlacklist_Token(t *testing.T) {
	b := NewMemoryBlacklist()
	ctx := context.Background()

	blocked, err := b.IsTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, blocked)

	require.NoError(t, b.BlacklistToken(ctx, "jti-1", time.Minute))

	blocked, err = b.IsTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = b.IsTokenBlacklisted(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestMemoryBlacklist_ExpiredEntryIsDropped(t *testing.T) {
	b := NewMemoryBlacklist()
	ctx := context.Background()

	require.NoError(t, b.BlacklistToken(ctx, "jti-1", -time.Second))

	blocked, err := b.IsTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestMemoryBlacklist_ZeroTTLIgnored(t *testing.T) {
	b := NewMemoryBlacklist()
	ctx := context.Background()

	require.NoError(t, b.BlacklistToken(ctx, "jti-1", 0))

	blocked, err := b.IsTokenBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestMemoryBlacklist_UserInvalidation(t *testing.T) {
	b := NewMemoryBlacklist()
	ctx := context.Background()
	cutoff := time.Now()

	require.NoError(t, b.InvalidateUser(ctx, "user-1", cutoff))

	before, err := b.IsUserInvalidated(ctx, "user-1", cutoff.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, before, "tokens issued before the cutoff are revoked")

	exact, err := b.IsUserInvalidated(ctx, "user-1", cutoff)
	require.NoError(t, err)
	assert.True(t, exact, "tokens issued at the cutoff are revoked")

	after, err := b.IsUserInvalidated(ctx, "user-1", cutoff.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, after, "tokens issued after the cutoff stay valid")

	other, err := b.IsUserInvalidated(ctx, "user-2", cutoff.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, other)
}
