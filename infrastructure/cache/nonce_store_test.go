package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"instagram-relay/infrastructure/cache"
)

func TestMemoryNonceStore_SingleUse(t *testing.T) {
	store := cache.NewMemoryNonceStore()
	ctx := context.Background()

	ok, err := store.Consume(ctx, "nonce-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "first use")

	ok, err = store.Consume(ctx, "nonce-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "replay must be rejected")

	ok, err = store.Consume(ctx, "nonce-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "different nonce unaffected")
}

func TestMemoryNonceStore_ExpiredEntriesSwept(t *testing.T) {
	store := cache.NewMemoryNonceStore()
	ctx := context.Background()

	ok, err := store.Consume(ctx, "short-lived", time.Nanosecond)
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(5 * time.Millisecond)

	// After the guard window the nonce is gone; the token it protected is
	// expired by then anyway.
	ok, err = store.Consume(ctx, "short-lived", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
