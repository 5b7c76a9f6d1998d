package noncestore

import (
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client), mr
}

func TestReserve(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := t.Context()

	ok, err := store.Reserve(ctx, "n-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// Повторный резерв того же nonce отклоняется.
	ok, err = store.Reserve(ctx, "n-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// Другой nonce независим.
	ok, err = store.Reserve(ctx, "n-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestReserve_ExpiresWithTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := t.Context()

	ok, err := store.Reserve(ctx, "n-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	// Окно валидности пейлоада истекло, запись больше не нужна.
	ok, err = store.Reserve(ctx, "n-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRelease(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := t.Context()

	ok, err := store.Reserve(ctx, "n-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	store.Release(ctx, "n-1")

	ok, err = store.Reserve(ctx, "n-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
