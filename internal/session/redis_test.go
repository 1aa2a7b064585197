package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStoreLifecycle(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, "test:", time.Hour, nil)
	ctx := context.Background()

	token, err := store.Create(ctx, User{ID: 4, Username: "bob"})
	require.NoError(t, err)
	require.True(t, mr.Exists("test:"+token))
	assert.Equal(t, time.Hour, mr.TTL("test:"+token))

	user, ok := store.Resolve(ctx, token)
	require.True(t, ok)
	assert.Equal(t, int64(4), user.ID)

	store.Invalidate(ctx, token)
	store.Invalidate(ctx, token)
	_, ok = store.Resolve(ctx, token)
	assert.False(t, ok)
}

func TestRedisStoreExpiry(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, "", time.Minute, nil)
	ctx := context.Background()

	token, err := store.Create(ctx, User{ID: 1})
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)
	_, ok := store.Resolve(ctx, token)
	assert.False(t, ok)
	assert.Equal(t, 0, store.PurgeExpired(ctx))
}

func TestRedisStoreCollision(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisStore(client, "c:", time.Hour, nil)
	store.newToken = func() (string, error) { return "same", nil }
	ctx := context.Background()

	_, err := store.Create(ctx, User{ID: 1, Username: "first"})
	require.NoError(t, err)
	_, err = store.Create(ctx, User{ID: 2, Username: "second"})
	require.ErrorIs(t, err, ErrTokenCollision)

	user, ok := store.Resolve(ctx, "same")
	require.True(t, ok)
	assert.Equal(t, "first", user.Username)
}

func TestRedisStoreCorruptRecord(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, "k:", time.Hour, nil)

	require.NoError(t, mr.Set("k:bad", "{not json"))
	_, ok := store.Resolve(context.Background(), "bad")
	assert.False(t, ok)
	assert.False(t, mr.Exists("k:bad"))
}
