package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestTokensAreUniqueHex(t *testing.T) {
	store := NewMemoryStore()
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		token, err := store.Create(context.Background(), User{ID: int64(i)})
		require.NoError(t, err)
		require.Len(t, token, 64)
		require.Regexp(t, "^[0-9a-f]+$", token)
		require.False(t, seen[token], "duplicate token %s", token)
		seen[token] = true
	}
	assert.Equal(t, 500, store.Len())
}

func TestResolveHonoursLifetime(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)}
	store := NewMemoryStore(WithClock(clock.Now))
	ctx := context.Background()

	token, err := store.Create(ctx, User{ID: 1, Username: "alice", Admin: true})
	require.NoError(t, err)

	clock.Advance(Lifetime - time.Second)
	user, ok := store.Resolve(ctx, token)
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.Admin)

	clock.Advance(2 * time.Second)
	_, ok = store.Resolve(ctx, token)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Len(), "expired entry should be evicted on lookup")
}

func TestResolveUnknownAndEmpty(t *testing.T) {
	store := NewMemoryStore()
	_, ok := store.Resolve(context.Background(), "")
	assert.False(t, ok)
	_, ok = store.Resolve(context.Background(), "deadbeef")
	assert.False(t, ok)
}

func TestInvalidateIsIdempotent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	token, err := store.Create(ctx, User{ID: 2})
	require.NoError(t, err)

	store.Invalidate(ctx, token)
	store.Invalidate(ctx, token)
	store.Invalidate(ctx, "")

	_, ok := store.Resolve(ctx, token)
	assert.False(t, ok)
}

func TestPurgeExpiredKeepsLiveSessions(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	store := NewMemoryStore(WithClock(clock.Now), WithLifetime(time.Hour))
	ctx := context.Background()

	old, err := store.Create(ctx, User{ID: 1})
	require.NoError(t, err)
	clock.Advance(45 * time.Minute)
	fresh, err := store.Create(ctx, User{ID: 2})
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)

	assert.Equal(t, 1, store.PurgeExpired(ctx))
	_, ok := store.Resolve(ctx, old)
	assert.False(t, ok)
	_, ok = store.Resolve(ctx, fresh)
	assert.True(t, ok)
}

func TestCollisionIsAnError(t *testing.T) {
	store := NewMemoryStore(WithTokenSource(func() (string, error) { return "fixed", nil }))
	ctx := context.Background()

	_, err := store.Create(ctx, User{ID: 1, Username: "first"})
	require.NoError(t, err)
	_, err = store.Create(ctx, User{ID: 2, Username: "second"})
	require.ErrorIs(t, err, ErrTokenCollision)

	user, ok := store.Resolve(ctx, "fixed")
	require.True(t, ok)
	assert.Equal(t, "first", user.Username, "existing session must not be overwritten")
}

func TestConcurrentAccess(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			token, err := store.Create(ctx, User{ID: id})
			if err != nil {
				return
			}
			store.Resolve(ctx, token)
			store.PurgeExpired(ctx)
			store.Invalidate(ctx, token)
		}(int64(i))
	}
	wg.Wait()
	assert.Equal(t, 0, store.Len())
}

func TestHashCredential(t *testing.T) {
	assert.Equal(t,
		"5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8",
		HashCredential("password"))
	assert.Equal(t, HashCredential("x"), HashCredential("x"))
	assert.NotEqual(t, HashCredential("x"), HashCredential("y"))
}
