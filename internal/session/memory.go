package session

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	user      User
	createdAt time.Time
}

// MemoryStore is the in-process session store. Expiry is checked lazily
// on Resolve; PurgeExpired sweeps the rest.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]entry
	lifetime time.Duration
	now      func() time.Time
	newToken func() (string, error)
}

var _ Store = (*MemoryStore)(nil)

// MemoryOption customises a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithLifetime overrides the session lifetime.
func WithLifetime(d time.Duration) MemoryOption {
	return func(s *MemoryStore) {
		if d > 0 {
			s.lifetime = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTokenSource overrides token generation.
func WithTokenSource(gen func() (string, error)) MemoryOption {
	return func(s *MemoryStore) {
		if gen != nil {
			s.newToken = gen
		}
	}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		sessions: make(map[string]entry),
		lifetime: Lifetime,
		now:      time.Now,
		newToken: NewToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Create(_ context.Context, user User) (string, error) {
	token, err := s.newToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[token]; exists {
		return "", ErrTokenCollision
	}
	s.sessions[token] = entry{user: user, createdAt: s.now()}
	return token, nil
}

func (s *MemoryStore) Resolve(_ context.Context, token string) (User, bool) {
	if token == "" {
		return User{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[token]
	if !ok {
		return User{}, false
	}
	if s.expiredLocked(e) {
		delete(s.sessions, token)
		return User{}, false
	}
	return e.user, true
}

func (s *MemoryStore) Invalidate(_ context.Context, token string) {
	if token == "" {
		return
	}
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

func (s *MemoryStore) PurgeExpired(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	purged := 0
	for token, e := range s.sessions {
		if s.expiredLocked(e) {
			delete(s.sessions, token)
			purged++
		}
	}
	return purged
}

// Len reports how many sessions are held, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *MemoryStore) expiredLocked(e entry) bool {
	return s.now().Sub(e.createdAt) > s.lifetime
}
