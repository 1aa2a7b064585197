package metrics

import (
	"context"

	"github.com/wareledger/wareledger/internal/session"
)

// SessionStore counts created and purged sessions on top of another store.
type SessionStore struct {
	session.Store
}

// InstrumentSessions wraps store with session counters.
func InstrumentSessions(store session.Store) SessionStore {
	return SessionStore{Store: store}
}

func (s SessionStore) Create(ctx context.Context, user session.User) (string, error) {
	token, err := s.Store.Create(ctx, user)
	if err == nil {
		RecordSessionCreated()
	}
	return token, err
}

func (s SessionStore) PurgeExpired(ctx context.Context) int {
	n := s.Store.PurgeExpired(ctx)
	RecordSessionsPurged(n)
	return n
}
