package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wareledger/wareledger/internal/logging"
)

// RedisStore keeps sessions in Redis so several server processes can share
// them. Keys carry a TTL equal to the lifetime, so expiry is enforced by
// Redis itself.
type RedisStore struct {
	client   redis.UniversalClient
	prefix   string
	lifetime time.Duration
	log      *logging.Logger
	newToken func() (string, error)
}

var _ Store = (*RedisStore)(nil)

type redisRecord struct {
	User      User  `json:"user"`
	CreatedAt int64 `json:"created_at"`
}

// NewRedisStore creates a store over client. An empty prefix defaults to
// "wareledger:session:".
func NewRedisStore(client redis.UniversalClient, prefix string, lifetime time.Duration, log *logging.Logger) *RedisStore {
	if prefix == "" {
		prefix = "wareledger:session:"
	}
	if lifetime <= 0 {
		lifetime = Lifetime
	}
	if log == nil {
		log = logging.NewDefault("session")
	}
	return &RedisStore{
		client:   client,
		prefix:   prefix,
		lifetime: lifetime,
		log:      log,
		newToken: NewToken,
	}
}

func (s *RedisStore) key(token string) string { return s.prefix + token }

func (s *RedisStore) Create(ctx context.Context, user User) (string, error) {
	token, err := s.newToken()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(redisRecord{User: user, CreatedAt: time.Now().Unix()})
	if err != nil {
		return "", err
	}

	created, err := s.client.SetNX(ctx, s.key(token), data, s.lifetime).Result()
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if !created {
		return "", ErrTokenCollision
	}
	return token, nil
}

func (s *RedisStore) Resolve(ctx context.Context, token string) (User, bool) {
	if token == "" {
		return User{}, false
	}
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.WithContext(ctx).WithError(err).Warn("session lookup failed")
		}
		return User{}, false
	}

	var rec redisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("discarding corrupt session")
		s.Invalidate(ctx, token)
		return User{}, false
	}
	if time.Since(time.Unix(rec.CreatedAt, 0)) > s.lifetime {
		s.Invalidate(ctx, token)
		return User{}, false
	}
	return rec.User, true
}

func (s *RedisStore) Invalidate(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		s.log.WithContext(ctx).WithError(err).Warn("session delete failed")
	}
}

// PurgeExpired is a no-op: Redis drops keys when their TTL runs out.
func (s *RedisStore) PurgeExpired(context.Context) int { return 0 }
