package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"instagram-relay/domain/repository"
)

const noncePrefix = "state_nonce:"

// RedisNonceStore marks state-token nonces consumed with a SETNX-style
// guard, so a token replayed within its TTL is rejected even across
// requests that lost the double-submit cookie.
type RedisNonceStore struct {
	client *redis.Client
}

func NewRedisNonceStore(client *redis.Client) repository.INonceStore {
	return &RedisNonceStore{client: client}
}

func (s *RedisNonceStore) Consume(ctx context.Context, nonce string, ttl time.Duration) (bool, error) {
	return s.client.SetNX(ctx, noncePrefix+nonce, 1, ttl).Result()
}

// MemoryNonceStore is the single-instance fallback when Redis is not
// configured. Expired entries are swept lazily on each Consume.
type MemoryNonceStore struct {
	mu       sync.Mutex
	consumed map[string]time.Time
}

func NewMemoryNonceStore() *MemoryNonceStore {
	return &MemoryNonceStore{consumed: make(map[string]time.Time)}
}

func (s *MemoryNonceStore) Consume(_ context.Context, nonce string, ttl time.Duration) (bool, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for n, exp := range s.consumed {
		if now.After(exp) {
			delete(s.consumed, n)
		}
	}
	if _, used := s.consumed[nonce]; used {
		return false, nil
	}
	s.consumed[nonce] = now.Add(ttl)
	return true, nil
}
