// Package recent tracks the products an owner looked at most recently.
package recent

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	MaxItems     = 12
	DefaultLimit = 8
)

type Store interface {
	Record(ctx context.Context, scope, productID string) error
	// List returns up to limit product ids, most recent first.
	List(ctx context.Context, scope string, limit int) ([]string, error)
	Clear(ctx context.Context, scope string) error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxItems {
		return MaxItems
	}
	return limit
}

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func key(scope string) string {
	return "recent:" + scope
}

func (s *RedisStore) Record(ctx context.Context, scope, productID string) error {
	k := key(scope)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LRem(ctx, k, 0, productID)
		pipe.LPush(ctx, k, productID)
		pipe.LTrim(ctx, k, 0, MaxItems-1)
		if s.ttl > 0 {
			pipe.Expire(ctx, k, s.ttl)
		}
		return nil
	})
	return err
}

func (s *RedisStore) List(ctx context.Context, scope string, limit int) ([]string, error) {
	return s.rdb.LRange(ctx, key(scope), 0, int64(normalizeLimit(limit))-1).Result()
}

func (s *RedisStore) Clear(ctx context.Context, scope string) error {
	return s.rdb.Del(ctx, key(scope)).Err()
}

// MemoryStore keeps lists in process. Entries do not expire.
type MemoryStore struct {
	mu    sync.Mutex
	lists map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{lists: make(map[string][]string)}
}

func (s *MemoryStore) Record(_ context.Context, scope, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := []string{productID}
	for _, id := range s.lists[scope] {
		if id != productID && len(list) < MaxItems {
			list = append(list, id)
		}
	}
	s.lists[scope] = list
	return nil
}

func (s *MemoryStore) List(_ context.Context, scope string, limit int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[scope]
	if n := normalizeLimit(limit); len(list) > n {
		list = list[:n]
	}
	return append([]string(nil), list...), nil
}

func (s *MemoryStore) Clear(_ context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.lists, scope)
	return nil
}
