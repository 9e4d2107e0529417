package cart

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store persists carts by key. Update is an atomic read-modify-write: fn
// sees the current cart and its changes are saved only when it returns nil.
// A cart left empty is deleted.
type Store interface {
	Load(ctx context.Context, key string) (*Cart, error)
	Update(ctx context.Context, key string, ttl time.Duration, fn func(*Cart) error) (*Cart, error)
	Delete(ctx context.Context, key string) error
}

// MemoryStore keeps carts in process. Entries do not expire.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string][]byte)}
}

func (s *MemoryStore) Load(_ context.Context, key string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decode(s.carts[key])
}

func (s *MemoryStore) Update(_ context.Context, key string, _ time.Duration, fn func(*Cart) error) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := decode(s.carts[key])
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}

	if c.IsEmpty() {
		delete(s.carts, key)
		c.UpdatedAt = time.Time{}
		return c, nil
	}

	c.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	s.carts[key] = data
	return c, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}

const maxTxRetries = 5

// RedisStore keeps each cart as a JSON string. Updates use WATCH/MULTI and
// are retried a bounded number of times when another writer wins.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Cart, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	return decode(data)
}

func (s *RedisStore) Update(ctx context.Context, key string, ttl time.Duration, fn func(*Cart) error) (*Cart, error) {
	var out *Cart

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		c, err := decode(data)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}

		var payload []byte
		if c.IsEmpty() {
			c.UpdatedAt = time.Time{}
		} else {
			c.UpdatedAt = time.Now().UTC()
			if payload, err = json.Marshal(c); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if payload == nil {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		if err == nil {
			out = c
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrConflict
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

func decode(data []byte) (*Cart, error) {
	c := &Cart{}
	if len(data) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}
