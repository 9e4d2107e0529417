package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shopnest-bff/internal/cache"
	"shopnest-bff/internal/models"
)

var ErrNoSession = errors.New("no session for user")

// SessionStore keeps the signed-in user's profile so requests can be
// authorized without a backend round trip.
type SessionStore struct {
	redis *cache.Client
	ttl   time.Duration
}

func NewSessionStore(redis *cache.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{redis: redis, ttl: ttl}
}

func sessionKey(userID string) string {
	return "session:" + userID
}

func (s *SessionStore) Save(ctx context.Context, user models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, sessionKey(user.ID), data, s.ttl)
}

func (s *SessionStore) Get(ctx context.Context, userID string) (*models.User, error) {
	data, err := s.redis.Get(ctx, sessionKey(userID))
	if errors.Is(err, cache.ErrMiss) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	return s.redis.Del(ctx, sessionKey(userID))
}
