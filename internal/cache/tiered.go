package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Tiered is a read-through cache for shared catalog responses: a short-lived
// in-process copy in front of redis, with concurrent misses for the same key
// collapsed into one load.
type Tiered struct {
	remote   *Client
	local    *gocache.Cache
	group    singleflight.Group
	ttl      time.Duration
	localTTL time.Duration
	log      *zap.Logger
}

func NewTiered(remote *Client, ttl, localTTL time.Duration, log *zap.Logger) *Tiered {
	return &Tiered{
		remote:   remote,
		local:    gocache.New(localTTL, 2*localTTL),
		ttl:      ttl,
		localTTL: localTTL,
		log:      log,
	}
}

// sharedLoadTimeout bounds a collapsed load once it no longer follows any
// single caller's context.
const sharedLoadTimeout = 30 * time.Second

// GetOrLoad returns the cached bytes for key or calls load and stores its
// result. Redis failures are logged and bypassed. A shared load keeps running
// when the caller that started it goes away; each caller only stops waiting
// on its own context.
func (t *Tiered) GetOrLoad(ctx context.Context, key string, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if v, ok := t.local.Get(key); ok {
		return v.([]byte), nil
	}

	ch := t.group.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()

		data, err := t.remote.Get(ctx, key)
		if err == nil {
			t.local.Set(key, data, t.localTTL)
			return data, nil
		}
		if !errors.Is(err, ErrMiss) {
			t.log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
		}

		data, err = load(ctx)
		if err != nil {
			return nil, err
		}

		t.local.Set(key, data, t.localTTL)
		if err := t.remote.Set(ctx, key, data, t.ttl); err != nil {
			t.log.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// Invalidate drops every key starting with one of prefixes from both tiers.
func (t *Tiered) Invalidate(ctx context.Context, prefixes ...string) error {
	for key := range t.local.Items() {
		for _, p := range prefixes {
			if strings.HasPrefix(key, p) {
				t.local.Delete(key)
				break
			}
		}
	}

	var errs []error
	for _, p := range prefixes {
		if err := t.remote.DelPrefix(ctx, p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Fetch is GetOrLoad for JSON values.
func Fetch[T any](ctx context.Context, t *Tiered, key string, load func(context.Context) (T, error)) (T, error) {
	var out T
	data, err := t.GetOrLoad(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(data, &out)
	return out, err
}
