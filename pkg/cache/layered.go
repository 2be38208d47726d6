package cache

import (
	"context"
	"time"
)

// LayeredCache fronts Redis with the in-process hot layer. Reads promote
// Redis hits into memory; writes go through to both.
type LayeredCache struct {
	hot  *MemoryCache
	warm *RedisCache
}

func NewLayeredCache(warm *RedisCache) *LayeredCache {
	return &LayeredCache{
		hot:  NewMemoryCache(0),
		warm: warm,
	}
}

func (lc *LayeredCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if err := lc.warm.Set(ctx, key, value, expiration); err != nil {
		return err
	}
	_ = lc.hot.Set(ctx, key, value, expiration)
	return nil
}

func (lc *LayeredCache) Get(ctx context.Context, key string, dest interface{}) error {
	if err := lc.hot.Get(ctx, key, dest); err == nil {
		return nil
	}
	var payload string
	if err := lc.warm.Get(ctx, key, &payload); err != nil {
		return err
	}
	_ = lc.hot.Set(ctx, key, payload, 0)

	switch d := dest.(type) {
	case *string:
		*d = payload
	case *[]byte:
		*d = []byte(payload)
	default:
		return ErrCacheMiss
	}
	return nil
}

func (lc *LayeredCache) Delete(ctx context.Context, keys ...string) error {
	_ = lc.hot.Delete(ctx, keys...)
	return lc.warm.Delete(ctx, keys...)
}

func (lc *LayeredCache) Exists(ctx context.Context, keys ...string) (bool, error) {
	return lc.warm.Exists(ctx, keys...)
}

// Locks always live in Redis so they hold across instances.
func (lc *LayeredCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return lc.warm.TryLock(ctx, key, ttl)
}

func (lc *LayeredCache) Unlock(ctx context.Context, key string) error {
	return lc.warm.Unlock(ctx, key)
}

func (lc *LayeredCache) Close() error {
	_ = lc.hot.Close()
	return lc.warm.Close()
}
