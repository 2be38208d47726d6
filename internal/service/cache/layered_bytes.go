package cache

import (
	"context"
	"errors"
	"time"

	pkgcache "github.com/Dahilon/Atlas/pkg/cache"
)

// LayeredBytes adapts the layered memory+Redis cache to the BytesCache API.
type LayeredBytes struct {
	svc pkgcache.Service
}

func NewLayeredBytes(svc pkgcache.Service) *LayeredBytes {
	return &LayeredBytes{svc: svc}
}

func (c *LayeredBytes) GetBytes(key string) ([]byte, bool, error) {
	var s string
	if err := c.svc.Get(context.Background(), key, &s); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return []byte(s), true, nil
}

func (c *LayeredBytes) SetBytes(key string, value []byte, ttl time.Duration) error {
	return c.svc.Set(context.Background(), key, string(value), ttl)
}

var _ BytesCache = (*LayeredBytes)(nil)
