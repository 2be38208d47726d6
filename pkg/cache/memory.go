package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// defaultMemoryTTL bounds entries written without an explicit expiration.
const defaultMemoryTTL = 24 * time.Hour

type memoryEntry struct {
	key      string
	payload  string
	expireAt time.Time
}

// MemoryCache is the in-process hot layer. It holds serialized payloads as
// strings and evicts least-recently-read entries once maxEntries is reached.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently read
	max     int

	done chan struct{}
	once sync.Once
}

// NewMemoryCache creates the hot layer. maxEntries <= 0 selects a default
// sized for per-country insight payloads.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	mc := &MemoryCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		max:     maxEntries,
		done:    make(chan struct{}),
	}
	go mc.sweep(5 * time.Minute)
	return mc
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	s, ok := value.(string)
	if !ok {
		if b, isBytes := value.([]byte); isBytes {
			s = string(b)
		} else {
			// Non-string values only live in Redis; the hot layer skips them.
			return nil
		}
	}
	if expiration <= 0 {
		expiration = defaultMemoryTTL
	}

	mc.mu.Lock()
	defer mc.mu.Unlock()

	if el, exists := mc.entries[key]; exists {
		ent := el.Value.(*memoryEntry)
		ent.payload = s
		ent.expireAt = time.Now().Add(expiration)
		mc.order.MoveToFront(el)
		return nil
	}
	for len(mc.entries) >= mc.max {
		mc.evictOldest()
	}
	ent := &memoryEntry{key: key, payload: s, expireAt: time.Now().Add(expiration)}
	mc.entries[key] = mc.order.PushFront(ent)
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	el, exists := mc.entries[key]
	if !exists {
		return ErrCacheMiss
	}
	ent := el.Value.(*memoryEntry)
	if time.Now().After(ent.expireAt) {
		mc.remove(el)
		return ErrCacheMiss
	}
	mc.order.MoveToFront(el)

	switch d := dest.(type) {
	case *string:
		*d = ent.payload
	case *[]byte:
		*d = []byte(ent.payload)
	default:
		return ErrCacheMiss
	}
	return nil
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	for _, key := range keys {
		if el, ok := mc.entries[key]; ok {
			mc.remove(el)
		}
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	now := time.Now()
	for _, key := range keys {
		if el, ok := mc.entries[key]; ok && now.Before(el.Value.(*memoryEntry).expireAt) {
			return true, nil
		}
	}
	return false, nil
}

// TryLock is process-local. Cross-instance locking goes through Redis.
func (mc *MemoryCache) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	mc.mu.Lock()
	if el, ok := mc.entries[key]; ok && time.Now().Before(el.Value.(*memoryEntry).expireAt) {
		mc.mu.Unlock()
		return false, nil
	}
	mc.mu.Unlock()
	return true, mc.Set(ctx, key, "locked", ttl)
}

func (mc *MemoryCache) Unlock(ctx context.Context, key string) error {
	return mc.Delete(ctx, key)
}

// Close stops the background sweeper.
func (mc *MemoryCache) Close() error {
	mc.once.Do(func() { close(mc.done) })
	return nil
}

// remove and evictOldest require mc.mu held.
func (mc *MemoryCache) remove(el *list.Element) {
	ent := mc.order.Remove(el).(*memoryEntry)
	delete(mc.entries, ent.key)
}

func (mc *MemoryCache) evictOldest() {
	if el := mc.order.Back(); el != nil {
		mc.remove(el)
	}
}

func (mc *MemoryCache) sweep(interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-mc.done:
			return
		case <-t.C:
		}
		now := time.Now()
		mc.mu.Lock()
		for el := mc.order.Back(); el != nil; {
			prev := el.Prev()
			if now.After(el.Value.(*memoryEntry).expireAt) {
				mc.remove(el)
			}
			el = prev
		}
		mc.mu.Unlock()
	}
}
