package dataset

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Key derives the cache key for raw input parsed with opt. Identical bytes
// parsed with identical options always map to the same key.
func Key(data []byte, opt Options) string {
	h := sha256.New()
	h.Write([]byte(opt.fingerprint()))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Cache maps input keys to parsed datasets. A key that is present returns the
// same *Dataset every time; a new key triggers a parse. The least recently
// used entry is evicted once the cache holds more than its capacity.
type Cache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[string]*list.Element
	group    singleflight.Group
}

type cacheEntry struct {
	key string
	ds  *Dataset
}

// NewCache returns a cache holding at most capacity datasets.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// Get returns the cached dataset for key.
func (c *Cache) Get(key string) (*Dataset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).ds, true
}

// Put stores ds under key, evicting the oldest entries beyond capacity.
func (c *Cache) Put(key string, ds *Dataset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).ds = ds
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, ds: ds})
	for c.order.Len() > c.capacity {
		last := c.order.Back()
		c.order.Remove(last)
		delete(c.entries, last.Value.(*cacheEntry).key)
	}
}

// Forget drops key. It reports whether an entry was removed.
func (c *Cache) Forget(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.Remove(el)
	delete(c.entries, key)
	return true
}

// Len returns the number of cached datasets.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// GetOrLoad returns the dataset for key, calling load at most once across
// concurrent callers when it is missing. Failed loads are not cached.
func (c *Cache) GetOrLoad(ctx context.Context, key string, load func() (*Dataset, error)) (*Dataset, error) {
	if ds, ok := c.Get(key); ok {
		return ds, nil
	}
	ch := c.group.DoChan(key, func() (interface{}, error) {
		if ds, ok := c.Get(key); ok {
			return ds, nil
		}
		ds, err := load()
		if err != nil {
			return nil, err
		}
		ds.Key = key
		c.Put(key, ds)
		return ds, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Dataset), nil
	}
}
