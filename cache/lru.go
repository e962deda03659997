package cache

import (
	"context"
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru"
)

type lruEntry struct {
	data    []byte
	expires time.Time // zero means no expiry
}

// LRUCache is an in-process Cache bounded by entry count.
type LRUCache struct {
	entries *lru.Cache
	now     func() time.Time
}

func NewLRUCache(size int) (*LRUCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LRUCache{entries: c, now: time.Now}, nil
}

func (c *LRUCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	e := lruEntry{data: data}
	if expiration > 0 {
		e.expires = c.now().Add(expiration)
	}
	c.entries.Add(key, e)
	return nil
}

func (c *LRUCache) Get(_ context.Context, key string, dest interface{}) error {
	v, ok := c.entries.Get(key)
	if !ok {
		return ErrMiss
	}
	e := v.(lruEntry)
	if !e.expires.IsZero() && !c.now().Before(e.expires) {
		c.entries.Remove(key)
		return ErrMiss
	}
	return json.Unmarshal(e.data, dest)
}

func (c *LRUCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		c.entries.Remove(k)
	}
	return nil
}

func (c *LRUCache) Len() int {
	return c.entries.Len()
}
