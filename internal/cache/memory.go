package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

func init() {
	Register("memory", newMemoryCache)
}

// memoryCache is an in-process LRU whose entries expire after the TTL.
type memoryCache struct {
	entries *lru.LRU[string, []byte]
}

func newMemoryCache(cfg BackendConfig) (Cache, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("cache: memory backend needs a positive size, got %d", cfg.Size)
	}
	var onEvict lru.EvictCallback[string, []byte]
	if cfg.OnEvict != nil {
		onEvict = func(key string, value []byte) { cfg.OnEvict(key, value) }
	}
	return &memoryCache{entries: lru.NewLRU(cfg.Size, onEvict, cfg.TTL)}, nil
}

func (m *memoryCache) Get(key string) ([]byte, bool) { return m.entries.Get(key) }

func (m *memoryCache) Set(key string, value []byte) { m.entries.Add(key, value) }

func (m *memoryCache) Contains(key string) bool { return m.entries.Contains(key) }

func (m *memoryCache) Len() int { return m.entries.Len() }

func (m *memoryCache) Close() error { return nil }
