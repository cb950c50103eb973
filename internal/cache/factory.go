package cache

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Belphemur/AnimeProviders/internal/config"

	"github.com/rs/zerolog"
)

// BackendConfig holds what a backend needs to build a Cache.
type BackendConfig struct {
	// Size bounds the number of entries of in-process backends.
	Size int

	// TTL is how long an entry stays valid.
	TTL time.Duration

	// OnEvict is called on eviction by backends that support it.
	OnEvict EvictCallback

	// Logger receives backend errors. A nil logger discards them.
	Logger *zerolog.Logger

	RedisAddress  string
	RedisPassword string
	RedisDB       int

	// Group labels the cache metrics. When set the cache is wrapped with
	// hit/miss/eviction instrumentation.
	Group string
}

// Backend builds a Cache from a BackendConfig.
type Backend func(cfg BackendConfig) (Cache, error)

var (
	mu       sync.RWMutex
	backends = make(map[string]Backend)
)

// Register makes a backend available under name.
// It panics on a nil backend or a duplicate name.
func Register(name string, b Backend) {
	mu.Lock()
	defer mu.Unlock()

	if b == nil {
		panic("cache: Register backend is nil")
	}
	if _, exists := backends[name]; exists {
		panic(fmt.Sprintf("cache: backend %q already registered", name))
	}
	backends[name] = b
}

// New creates a cache with the named backend.
func New(name string, cfg BackendConfig) (Cache, error) {
	mu.RLock()
	b, ok := backends[name]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("cache: unknown backend %q (registered: %v)", name, RegisteredBackends())
	}

	if cfg.Group == "" {
		return b(cfg)
	}

	group := cfg.Group
	original := cfg.OnEvict
	cfg.OnEvict = func(key string, value []byte) {
		EvictionsTotal.WithLabelValues(group).Inc()
		if original != nil {
			original(key, value)
		}
	}

	inner, err := b(cfg)
	if err != nil {
		return nil, err
	}
	return newInstrumentedCache(inner, group), nil
}

// FromConfig builds the cache described by the cache section of cfg.
// It returns a nil Cache when caching is disabled.
func FromConfig(cfg *config.Config, group string) (Cache, error) {
	if cfg.Cache.Provider == "" {
		return nil, nil
	}
	logger := config.GetLogger()
	size := cfg.Cache.Size
	if size <= 0 {
		size = 1000
	}
	return New(cfg.Cache.Provider, BackendConfig{
		Size:          size,
		TTL:           cfg.GetCacheTTL(),
		Logger:        &logger,
		RedisAddress:  cfg.Cache.Redis.Address,
		RedisPassword: cfg.Cache.Redis.Password,
		RedisDB:       cfg.Cache.Redis.DB,
		Group:         group,
	})
}

// RegisteredBackends returns the sorted names of the registered backends.
func RegisteredBackends() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
