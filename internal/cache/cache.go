// Package cache stores serialized catalog responses so repeated calls for the
// same provider page do not hit the upstream site again.
package cache

// EvictCallback is called when an entry leaves the cache because of capacity
// or expiry. Backends that evict server-side never call it.
type EvictCallback func(key string, value []byte)

// Cache is a byte-oriented key/value store with a per-backend TTL.
type Cache interface {
	// Get returns the value stored under key and whether it was present.
	Get(key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value.
	Set(key string, value []byte)

	// Contains reports whether key is present without refreshing it.
	Contains(key string) bool

	// Len returns the number of stored entries.
	Len() int

	// Close releases connections held by the backend.
	Close() error
}
