package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Belphemur/AnimeProviders/internal/apperrors"
)

// Factory is a constructor function that creates a Provider from options.
type Factory func(opts Options) Provider

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register registers a provider factory under the given id.
// It panics if the id is already registered or the factory is nil.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if f == nil {
		panic("provider: Register factory is nil")
	}
	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("provider: %q already registered", id))
	}
	factories[id] = f
}

// New creates the provider registered under id.
func New(id string, opts Options) (Provider, error) {
	mu.RLock()
	f, ok := factories[id]
	mu.RUnlock()

	if !ok {
		return nil, apperrors.NewProviderNotFoundError(id)
	}
	return f(opts), nil
}

// RegisteredIDs returns a sorted list of registered provider ids.
func RegisteredIDs() []string {
	mu.RLock()
	defer mu.RUnlock()

	ids := make([]string, 0, len(factories))
	for id := range factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Registry holds instantiated providers keyed by id
type Registry struct {
	providers map[string]Provider
	order     []string
}

// NewRegistry builds a registry from the given providers. Duplicate ids are rejected.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		if err := r.Add(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// NewRegistryFromFactories instantiates every registered factory with opts.
// BaseURLs maps a provider id to an optional base URL override.
func NewRegistryFromFactories(opts Options, baseURLs map[string]string) (*Registry, error) {
	var providers []Provider
	for _, id := range RegisteredIDs() {
		o := opts
		o.BaseURL = baseURLs[id]
		p, err := New(id, o)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return NewRegistry(providers...)
}

// Add registers p, failing when its id is already taken
func (r *Registry) Add(p Provider) error {
	if _, exists := r.providers[p.ID()]; exists {
		return fmt.Errorf("provider %q already registered", p.ID())
	}
	r.providers[p.ID()] = p
	r.order = append(r.order, p.ID())
	return nil
}

// Get returns the provider with the given id or an *apperrors.ErrNotFound
func (r *Registry) Get(id string) (Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, apperrors.NewProviderNotFoundError(id)
	}
	return p, nil
}

// List returns the providers in registration order
func (r *Registry) List() []Provider {
	list := make([]Provider, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, r.providers[id])
	}
	return list
}
