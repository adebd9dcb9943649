package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrAlreadyRegistered is returned when a name is registered twice.
var ErrAlreadyRegistered = errors.New("already registered")

// Named is anything indexed by a Registry.
type Named interface {
	Name() string
}

// Registry keeps named entries in declaration order with case-insensitive
// lookup.
type Registry[E Named] struct {
	mu      sync.RWMutex
	entries []E
	byName  map[string]E
}

// New creates an empty registry.
func New[E Named]() *Registry[E] {
	return &Registry[E]{
		byName: make(map[string]E),
	}
}

// Register adds an entry. Names are compared case-insensitively.
func (r *Registry[E]) Register(e E) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(e.Name())
	if _, exists := r.byName[key]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, e.Name())
	}

	r.byName[key] = e
	r.entries = append(r.entries, e)
	return nil
}

// MustRegister registers an entry and panics on error.
// Useful for registering built-in entries at init time.
func (r *Registry[E]) MustRegister(e E) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Get returns the entry registered under name, ignoring case.
func (r *Registry[E]) Get(name string) (E, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byName[strings.ToLower(name)]
	return e, ok
}

// Len returns the number of entries.
func (r *Registry[E]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// All returns the entries in declaration order.
func (r *Registry[E]) All() []E {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]E, len(r.entries))
	copy(result, r.entries)
	return result
}

// Sorted returns the entries sorted by case-insensitive name.
func (r *Registry[E]) Sorted() []E {
	result := r.All()
	sort.SliceStable(result, func(i, j int) bool {
		return strings.ToLower(result[i].Name()) < strings.ToLower(result[j].Name())
	})
	return result
}

// Names returns the entry names in declaration order.
func (r *Registry[E]) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, e := range all {
		names[i] = e.Name()
	}
	return names
}
