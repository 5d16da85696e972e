// Package registry maps literal type tags to constructors so callers can opt
// into specialised records and messages without touching the parser.
package registry

import (
	"sort"
	"sync"
)

// Tagged is the constraint for every entity a Registry builds.
type Tagged interface {
	Type() string
}

// Constructor builds an entity from its constructor argument.
type Constructor[T Tagged, A any] func(args A) T

// marker is implemented by entities that record whether a registered
// constructor built them.
type marker interface {
	MarkRegistered()
}

type registeredReporter interface {
	Registered() bool
}

// Registry holds the constructors for one family of entities (records,
// messages or zones).
//
// Registration is expected to finish before the registry is used to create
// entities; the mutex only makes concurrent lookups safe.
type Registry[T Tagged, A any] struct {
	mu sync.RWMutex

	// byTag maps a literal type tag to its constructor
	byTag map[string]Constructor[T, A]

	// fallback builds the generic base entity for unregistered tags
	fallback func(tag string, args A) T
}

// New creates a Registry whose unregistered tags are built by fallback.
func New[T Tagged, A any](fallback func(tag string, args A) T) *Registry[T, A] {
	return &Registry[T, A]{
		byTag:    make(map[string]Constructor[T, A]),
		fallback: fallback,
	}
}

// Register adds or replaces the constructor for tag.
func (r *Registry[T, A]) Register(tag string, c Constructor[T, A]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byTag[tag] = c
}

// Unregister removes the constructor for tag. Unknown tags are ignored.
func (r *Registry[T, A]) Unregister(tag string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byTag, tag)
}

// IsRegistered reports whether tag has a constructor.
func (r *Registry[T, A]) IsRegistered(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byTag[tag]
	return ok
}

// Create builds an entity for tag. Unregistered tags produce the generic
// base entity; that is not an error.
func (r *Registry[T, A]) Create(tag string, args A) T {
	r.mu.RLock()
	c, ok := r.byTag[tag]
	r.mu.RUnlock()

	if !ok {
		return r.fallback(tag, args)
	}
	e := c(args)
	if m, ok := any(e).(marker); ok {
		m.MarkRegistered()
	}
	return e
}

// Tags returns every registered tag in sorted order.
func (r *Registry[T, A]) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// CastIfRegistered returns entity as V when its tag is registered in r, it
// was built by a registered constructor, and its dynamic type is V.
func CastIfRegistered[V any, T Tagged, A any](r *Registry[T, A], entity T) (V, bool) {
	var zero V
	if rr, ok := any(entity).(registeredReporter); ok && !rr.Registered() {
		return zero, false
	}
	if !r.IsRegistered(entity.Type()) {
		return zero, false
	}
	v, ok := any(entity).(V)
	if !ok {
		return zero, false
	}
	return v, true
}
