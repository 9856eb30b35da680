// Package registry provides small mutex-guarded keyed stores for live
// in-memory state, such as experiment sessions. Registries are created
// at startup and injected where needed; nothing hides in package
// globals.
package registry

import "sync"

// Registry is a concurrency-safe map of objects keyed by id.
type Registry[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// New returns an empty registry.
func New[T any]() *Registry[T] {
	return &Registry[T]{items: make(map[string]T)}
}

// Get returns the item under id.
func (r *Registry[T]) Get(id string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	return item, ok
}

// Put stores item under id, replacing any previous occupant.
func (r *Registry[T]) Put(id string, item T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[id] = item
}

// GetOrCreate returns the item under id, building it with create on
// first use. Concurrent callers for the same id all receive the same
// instance.
func (r *Registry[T]) GetOrCreate(id string, create func() T) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item, ok := r.items[id]; ok {
		return item
	}
	item := create()
	r.items[id] = item
	return item
}

// Delete removes the item under id, if any.
func (r *Registry[T]) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
}

// Len reports how many items are registered.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// IDs returns the registered keys in no particular order.
func (r *Registry[T]) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	return ids
}
