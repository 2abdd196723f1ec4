package query

import "sync"

// Optimistic holds local guesses made while a write is in flight.
//
// It never stores server values. Callers overlay [Optimistic.Value] on the cache entry that holds
// the authoritative value, and drop the guess once the write settles so the entry shows through.
type Optimistic[K comparable, V any] struct {
	mu      sync.RWMutex
	guesses map[K]V
}

// NewOptimistic creates an empty [Optimistic].
func NewOptimistic[K comparable, V any]() *Optimistic[K, V] {
	return &Optimistic[K, V]{guesses: map[K]V{}}
}

// Set records a local guess for k.
func (o *Optimistic[K, V]) Set(k K, v V) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.guesses[k] = v
}

// Discard drops the guess for k, on success and on failure alike.
func (o *Optimistic[K, V]) Discard(k K) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.guesses, k)
}

// Reset drops every guess.
func (o *Optimistic[K, V]) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.guesses = map[K]V{}
}

// Value returns the outstanding guess for k.
func (o *Optimistic[K, V]) Value(k K) (V, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.guesses[k]
	return v, ok
}

// Pending reports whether k has an outstanding guess.
func (o *Optimistic[K, V]) Pending(k K) bool {
	_, ok := o.Value(k)
	return ok
}
