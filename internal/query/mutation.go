package query

import (
	"context"
	"sync"
)

// Write is a direct cache write applied after a successful mutation.
type Write struct {
	Key  Key
	Data any
}

// Mutation runs a write against the API and then brings the cache in line with it.
//
// On success it applies, in order: Writes, Invalidates, OnSuccess. On failure the error is kept for
// the UI and OnError runs. Overlapping calls are allowed; the UI disables its controls while Pending.
type Mutation[In, Out any] struct {
	Cache *Cache
	Do    func(ctx context.Context, in In) (Out, error)

	// OnMutate runs before Do, typically to set an optimistic value.
	OnMutate func(in In)
	// Writes lists entries to replace with server-confirmed data.
	Writes func(in In, out Out) []Write
	// Invalidates lists key prefixes whose entries must refetch.
	Invalidates func(in In, out Out) []Key
	OnSuccess   func(ctx context.Context, in In, out Out)
	OnError     func(ctx context.Context, in In, err error)

	mu      sync.Mutex
	pending int
	err     error
}

// Mutate executes the mutation.
func (m *Mutation[In, Out]) Mutate(ctx context.Context, in In) (Out, error) {
	m.mu.Lock()
	m.pending++
	m.err = nil
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.pending--
		m.mu.Unlock()
	}()

	if m.OnMutate != nil {
		m.OnMutate(in)
	}

	out, err := m.Do(ctx, in)
	if err != nil {
		m.mu.Lock()
		m.err = err
		m.mu.Unlock()

		if m.OnError != nil {
			m.OnError(ctx, in, err)
		}
		return out, err
	}

	if m.Cache != nil {
		if m.Writes != nil {
			for _, w := range m.Writes(in, out) {
				m.Cache.SetData(w.Key, w.Data)
			}
		}
		if m.Invalidates != nil {
			if keys := m.Invalidates(in, out); len(keys) > 0 {
				m.Cache.Invalidate(keys...)
			}
		}
	}

	if m.OnSuccess != nil {
		m.OnSuccess(ctx, in, out)
	}
	return out, nil
}

// Pending reports whether any call is in flight.
func (m *Mutation[In, Out]) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending > 0
}

// Err returns the error of the last failed call, cleared when a new call starts.
func (m *Mutation[In, Out]) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Reset clears the error slot.
func (m *Mutation[In, Out]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = nil
}
