package query

import (
	"context"
	"time"
)

// Options configures one read.
type Options[T any] struct {
	Key Key
	// Fetch performs the network call. It receives a context that is not canceled when an
	// individual waiter gives up, because other waiters may share the call.
	Fetch func(ctx context.Context) (T, error)
	// StaleTime is the fresh window after a successful fetch. Zero means always stale.
	StaleTime time.Duration
	// Disabled short-circuits the read (a required parameter is absent).
	Disabled bool
	// Placeholder is returned while Disabled.
	Placeholder T
}

// Result is the state of one read as seen by a consumer.
type Result[T any] struct {
	Data    T
	HasData bool
	// Err is the error of the most recent fetch. Data from an earlier success stays alongside it.
	Err       error
	Status    Status
	Fetching  bool
	Stale     bool
	UpdatedAt time.Time
}

func (o Options[T]) fetcher() fetchFunc {
	return func(ctx context.Context) (any, error) {
		return o.Fetch(ctx)
	}
}

func (o Options[T]) disabled() Result[T] {
	return Result[T]{Data: o.Placeholder, Status: StatusDisabled}
}

// Fetch returns fresh cached data for opts.Key, or waits for a network call.
//
// Concurrent calls for the same key share one request. If ctx ends first, the cached state is
// returned with ctx.Err(); the shared request keeps running for the other callers.
func Fetch[T any](ctx context.Context, c *Cache, opts Options[T]) (Result[T], error) {
	if opts.Disabled {
		return opts.disabled(), nil
	}

	fetch := opts.fetcher()
	snap, fresh := c.prepare(opts.Key, opts.StaleTime, fetch)
	if fresh {
		c.logger.Debug("cache hit", "key", opts.Key.String())
		return typed[T](snap), nil
	}

	snap, err := c.load(ctx, opts.Key, fetch)
	return typed[T](snap), err
}

// Query is the stale-while-revalidate read.
//
// Fresh data is returned as is. Stale data is returned immediately with Fetching set while a
// background refetch updates the entry. With no data at all it behaves like [Fetch].
func Query[T any](ctx context.Context, c *Cache, opts Options[T]) (Result[T], error) {
	if opts.Disabled {
		return opts.disabled(), nil
	}

	fetch := opts.fetcher()
	snap, fresh := c.prepare(opts.Key, opts.StaleTime, fetch)
	if fresh {
		return typed[T](snap), nil
	}
	if !snap.hasData {
		snap, err := c.load(ctx, opts.Key, fetch)
		return typed[T](snap), err
	}

	c.revalidate(opts.Key, fetch)
	snap.fetching = true
	snap.stale = true
	return typed[T](snap), nil
}

// Refetch ignores the fresh window and waits for a new network call. It backs "Try again".
func Refetch[T any](ctx context.Context, c *Cache, opts Options[T]) (Result[T], error) {
	if opts.Disabled {
		return opts.disabled(), nil
	}

	fetch := opts.fetcher()
	c.prepare(opts.Key, opts.StaleTime, fetch)
	snap, err := c.load(ctx, opts.Key, fetch)
	return typed[T](snap), err
}

// Peek returns the cached state for key without fetching.
func Peek[T any](c *Cache, key Key) Result[T] {
	return typed[T](c.peek(key))
}

func typed[T any](s snapshot) Result[T] {
	r := Result[T]{
		Err:       s.err,
		Fetching:  s.fetching,
		Stale:     s.stale,
		UpdatedAt: s.updatedAt,
	}
	if v, ok := s.data.(T); ok && s.hasData {
		r.Data = v
		r.HasData = true
	}

	switch {
	case s.err != nil:
		r.Status = StatusError
	case r.HasData:
		r.Status = StatusSuccess
	case s.fetching:
		r.Status = StatusLoading
	default:
		r.Status = StatusIdle
	}
	return r
}
