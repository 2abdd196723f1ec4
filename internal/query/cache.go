package query

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/resonate/internal/shared"
	"golang.org/x/sync/singleflight"
)

// Status is the lifecycle state of one cached read.
type Status int

const (
	// StatusDisabled means a required parameter is absent; no request is made.
	StatusDisabled Status = iota
	// StatusIdle means the key has never been fetched.
	StatusIdle
	// StatusLoading means the first fetch is in flight and there is no data to show.
	StatusLoading
	// StatusSuccess means data is present. It may be stale, and may be refetching in the background.
	StatusSuccess
	// StatusError means the last fetch failed. Earlier data, if any, is still present.
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusDisabled:
		return "disabled"
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// EventType tells subscribers what happened to a key.
type EventType int

const (
	EventFetching EventType = iota
	EventUpdated
	EventFailed
	EventInvalidated
	EventRemoved
)

func (t EventType) String() string {
	switch t {
	case EventFetching:
		return "fetching"
	case EventUpdated:
		return "updated"
	case EventFailed:
		return "failed"
	case EventInvalidated:
		return "invalidated"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event is delivered to [Cache.Subscribe] listeners after the cache changes.
type Event struct {
	Key  Key
	Type EventType
}

type fetchFunc func(ctx context.Context) (any, error)

type entry struct {
	key         Key
	data        any
	hasData     bool
	err         error
	updatedAt   time.Time
	staleTime   time.Duration
	invalidated bool
	inflight    int
	// queued counts background refetches started but not yet finished.
	queued  int
	settled []chan struct{}
	// generation changes on every write that must win over responses already in flight.
	// Values come from a cache-wide sequence so a recreated key never reuses one.
	generation uint64
	fetch      fetchFunc
}

func (e *entry) fresh(now time.Time) bool {
	return e.hasData && !e.invalidated && now.Sub(e.updatedAt) < e.staleTime
}

// outcome is what one shared network call produced.
type outcome struct {
	data      any
	err       error
	committed bool
}

// Cache is a keyed store of read results with per-entry fresh windows and in-flight de-duplication.
//
// Reads go through the generic [Fetch], [Query] and [Refetch] functions; writes through
// [Cache.SetData], [Cache.Invalidate], [Cache.Remove] and [Cache.Clear].
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	seq     uint64
	group   singleflight.Group
	now     func() time.Time
	logger  *log.Logger

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int

	background sync.WaitGroup
}

// NewCache creates an empty [Cache].
func NewCache(logger *log.Logger) *Cache {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Cache{
		entries: map[string]*entry{},
		now:     time.Now,
		logger:  shared.WithLogger(logger, "component", "cache"),
		subs:    map[int]func(Event){},
	}
}

// Subscribe registers fn for every subsequent [Event] and returns a function that unregisters it.
//
// fn runs on the goroutine that changed the cache, outside the cache lock.
func (c *Cache) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Cache) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	c.subMu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

// SetData replaces the data for key with a server-confirmed value and marks it fresh.
//
// Responses already in flight for key are dropped when they land.
func (c *Cache) SetData(key Key, data any) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.data = data
	e.hasData = true
	e.err = nil
	e.updatedAt = c.now()
	e.invalidated = false
	c.bumpLocked(e)
	c.mu.Unlock()

	c.logger.Debug("cache write", "key", key.String())
	c.emit(Event{Key: key, Type: EventUpdated})
}

// Invalidate marks every entry matching one of prefixes as stale so its next read refetches.
// Data stays visible until the refetch lands. It returns how many entries matched.
func (c *Cache) Invalidate(prefixes ...Key) int {
	var events []Event

	c.mu.Lock()
	for _, e := range c.entries {
		if !matchesAny(e.key, prefixes) {
			continue
		}
		e.invalidated = true
		c.bumpLocked(e)
		events = append(events, Event{Key: e.key, Type: EventInvalidated})
	}
	c.mu.Unlock()

	for _, ev := range events {
		c.logger.Debug("cache invalidate", "key", ev.Key.String())
	}
	c.emit(events...)
	return len(events)
}

// Remove drops every entry matching one of prefixes.
func (c *Cache) Remove(prefixes ...Key) int {
	var events []Event

	c.mu.Lock()
	for id, e := range c.entries {
		if !matchesAny(e.key, prefixes) {
			continue
		}
		c.bumpLocked(e)
		c.releaseLocked(e)
		delete(c.entries, id)
		events = append(events, Event{Key: e.key, Type: EventRemoved})
	}
	c.mu.Unlock()

	c.emit(events...)
	return len(events)
}

// Clear drops every entry. Auth changes use it so no data leaks between users.
func (c *Cache) Clear() {
	c.mu.Lock()
	events := make([]Event, 0, len(c.entries))
	for _, e := range c.entries {
		c.bumpLocked(e)
		c.releaseLocked(e)
		events = append(events, Event{Key: e.key, Type: EventRemoved})
	}
	c.entries = map[string]*entry{}
	c.mu.Unlock()

	c.logger.Debug("cache cleared", "entries", len(events))
	c.emit(events...)
}

// Keys lists the keys currently held.
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]Key, 0, len(c.entries))
	for _, e := range c.entries {
		keys = append(keys, e.key)
	}
	return keys
}

// Wait blocks until every background refetch started by [Query] has finished.
//
// It is meant for shutdown and tests. Code that waits for one key while other reads keep running
// uses [Cache.Settled].
func (c *Cache) Wait() {
	c.background.Wait()
}

// Settled returns a channel that is closed once no fetch for key is in flight or queued. It is
// already closed when key is idle or unknown, and is closed when the entry is removed.
func (c *Cache) Settled(key Key) <-chan struct{} {
	ch := make(chan struct{})

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok || e.idle() {
		close(ch)
		return ch
	}
	e.settled = append(e.settled, ch)
	return ch
}

func (e *entry) idle() bool {
	return e.inflight == 0 && e.queued == 0
}

// releaseLocked closes the settled channels of e. c.mu must be held.
func (c *Cache) releaseLocked(e *entry) {
	for _, ch := range e.settled {
		close(ch)
	}
	e.settled = nil
}

// RefetchKey re-runs the fetcher last used for key, ignoring freshness. It is the "Try again" action
// for callers that only hold the key.
func (c *Cache) RefetchKey(ctx context.Context, key Key) error {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	var fetch fetchFunc
	if ok {
		fetch = e.fetch
	}
	c.mu.Unlock()

	if fetch == nil {
		return nil
	}
	_, err := c.load(ctx, key, fetch)
	return err
}

func matchesAny(key Key, prefixes []Key) bool {
	for _, p := range prefixes {
		if key.HasPrefix(p) {
			return true
		}
	}
	return false
}

// entryLocked returns the entry for key, creating it. c.mu must be held.
func (c *Cache) entryLocked(key Key) *entry {
	id := key.String()
	e, ok := c.entries[id]
	if !ok {
		e = &entry{key: append(Key(nil), key...)}
		c.bumpLocked(e)
		c.entries[id] = e
	}
	return e
}

func (c *Cache) bumpLocked(e *entry) {
	c.seq++
	e.generation = c.seq
}

// prepare registers fetch and staleTime for key and reports whether its data is fresh.
func (c *Cache) prepare(key Key, staleTime time.Duration, fetch fetchFunc) (snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.entryLocked(key)
	e.staleTime = staleTime
	e.fetch = fetch
	return c.snapshotLocked(e), e.fresh(c.now())
}

// load performs (or joins) the network call for key's current generation and waits for it
// unless ctx ends first.
func (c *Cache) load(ctx context.Context, key Key, fetch fetchFunc) (snapshot, error) {
	if err := ctx.Err(); err != nil {
		return c.peek(key), err
	}
	id := key.String()

	c.mu.Lock()
	e := c.entryLocked(key)
	gen := e.generation
	c.mu.Unlock()

	flight := id + "@" + strconv.FormatUint(gen, 10)
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flight, func() (any, error) {
		return c.run(detached, id, e, gen, fetch), nil
	})

	select {
	case <-ctx.Done():
		return c.peek(key), ctx.Err()
	case res := <-ch:
		out := res.Val.(*outcome)
		if res.Shared {
			c.logger.Debug("joined in-flight request", "key", id)
		}

		snap := c.peek(key)
		if !out.committed && !snap.hasData {
			snap.data = out.data
			snap.hasData = out.err == nil
			snap.stale = true
		}
		return snap, out.err
	}
}

// run executes fetch once for every caller sharing the flight and commits the result only if
// the entry is still the one it was started for, at the same generation.
func (c *Cache) run(ctx context.Context, id string, e *entry, gen uint64, fetch fetchFunc) *outcome {
	c.mu.Lock()
	e.inflight++
	c.mu.Unlock()
	c.emit(Event{Key: e.key, Type: EventFetching})

	data, err := fetch(ctx)

	c.mu.Lock()
	e.inflight--
	if e.idle() {
		c.releaseLocked(e)
	}
	current := c.entries[id] == e && e.generation == gen
	if current {
		if err != nil {
			e.err = err
		} else {
			e.data = data
			e.hasData = true
			e.err = nil
			e.updatedAt = c.now()
			e.invalidated = false
		}
	}
	c.mu.Unlock()

	switch {
	case !current:
		c.logger.Debug("dropping out-of-date response", "key", id)
	case err != nil:
		c.logger.Debug("fetch failed", "key", id, "error", err)
		c.emit(Event{Key: e.key, Type: EventFailed})
	default:
		c.emit(Event{Key: e.key, Type: EventUpdated})
	}

	return &outcome{data: data, err: err, committed: current}
}

// revalidate starts a background refetch for key and returns immediately.
func (c *Cache) revalidate(key Key, fetch fetchFunc) {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.queued++
	c.mu.Unlock()

	c.background.Add(1)
	go func() {
		defer c.background.Done()
		defer func() {
			c.mu.Lock()
			e.queued--
			if e.idle() {
				c.releaseLocked(e)
			}
			c.mu.Unlock()
		}()
		if _, err := c.load(context.Background(), key, fetch); err != nil {
			c.logger.Debug("background refetch failed", "key", key.String(), "error", err)
		}
	}()
}

// snapshot is an untyped copy of one entry's state.
type snapshot struct {
	data      any
	hasData   bool
	err       error
	updatedAt time.Time
	fetching  bool
	stale     bool
}

func (c *Cache) peek(key Key) snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key.String()]
	if !ok {
		return snapshot{}
	}
	return c.snapshotLocked(e)
}

func (c *Cache) snapshotLocked(e *entry) snapshot {
	return snapshot{
		data:      e.data,
		hasData:   e.hasData,
		err:       e.err,
		updatedAt: e.updatedAt,
		fetching:  !e.idle(),
		stale:     e.hasData && !e.fresh(c.now()),
	}
}
