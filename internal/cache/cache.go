// Package cache is a key-addressed store for fetched collections and records,
// with freshness metadata, invalidation, and interval-based passive refresh.
//
// It deduplicates and time-bounds reads: concurrent reads of one key share a
// single underlying fetch, a fresh value is served without network traffic,
// and a stale value is served immediately while a background refresh runs.
// Mutating callers use Write/Cancel to apply optimistic values without racing
// against late fetch results.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/akaliniv/tetatet/internal/logging"
)

// ErrNoValue is returned when a read is disabled (or the cache is consulted
// without a fetcher) and no value is cached for the key.
var ErrNoValue = errors.New("no cached value")

// FetchFunc loads the authoritative value for a key. The context is cancelled
// when the fetch is aborted via Cancel or Clear.
type FetchFunc func(ctx context.Context) (any, error)

// Options tune one read or subscription.
type Options struct {
	// StaleAfter is the staleness window. A zero window means a cached value
	// is considered stale as soon as it lands, so every read also triggers a
	// background refresh.
	StaleAfter time.Duration

	// RefetchEvery is the passive refresh interval used by Subscribe,
	// approximating near-real-time updates for keys without a push channel.
	RefetchEvery time.Duration

	// Disabled suppresses fetching entirely; reads return only what is
	// already cached.
	Disabled bool
}

type entry struct {
	value    any
	hasValue bool

	fetchedAt   time.Time
	staleAfter  time.Duration
	invalidated bool

	// gen is bumped by Write, Cancel, and Invalidate. A fetch records gen when
	// it starts and its result is discarded if gen moved, so a cancelled or
	// superseded fetch never overwrites newer state.
	gen uint64

	cancel context.CancelFunc
}

// Cache is the process-wide entity store. It is owned by the composition root
// and injected into consumers; all mutation goes through Read/Write/Invalidate.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]*entry
	group   singleflight.Group
	log     logging.Logger
	now     func() time.Time
}

func New(log logging.Logger) *Cache {
	return &Cache{
		entries: make(map[Key]*entry),
		log:     log,
		now:     time.Now,
	}
}

// Read returns the value for key.
//
//   - Cached, fresh, not invalidated: returned as-is.
//   - Cached but stale: returned immediately; a background refresh is kicked.
//   - Missing or invalidated: blocks until the (shared) fetch resolves.
//   - Disabled: returns the cached value if any, else ErrNoValue.
func (c *Cache) Read(ctx context.Context, key Key, fetch FetchFunc, opts Options) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]

	if opts.Disabled {
		defer c.mu.Unlock()
		if ok && e.hasValue {
			return e.value, nil
		}
		return nil, ErrNoValue
	}

	if ok && e.hasValue && !e.invalidated {
		value := e.value
		stale := c.now().Sub(e.fetchedAt) >= e.staleAfter
		c.mu.Unlock()
		if stale {
			go c.refresh(key, fetch, opts)
		}
		return value, nil
	}
	c.mu.Unlock()

	return c.doFetch(key, fetch, opts)
}

// Get returns the cached value without triggering any fetch.
func (c *Cache) Get(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.hasValue {
		return e.value, true
	}
	return nil, false
}

// Write replaces the cached value synchronously, without a network call.
// Used for optimistic application and rollback. Any in-flight fetch result
// for the key is superseded.
func (c *Cache) Write(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.ensure(key)
	e.gen++
	e.value = value
	e.hasValue = true
	e.fetchedAt = c.now()
	e.invalidated = false
}

// Invalidate marks the entry stale so the next read refetches. A fetch
// already in flight is superseded rather than trusted, since its response
// may predate the event that caused the invalidation.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.gen++
		e.invalidated = true
	}
	c.group.Forget(key.String())
}

// Cancel aborts an in-flight fetch for key and guarantees its late result
// will not land. Mutations call this before applying an optimistic write.
func (c *Cache) Cancel(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		e.gen++
		if e.cancel != nil {
			e.cancel()
			e.cancel = nil
		}
	}
	c.group.Forget(key.String())
}

// Drop evicts the entry entirely. Rollback uses it when the mutation target
// had no cache entry before the mutation began.
func (c *Cache) Drop(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		if e.cancel != nil {
			e.cancel()
		}
		delete(c.entries, key)
	}
	c.group.Forget(key.String())
}

// Clear evicts everything and aborts all in-flight fetches, e.g. on logout.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, e := range c.entries {
		if e.cancel != nil {
			e.cancel()
		}
		c.group.Forget(key.String())
	}
	c.entries = make(map[Key]*entry)
}

// ValueOf returns the cached value for key asserted to T.
func ValueOf[T any](c *Cache, key Key) (T, bool) {
	var zero T
	v, ok := c.Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	if !ok {
		return zero, false
	}
	return t, true
}

// ensure returns the entry for key, creating a placeholder when absent.
// Caller must hold c.mu.
func (c *Cache) ensure(key Key) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// doFetch runs the fetcher for key, shared across concurrent callers: a read
// arriving while a fetch is in flight attaches to it instead of issuing a
// duplicate request.
func (c *Cache) doFetch(key Key, fetch FetchFunc, opts Options) (any, error) {
	v, err, _ := c.group.Do(key.String(), func() (any, error) {
		fctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		c.mu.Lock()
		e := c.ensure(key)
		e.cancel = cancel
		gen := e.gen
		c.mu.Unlock()

		value, err := fetch(fctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		e, ok := c.entries[key]
		if !ok || e.gen != gen {
			// cancelled or superseded while in flight; do not land the result
			if err != nil {
				return nil, err
			}
			return value, nil
		}
		e.cancel = nil
		if err != nil {
			return nil, err
		}
		e.value = value
		e.hasValue = true
		e.fetchedAt = c.now()
		e.staleAfter = opts.StaleAfter
		e.invalidated = false
		return value, nil
	})
	return v, err
}

// refresh runs a background fetch for a stale key. Errors keep the stale
// value in place; consumers keep rendering the last known state.
func (c *Cache) refresh(key Key, fetch FetchFunc, opts Options) {
	if _, err := c.doFetch(key, fetch, opts); err != nil {
		if c.log != nil {
			c.log.Warn(context.Background(), "background refresh failed", "key", key.String(), "error", err)
		}
	}
}
