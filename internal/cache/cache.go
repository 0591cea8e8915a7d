package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const queryKey = "query"

type Entry[T any] struct {
	Value     T
	Fresh     bool
	FetchedAt time.Time
}

// Observer sees every read outcome.
type Observer interface {
	CacheRead(hit bool)
}

// ResultCache holds the last known value of a polled quantity. Reads are
// served from the cache until it is forced, invalidated or expired.
type ResultCache[T any] struct {
	mu    sync.Mutex
	entry *Entry[T]
	ttl   time.Duration
	now   func() time.Time
	sfg   singleflight.Group

	observer Observer
}

type Option func(*options)

type options struct {
	ttl      time.Duration
	now      func() time.Time
	observer Observer
}

// WithTTL makes stored values stale after d. Zero disables expiry.
func WithTTL(d time.Duration) Option {
	return func(o *options) {
		o.ttl = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

func New[T any](opts ...Option) *ResultCache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &ResultCache[T]{
		ttl:      o.ttl,
		now:      o.now,
		observer: o.observer,
	}
}

// Read returns the stored value unless forceRefresh is set or the value is
// missing, invalidated or expired; then query runs and its result is stored
// as fresh. Concurrent readers that need a query share one call.
func (c *ResultCache[T]) Read(forceRefresh bool, query func() T) T {
	if !forceRefresh {
		if v, ok := c.valid(); ok {
			c.observe(true)
			return v
		}
	}
	c.observe(false)

	v, _, _ := c.sfg.Do(queryKey, func() (any, error) {
		if !forceRefresh {
			if v, ok := c.valid(); ok {
				return v, nil
			}
		}
		res := query()
		c.Store(res)
		return res, nil
	})
	return v.(T)
}

// Store records value as fresh without querying. Used when the source pushes
// a new value on its own.
func (c *ResultCache[T]) Store(value T) {
	c.mu.Lock()
	c.entry = &Entry[T]{Value: value, Fresh: true, FetchedAt: c.now()}
	c.mu.Unlock()
}

// Invalidate marks the stored value stale. The value itself stays
// inspectable through Peek until the next query overwrites it.
func (c *ResultCache[T]) Invalidate() {
	c.mu.Lock()
	if c.entry != nil {
		c.entry.Fresh = false
	}
	c.mu.Unlock()
}

// Peek reports the stored value and whether a read would use it, without
// ever querying. ok is false when nothing was stored yet.
func (c *ResultCache[T]) Peek() (value T, fresh bool, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil {
		return value, false, false
	}
	return c.entry.Value, c.isFresh(c.entry), true
}

func (c *ResultCache[T]) valid() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entry == nil || !c.isFresh(c.entry) {
		var zero T
		return zero, false
	}
	return c.entry.Value, true
}

func (c *ResultCache[T]) isFresh(e *Entry[T]) bool {
	if !e.Fresh {
		return false
	}
	return c.ttl <= 0 || c.now().Sub(e.FetchedAt) <= c.ttl
}

func (c *ResultCache[T]) observe(hit bool) {
	if c.observer != nil {
		c.observer.CacheRead(hit)
	}
}
