package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	calls atomic.Int32
	value atomic.Int32
}

func (c *counter) query() int {
	c.calls.Add(1)
	return int(c.value.Load())
}

func TestFirstReadQueries(t *testing.T) {
	c := New[int]()
	q := &counter{}
	q.value.Store(7)

	_, _, ok := c.Peek()
	assert.False(t, ok)

	assert.Equal(t, 7, c.Read(false, q.query))
	assert.Equal(t, int32(1), q.calls.Load())
}

func TestReadsBetweenRefreshesQueryOnce(t *testing.T) {
	c := New[int]()
	q := &counter{}

	for range 10 {
		c.Read(false, q.query)
	}
	assert.Equal(t, int32(1), q.calls.Load())

	c.Read(true, q.query)
	assert.Equal(t, int32(2), q.calls.Load())
	for range 10 {
		c.Read(false, q.query)
	}
	assert.Equal(t, int32(2), q.calls.Load())

	c.Invalidate()
	for range 10 {
		c.Read(false, q.query)
	}
	assert.Equal(t, int32(3), q.calls.Load())
}

func TestInvalidateKeepsValueInspectable(t *testing.T) {
	c := New[string]()
	c.Read(false, func() string { return "old" })

	v, fresh, ok := c.Peek()
	require.True(t, ok)
	assert.True(t, fresh)
	assert.Equal(t, "old", v)

	c.Invalidate()
	v, fresh, ok = c.Peek()
	require.True(t, ok)
	assert.False(t, fresh)
	assert.Equal(t, "old", v)

	assert.Equal(t, "new", c.Read(false, func() string { return "new" }))
	_, fresh, _ = c.Peek()
	assert.True(t, fresh)
}

func TestStoreCountsAsFresh(t *testing.T) {
	c := New[int]()
	c.Store(10)

	called := false
	got := c.Read(false, func() int {
		called = true
		return 0
	})
	assert.Equal(t, 10, got)
	assert.False(t, called)
}

func TestTTLExpiry(t *testing.T) {
	now := time.Unix(0, 0)
	c := New[int](WithTTL(time.Second), WithClock(func() time.Time { return now }))
	q := &counter{}

	c.Read(false, q.query)
	now = now.Add(500 * time.Millisecond)
	c.Read(false, q.query)
	assert.Equal(t, int32(1), q.calls.Load())

	now = now.Add(time.Second)
	_, fresh, ok := c.Peek()
	assert.True(t, ok)
	assert.False(t, fresh)

	c.Read(false, q.query)
	assert.Equal(t, int32(2), q.calls.Load())
}

type hitCounter struct {
	mu     sync.Mutex
	hits   int
	misses int
}

func (h *hitCounter) CacheRead(hit bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if hit {
		h.hits++
	} else {
		h.misses++
	}
}

func TestObserverSeesHitsAndMisses(t *testing.T) {
	obs := &hitCounter{}
	c := New[int](WithObserver(obs))
	c.Read(false, func() int { return 1 })
	c.Read(false, func() int { return 1 })
	c.Read(true, func() int { return 1 })

	assert.Equal(t, 1, obs.hits)
	assert.Equal(t, 2, obs.misses)
}

func TestConcurrentReadersShareQuery(t *testing.T) {
	c := New[int]()
	release := make(chan struct{})
	var calls atomic.Int32
	query := func() int {
		calls.Add(1)
		<-release
		return 3
	}

	var wg sync.WaitGroup
	results := make([]int, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.Read(false, query)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, 3, r)
	}
	assert.Equal(t, int32(1), calls.Load())
}
