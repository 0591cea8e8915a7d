package dispatch

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(opts ...Option) (*Dispatcher, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return New(logger, opts...), &buf
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestDrainRunsInOrder(t *testing.T) {
	d, _ := newTestDispatcher()
	var got []int
	for i := range 5 {
		d.Schedule(func() { got = append(got, i) })
	}

	assert.Equal(t, 5, d.Pending())
	assert.Equal(t, 5, d.DrainPending())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
	assert.Equal(t, 0, d.Pending())
}

func TestActionsScheduledDuringDrainWait(t *testing.T) {
	d, _ := newTestDispatcher()
	var got []string
	d.Schedule(func() {
		got = append(got, "first")
		d.Schedule(func() { got = append(got, "nested") })
	})
	d.Schedule(func() { got = append(got, "second") })

	require.Equal(t, 2, d.DrainPending())
	assert.Equal(t, []string{"first", "second"}, got)

	require.Equal(t, 1, d.DrainPending())
	assert.Equal(t, []string{"first", "second", "nested"}, got)
}

func TestNestedDrainIsNoop(t *testing.T) {
	d, _ := newTestDispatcher()
	nested := -1
	d.Schedule(func() {
		assert.True(t, d.InDrain())
		nested = d.DrainPending()
	})
	d.Schedule(func() {})

	assert.Equal(t, 2, d.DrainPending())
	assert.Equal(t, 0, nested)
	assert.False(t, d.InDrain())
}

type panicCounter struct{ n int }

func (p *panicCounter) ActionPanicked() { p.n++ }

func TestPanickingActionDoesNotStopDrain(t *testing.T) {
	counter := &panicCounter{}
	d, logs := newTestDispatcher(WithPanicObserver(counter))
	ran := false
	d.Schedule(func() { panic("boom") })
	d.Schedule(func() { ran = true })

	assert.Equal(t, 2, d.DrainPending())
	assert.True(t, ran)
	assert.Equal(t, 1, counter.n)
	assert.Contains(t, logs.String(), "dispatched action panicked")
	assert.Contains(t, logs.String(), "boom")
}

func TestScheduleFromManyGoroutines(t *testing.T) {
	d, _ := newTestDispatcher()
	const producers = 8
	const perProducer = 100

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perProducer {
				d.Schedule(func() {})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, producers*perProducer, d.DrainPending())
}

func TestScheduleAfterWaitsForDueTime(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	d, _ := newTestDispatcher(WithClock(clock.Now))

	var got []string
	d.ScheduleAfter(2*time.Second, func() { got = append(got, "late") })
	d.ScheduleAfter(time.Second, func() { got = append(got, "early") })
	d.ScheduleAfter(time.Second, func() { got = append(got, "early-2") })
	d.Schedule(func() { got = append(got, "now") })

	assert.Equal(t, 1, d.DrainPending())
	assert.Equal(t, []string{"now"}, got)
	assert.Equal(t, 3, d.Pending())

	clock.Advance(time.Second)
	assert.Equal(t, 2, d.DrainPending())
	assert.Equal(t, []string{"now", "early", "early-2"}, got)

	clock.Advance(time.Second)
	assert.Equal(t, 1, d.DrainPending())
	assert.Equal(t, []string{"now", "early", "early-2", "late"}, got)
}

func TestScheduleAfterNonPositiveDelayQueuesImmediately(t *testing.T) {
	d, _ := newTestDispatcher()
	ran := false
	d.ScheduleAfter(0, func() { ran = true })

	d.DrainPending()
	assert.True(t, ran)
}

func TestRunDrainsUntilCancelled(t *testing.T) {
	d, _ := newTestDispatcher()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	d.Schedule(func() {
		close(done)
		cancel()
	})

	err := d.Run(ctx, time.Millisecond, nil)
	assert.ErrorIs(t, err, context.Canceled)
	select {
	case <-done:
	default:
		t.Fatal("scheduled action did not run")
	}
}

func TestFrameSignalRunsWaitersOnce(t *testing.T) {
	d, _ := newTestDispatcher()
	frames := NewFrameSignal(d)

	calls := 0
	frames.AwaitEndOfFrame(func() {
		calls++
		frames.AwaitEndOfFrame(func() { calls += 10 })
	})

	assert.Equal(t, 1, frames.Waiting())
	assert.Equal(t, 1, frames.SignalEndOfFrame())
	assert.Equal(t, 1, calls)

	assert.Equal(t, 1, frames.SignalEndOfFrame())
	assert.Equal(t, 11, calls)
	assert.Equal(t, 0, frames.SignalEndOfFrame())
}
