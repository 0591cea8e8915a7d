package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/btree"
)

type Action = func()

type timer struct {
	due    time.Time
	seq    uint64
	action Action
}

func byDue(a, b timer) bool {
	if a.due.Equal(b.due) {
		return a.seq < b.seq
	}
	return a.due.Before(b.due)
}

// PanicObserver is notified for every action that panicked during a drain.
type PanicObserver interface {
	ActionPanicked()
}

// Dispatcher is the only sanctioned path from foreign goroutines onto the
// main context. Schedule may be called from anywhere; DrainPending must only
// be called by the goroutine that owns the main context.
type Dispatcher struct {
	mu     sync.Mutex
	queue  []Action
	timers *btree.BTreeG[timer]
	seq    uint64

	draining atomic.Bool
	logger   *slog.Logger
	now      func() time.Time
	observer PanicObserver
}

type Option func(*Dispatcher)

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

func WithPanicObserver(o PanicObserver) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

func New(logger *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		timers: btree.NewBTreeG(byDue),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Schedule(action Action) {
	if action == nil {
		return
	}
	d.mu.Lock()
	d.queue = append(d.queue, action)
	d.mu.Unlock()
}

// ScheduleAfter queues action for the first drain that starts once delay has
// elapsed. Actions with the same due time keep their scheduling order.
func (d *Dispatcher) ScheduleAfter(delay time.Duration, action Action) {
	if action == nil {
		return
	}
	if delay <= 0 {
		d.Schedule(action)
		return
	}
	d.mu.Lock()
	d.seq++
	d.timers.Set(timer{due: d.now().Add(delay), seq: d.seq, action: action})
	d.mu.Unlock()
}

// Pending reports queued actions plus timers that have not fired yet.
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue) + d.timers.Len()
}

// InDrain is true while DrainPending is executing actions.
func (d *Dispatcher) InDrain() bool {
	return d.draining.Load()
}

// DrainPending runs every action queued before the call, in FIFO order.
// Actions scheduled while draining wait for the next call. Calling it from
// inside an action does nothing.
func (d *Dispatcher) DrainPending() int {
	if !d.draining.CompareAndSwap(false, true) {
		return 0
	}
	defer d.draining.Store(false)

	d.mu.Lock()
	now := d.now()
	for {
		next, ok := d.timers.Min()
		if !ok || next.due.After(now) {
			break
		}
		d.timers.PopMin()
		d.queue = append(d.queue, next.action)
	}
	batch := d.queue
	d.queue = nil
	d.mu.Unlock()

	for _, action := range batch {
		d.run(action)
	}
	return len(batch)
}

func (d *Dispatcher) run(action Action) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dispatched action panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			if d.observer != nil {
				d.observer.ActionPanicked()
			}
		}
	}()
	action()
}

// Run turns the calling goroutine into the main context and drains once per
// interval until ctx is done. onTick, when set, runs after every drain.
func (d *Dispatcher) Run(
	ctx context.Context,
	interval time.Duration,
	onTick func(),
) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.DrainPending()
			return ctx.Err()
		case <-ticker.C:
			d.DrainPending()
			if onTick != nil {
				onTick()
			}
		}
	}
}
