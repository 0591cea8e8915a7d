package bridge

import (
	"log/slog"
	"sync/atomic"
)

type Kind string

const (
	KindNative   Kind = "native"
	KindFallback Kind = "fallback"
)

// Scheduler queues work onto the main context.
type Scheduler interface {
	Schedule(action func())
}

type Strategy[Req, Res any] interface {
	// Invoke starts the request and calls deliver exactly once, on any
	// goroutine, possibly before Invoke returns.
	Invoke(req Req, deliver func(Res))
}

type StrategyFunc[Req, Res any] func(req Req, deliver func(Res))

func (f StrategyFunc[Req, Res]) Invoke(req Req, deliver func(Res)) {
	f(req, deliver)
}

// Observer is told about deliveries the bridge sees.
type Observer interface {
	CallbackDelivered(capability string)
	CallbackDuplicated(capability string)
}

// Bridge hands requests to the strategy chosen at construction and runs the
// caller's continuation on the main context once the strategy delivers.
// Callers cannot tell which strategy is active from the call contract.
type Bridge[Req, Res any] struct {
	name      string
	kind      Kind
	strategy  Strategy[Req, Res]
	scheduler Scheduler
	logger    *slog.Logger
	observer  Observer
}

func New[Req, Res any](
	name string,
	native Strategy[Req, Res],
	fallback Strategy[Req, Res],
	scheduler Scheduler,
	logger *slog.Logger,
	observer Observer,
) *Bridge[Req, Res] {
	b := &Bridge[Req, Res]{
		name:      name,
		kind:      KindNative,
		strategy:  native,
		scheduler: scheduler,
		logger:    logger.With("capability", name),
		observer:  observer,
	}
	if native == nil {
		b.kind = KindFallback
		b.strategy = fallback
	}
	b.logger.Debug("bridge strategy selected", "kind", b.kind)
	return b
}

func (b *Bridge[Req, Res]) Name() string { return b.name }

func (b *Bridge[Req, Res]) Kind() Kind { return b.kind }

// Call never runs continuation on the calling stack or on the delivering
// goroutine. A strategy that never delivers leaves the continuation pending
// forever; there is no timeout.
func (b *Bridge[Req, Res]) Call(req Req, continuation func(Res)) {
	var delivered atomic.Bool
	b.strategy.Invoke(req, func(res Res) {
		if !delivered.CompareAndSwap(false, true) {
			b.logger.Warn("duplicate native callback dropped")
			if b.observer != nil {
				b.observer.CallbackDuplicated(b.name)
			}
			return
		}
		if b.observer != nil {
			b.observer.CallbackDelivered(b.name)
		}
		b.scheduler.Schedule(func() {
			if continuation != nil {
				continuation(res)
			}
		})
	})
}

// Forward wraps a push-notification handler so every invocation is queued
// onto the main context instead of running on the notifying goroutine.
func Forward[T any](scheduler Scheduler, handler func(T)) func(T) {
	return func(v T) {
		scheduler.Schedule(func() {
			handler(v)
		})
	}
}
