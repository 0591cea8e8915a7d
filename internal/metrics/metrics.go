package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "nativekit"

type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeRejected Outcome = "rejected"
	OutcomeInvalid  Outcome = "invalid"
)

// Collector owns its own registry so several can coexist in one process.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	requests       *prometheus.CounterVec
	callbacks      *prometheus.CounterVec
	duplicates     *prometheus.CounterVec
	panics         prometheus.Counter
	cacheReads     *prometheus.CounterVec
	pendingActions prometheus.Gauge
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Capability requests by outcome",
		}, []string{"capability", "outcome"}),
		callbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "callbacks_total",
			Help:      "Backend callbacks delivered to the main context",
		}, []string{"capability"}),
		duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "duplicate_callbacks_total",
			Help:      "Backend callbacks dropped because the request was already answered",
		}, []string{"capability"}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dispatcher_panics_total",
			Help:      "Dispatched actions that panicked",
		}),
		cacheReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_reads_total",
			Help:      "Result cache reads by result",
		}, []string{"result"}),
		pendingActions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dispatcher_pending_actions",
			Help:      "Actions waiting for the next drain",
		}),
	}

	c.registry.MustRegister(
		c.requests,
		c.callbacks,
		c.duplicates,
		c.panics,
		c.cacheReads,
		c.pendingActions,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) RecordRequest(capability string, outcome Outcome) {
	if c == nil {
		return
	}
	c.requests.WithLabelValues(capability, string(outcome)).Inc()
}

func (c *Collector) CallbackDelivered(capability string) {
	if c == nil {
		return
	}
	c.callbacks.WithLabelValues(capability).Inc()
}

func (c *Collector) CallbackDuplicated(capability string) {
	if c == nil {
		return
	}
	c.duplicates.WithLabelValues(capability).Inc()
}

func (c *Collector) ActionPanicked() {
	if c == nil {
		return
	}
	c.panics.Inc()
}

func (c *Collector) CacheRead(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheReads.WithLabelValues(result).Inc()
}

func (c *Collector) SetPending(n int) {
	if c == nil {
		return
	}
	c.pendingActions.Set(float64(n))
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
