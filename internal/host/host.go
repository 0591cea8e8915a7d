package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/arko-chat/nativekit/internal/bridge"
	"github.com/arko-chat/nativekit/internal/capture"
	"github.com/arko-chat/nativekit/internal/config"
	"github.com/arko-chat/nativekit/internal/dispatch"
	"github.com/arko-chat/nativekit/internal/fallback"
	"github.com/arko-chat/nativekit/internal/ffi"
	"github.com/arko-chat/nativekit/internal/metrics"
	"github.com/arko-chat/nativekit/internal/prefs"
	"github.com/arko-chat/nativekit/internal/rating"
	"github.com/arko-chat/nativekit/internal/service"
)

type Options struct {
	Config *config.Config
	Logger *slog.Logger

	// Registry may already hold backends registered by an embedding app.
	// Capabilities it lacks are filled from Config.NativeLibPath, then from
	// the fallbacks.
	Registry *bridge.Registry
	Capturer capture.FrameCapturer

	Screen       fallback.Screen
	PopupOptions []fallback.PopupOption

	// Prefs overrides the store named in the config.
	Prefs prefs.Store
	// OpenURL overrides how the rating policy opens the store page.
	OpenURL func(url string) error
}

// Host owns everything a process embedding the bridge needs and drives the
// main context.
type Host struct {
	Config   *config.Config
	Logger   *slog.Logger
	Metrics  *metrics.Collector
	Services *service.Services
	Prefs    prefs.Store
	Rating   *rating.Policy

	lib *ffi.Library
}

func New(opts Options) (*Host, error) {
	cfg := opts.Config
	if cfg == nil {
		def := config.Default("")
		cfg = &def
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	h := &Host{
		Config:  cfg,
		Logger:  logger,
		Metrics: metrics.New(),
	}

	registry := opts.Registry
	if registry == nil {
		registry = bridge.NewRegistry()
	}
	if cfg.NativeLibPath != "" {
		if err := h.loadLibrary(registry); err != nil {
			return nil, err
		}
	}

	store := opts.Prefs
	if store == nil {
		var err error
		store, err = prefs.Open(cfg.PrefsBackend, cfg.PrefsPath)
		if err != nil {
			h.closeLibrary()
			return nil, err
		}
	}
	h.Prefs = store

	d := dispatch.New(logger, dispatch.WithPanicObserver(h.Metrics))
	h.Services = service.New(service.Deps{
		Registry:        registry,
		Dispatcher:      d,
		Capturer:        opts.Capturer,
		Metrics:         h.Metrics,
		Logger:          logger,
		Screen:          opts.Screen,
		PopupOptions:    opts.PopupOptions,
		NetworkCacheTTL: cfg.NetworkCacheTTL.Duration,
	})
	h.Services.Network.SetCachingEnabled(cfg.NetworkCaching)

	var ratingOpts []rating.Option
	if opts.OpenURL != nil {
		ratingOpts = append(ratingOpts, rating.WithURLOpener(opts.OpenURL))
	}
	h.Rating = rating.New(store, h.Services.Popup, d, RatingOptions(cfg.Rating), logger, ratingOpts...)

	return h, nil
}

func RatingOptions(r config.Rating) rating.Options {
	opts := rating.DefaultOptions()
	if r.AppName != "" {
		opts.AppName = r.AppName
	}
	opts.StoreURL = r.StoreURL
	if r.FirstAfterMinutes > 0 {
		opts.FirstAfter = time.Duration(r.FirstAfterMinutes) * time.Minute
	}
	if r.AgainAfterMinutes > 0 {
		opts.AgainAfter = time.Duration(r.AgainAfterMinutes) * time.Minute
	}
	return opts
}

func (h *Host) loadLibrary(registry *bridge.Registry) error {
	lib, err := ffi.Load(h.Config.NativeLibPath, h.Logger)
	if errors.Is(err, ffi.ErrUnsupported) {
		h.Logger.Warn("native library configured but not supported here, using fallbacks",
			"path", h.Config.NativeLibPath)
		return nil
	}
	if err != nil {
		return err
	}
	if err := lib.RegisterInto(registry); err != nil {
		_ = lib.Close()
		return fmt.Errorf("register native backends: %w", err)
	}
	h.lib = lib
	return nil
}

func (h *Host) closeLibrary() {
	if h.lib != nil {
		if err := h.lib.Close(); err != nil {
			h.Logger.Warn("closing native library failed", "err", err)
		}
		h.lib = nil
	}
}

// Schedule runs fn on the main context. App code outside the main context
// goes through here.
func (h *Host) Schedule(fn func()) {
	h.Services.Dispatcher.Schedule(fn)
}

// Tick drains the dispatcher and signals the end of the frame. Hosts with
// their own frame loop call it once per frame from the main context.
func (h *Host) Tick() {
	h.Services.Dispatcher.DrainPending()
	h.EndOfFrame()
}

func (h *Host) EndOfFrame() {
	h.Services.Frames.SignalEndOfFrame()
	h.Metrics.SetPending(h.Services.Dispatcher.Pending())
}

// Run makes the calling goroutine the main context until ctx is done. When
// a metrics address is configured it is served alongside.
func (h *Host) Run(ctx context.Context) error {
	interval := h.Config.TickInterval.Duration
	if interval <= 0 {
		interval = 16 * time.Millisecond
	}

	g, ctx := errgroup.WithContext(ctx)
	if addr := h.Config.MetricsAddr; addr != "" {
		g.Go(func() error {
			h.Logger.Info("serving metrics", "addr", addr)
			return h.Metrics.Serve(ctx, addr)
		})
	}
	g.Go(func() error {
		err := h.Services.Dispatcher.Run(ctx, interval, h.EndOfFrame)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}

func (h *Host) Close() error {
	h.Services.Shutdown()
	err := h.Prefs.Close()
	h.closeLibrary()
	return err
}
