package service

import (
	"log/slog"
	"time"

	"github.com/arko-chat/nativekit/internal/bridge"
	"github.com/arko-chat/nativekit/internal/cache"
	"github.com/arko-chat/nativekit/internal/capture"
	"github.com/arko-chat/nativekit/internal/dispatch"
	"github.com/arko-chat/nativekit/internal/fallback"
	"github.com/arko-chat/nativekit/internal/metrics"
	"github.com/arko-chat/nativekit/internal/models"
)

const (
	CapabilityPopup   = "popup"
	CapabilityNetwork = "network"
	CapabilitySharing = "sharing"
)

type Deps struct {
	Registry   *bridge.Registry
	Dispatcher *dispatch.Dispatcher
	Frames     *dispatch.FrameSignal
	Capturer   capture.FrameCapturer
	Metrics    *metrics.Collector
	Logger     *slog.Logger

	// Screen sizes the simulated popup used when no native popup exists.
	Screen       fallback.Screen
	PopupOptions []fallback.PopupOption

	NetworkCacheTTL time.Duration
}

// Services is the context object handed to application code. Backends are
// picked once here and never change afterwards.
type Services struct {
	Dispatcher *dispatch.Dispatcher
	Frames     *dispatch.FrameSignal

	Popup   *PopupService
	Network *NetworkService
	Sharing *SharingService

	// FallbackPopup is set when the popup runs on the simulated dialog, so
	// the host can draw it and forward input.
	FallbackPopup *fallback.Popup
}

// New seals the registry and wires every service to its backend.
func New(deps Deps) *Services {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	registry := deps.Registry
	if registry == nil {
		registry = bridge.NewRegistry()
	}
	registry.Seal()

	d := deps.Dispatcher
	if d == nil {
		d = dispatch.New(logger, dispatch.WithPanicObserver(deps.Metrics))
	}
	frames := deps.Frames
	if frames == nil {
		frames = dispatch.NewFrameSignal(d)
	}

	svc := &Services{Dispatcher: d, Frames: frames}

	var nativePopup, simulatedPopup bridge.Strategy[models.PopupRequest, int]
	if backend, ok := registry.Popup(); ok {
		nativePopup = bridge.PopupStrategy(backend)
	} else {
		svc.FallbackPopup = fallback.NewPopup(deps.Screen, logger, deps.PopupOptions...)
		simulatedPopup = bridge.PopupStrategy(svc.FallbackPopup)
	}
	popupBridge := bridge.New(
		CapabilityPopup,
		nativePopup,
		simulatedPopup,
		d, logger, deps.Metrics,
	)
	svc.Popup = NewPopupService(
		NewBaseService(CapabilityPopup, d, deps.Metrics, logger),
		popupBridge,
	)

	var nativeSharing bridge.Strategy[models.SharePayload, models.ShareResult]
	if backend, ok := registry.Sharing(); ok {
		nativeSharing = bridge.SharingStrategy(backend)
	}
	sharingBridge := bridge.New(
		CapabilitySharing,
		nativeSharing,
		bridge.SharingStrategy(fallback.NewSharing(logger)),
		d, logger, deps.Metrics,
	)
	svc.Sharing = NewSharingService(
		NewBaseService(CapabilitySharing, d, deps.Metrics, logger),
		sharingBridge,
		frames,
		deps.Capturer,
	)

	var network bridge.NetworkBackend = fallback.NewNetwork(logger)
	kind := bridge.KindFallback
	if backend, ok := registry.Network(); ok {
		network = backend
		kind = bridge.KindNative
	}
	svc.Network = NewNetworkService(
		NewBaseService(CapabilityNetwork, d, deps.Metrics, logger),
		network,
		kind,
		cache.New[models.NetworkType](
			cache.WithTTL(deps.NetworkCacheTTL),
			cache.WithObserver(deps.Metrics),
		),
	)

	logger.Info("services ready",
		"popup", svc.Popup.Kind(),
		"network", svc.Network.Kind(),
		"sharing", svc.Sharing.Kind(),
	)
	return svc
}

// Shutdown releases native resources held by the services.
func (s *Services) Shutdown() {
	s.Network.Shutdown()
}
