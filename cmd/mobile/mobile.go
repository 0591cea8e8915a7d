// Package mobile is the gomobile entry point. The Swift or Kotlin side
// registers its backends, calls Start, then drives Tick and EndOfFrame from
// its UI thread.
package mobile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/arko-chat/nativekit/internal/bridge"
	"github.com/arko-chat/nativekit/internal/capture"
	"github.com/arko-chat/nativekit/internal/config"
	"github.com/arko-chat/nativekit/internal/fallback"
	"github.com/arko-chat/nativekit/internal/host"
	"github.com/arko-chat/nativekit/internal/models"
	"github.com/arko-chat/nativekit/internal/prefs"
)

// FrameCapturer is implemented natively. It returns the encoded pixels of a
// region of the frame that was just presented.
type FrameCapturer interface {
	CaptureRegion(x, y, width, height float64) ([]byte, error)
}

// RatingCallback is told when the rating dialog has closed.
type RatingCallback interface {
	RatingClosed(state string)
}

// ShareCallback receives the outcome of Share.
type ShareCallback interface {
	ShareFinished(destination string, completed bool)
}

var (
	mu       sync.Mutex
	registry = bridge.NewRegistry()
	capturer FrameCapturer
	current  *host.Host
	stopFunc func()
)

func RegisterPopupBackend(b bridge.PopupBackend) error {
	return registry.RegisterPopup(b)
}

func RegisterNetworkBackend(b bridge.NetworkBackend) error {
	return registry.RegisterNetwork(b)
}

func RegisterSharingBackend(b bridge.SharingBackend) error {
	return registry.RegisterSharing(b)
}

// RegisterFrameCapturer fails once Start has built the services, like the
// backend registrations.
func RegisterFrameCapturer(c FrameCapturer) error {
	mu.Lock()
	defer mu.Unlock()
	if registry.Sealed() {
		return fmt.Errorf("frame capturer: %w", bridge.ErrSealed)
	}
	capturer = c
	return nil
}

// Dialog button roles for platforms whose alert dialogs report which kind of
// button was pressed instead of its position.
const (
	ButtonRolePositive = int(bridge.RolePositive)
	ButtonRoleNeutral  = int(bridge.RoleNeutral)
	ButtonRoleNegative = int(bridge.RoleNegative)
)

// ButtonIndexForRole returns the index of the button title the pressed role
// was created from, or -1 for an unknown role. Pass the result to
// PopupCallback.PopupClosed.
func ButtonIndexForRole(role, buttonCount int) int {
	return bridge.ButtonIndex(bridge.ButtonRole(role), buttonCount)
}

// ButtonRoleForIndex is the role the button at index gets on such platforms,
// or -1 when index has no role.
func ButtonRoleForIndex(index, buttonCount int) int {
	role, ok := bridge.ButtonRoleFor(index, buttonCount)
	if !ok {
		return -1
	}
	return int(role)
}

// Start builds the services. Backends registered after Start are rejected.
func Start(dataDir string, screenWidth, screenHeight float64) error {
	mu.Lock()
	defer mu.Unlock()

	if stopFunc != nil {
		return fmt.Errorf("already started")
	}

	slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	prefsDir := filepath.Join(dataDir, "prefs")
	if err := os.MkdirAll(prefsDir, 0700); err != nil {
		return fmt.Errorf("failed to create prefs directory: %w", err)
	}

	cfg, err := config.LoadFrom(filepath.Join(dataDir, "config.json"))
	if err != nil {
		return err
	}
	cfg.PrefsBackend = prefs.BackendBadger
	cfg.PrefsPath = prefsDir

	opts := host.Options{
		Config:   cfg,
		Logger:   slogger,
		Registry: registry,
		Screen:   fallback.Screen{Width: screenWidth, Height: screenHeight},
	}
	if capturer != nil {
		c := capturer
		opts.Capturer = capture.FrameCapturerFunc(func(r models.Rect) ([]byte, error) {
			return c.CaptureRegion(r.X, r.Y, r.Width, r.Height)
		})
	}

	h, err := host.New(opts)
	if err != nil {
		return err
	}
	current = h
	slogger.Info("mobile host started",
		"popup", h.Services.Popup.Kind(),
		"network", h.Services.Network.Kind(),
		"sharing", h.Services.Sharing.Kind(),
	)

	stopFunc = func() {
		if err := h.Close(); err != nil {
			slogger.Warn("closing host failed", "err", err)
		}
		current = nil
	}
	return nil
}

func running() *host.Host {
	mu.Lock()
	defer mu.Unlock()
	return current
}

// Tick must be called from the UI thread once per frame.
func Tick() {
	if h := running(); h != nil {
		h.Tick()
	}
}

// EndOfFrame is for hosts that drain elsewhere and only need to release
// end-of-frame waiters.
func EndOfFrame() {
	if h := running(); h != nil {
		h.EndOfFrame()
	}
}

var errNotStarted = errors.New("call Start first")

// ShowRatingDialog shows the rating dialog when the policy says it is time,
// or unconditionally when force is set.
func ShowRatingDialog(delaySeconds float64, force bool, cb RatingCallback) error {
	h := running()
	if h == nil {
		return errNotStarted
	}
	var onClose func()
	if cb != nil {
		onClose = func() { cb.RatingClosed(h.Rating.State().String()) }
	}
	delay := secondsToDuration(delaySeconds)
	return h.Rating.Show(delay, onClose, force)
}

func Share(text, url string, cb ShareCallback) error {
	h := running()
	if h == nil {
		return errNotStarted
	}
	return h.Services.Sharing.Share(models.ShareRequest{
		Text: text,
		URL:  url,
		OnFinished: func(destination string, completed bool) {
			if cb != nil {
				cb.ShareFinished(destination, completed)
			}
		},
	})
}

// NetworkType returns the current network type index.
func NetworkType(ignoreCache bool) int {
	h := running()
	if h == nil {
		return int(models.NetworkUnknown)
	}
	return int(h.Services.Network.CurrentType(ignoreCache))
}

func Stop() {
	mu.Lock()
	defer mu.Unlock()

	if stopFunc != nil {
		stopFunc()
		stopFunc = nil
	}
}
