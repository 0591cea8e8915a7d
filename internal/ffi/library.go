//go:build darwin || linux

package ffi

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arko-chat/nativekit/internal/bridge"
	"github.com/arko-chat/nativekit/internal/fallback"
)

// Library is a loaded native plugin. C callbacks are created once per kind
// at load time; the Go callback of the request in flight sits in a slot the
// trampoline reads from.
type Library struct {
	path   string
	handle uintptr
	logger *slog.Logger

	showPopup       func(title, message string, buttons uintptr, count int32, cb uintptr)
	registerNetwork func(cb uintptr)
	currentNetwork  func() int32
	reachability    func() int32
	cleanup         func()
	share           func(text, url string, data uintptr, size uint32, cb uintptr)

	popupTrampoline   uintptr
	networkTrampoline uintptr
	sharingTrampoline uintptr

	slots *xsync.Map[string, any]

	// probe answers reachability when the library does not export it.
	probe *fallback.Network

	closeOnce sync.Once
}

func Load(path string, logger *slog.Logger) (*Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("ffi: load %s: %w", path, err)
	}

	l := &Library{
		path:   path,
		handle: handle,
		logger: logger.With("library", path),
		slots:  xsync.NewMap[string, any](),
		probe:  fallback.NewNetwork(logger),
	}

	if l.bind(&l.showPopup, symShowPopup) {
		l.popupTrampoline = purego.NewCallback(l.popupClosed)
	}
	if l.bind(&l.registerNetwork, symRegisterNetwork) &&
		l.bind(&l.currentNetwork, symCurrentNetwork) &&
		l.bind(&l.cleanup, symCleanup) {
		l.networkTrampoline = purego.NewCallback(l.networkChanged)
		l.bind(&l.reachability, symReachability)
	} else {
		l.registerNetwork, l.currentNetwork, l.cleanup = nil, nil, nil
	}
	if l.bind(&l.share, symShare) {
		l.sharingTrampoline = purego.NewCallback(l.sharingFinished)
	}

	l.logger.Info("native library loaded",
		"popup", l.HasPopup(),
		"network", l.HasNetwork(),
		"sharing", l.HasSharing(),
	)
	return l, nil
}

func (l *Library) bind(fptr any, name string) bool {
	sym, err := purego.Dlsym(l.handle, name)
	if err != nil || sym == 0 {
		l.logger.Debug("symbol not exported", "symbol", name)
		return false
	}
	purego.RegisterFunc(fptr, sym)
	return true
}

func (l *Library) HasPopup() bool   { return l.showPopup != nil }
func (l *Library) HasNetwork() bool { return l.registerNetwork != nil }
func (l *Library) HasSharing() bool { return l.share != nil }

// RegisterInto adds every capability the library provides to reg.
func (l *Library) RegisterInto(reg *bridge.Registry) error {
	if l.HasPopup() {
		if err := reg.RegisterPopup(l); err != nil {
			return err
		}
	}
	if l.HasNetwork() {
		if err := reg.RegisterNetwork(l); err != nil {
			return err
		}
	}
	if l.HasSharing() {
		if err := reg.RegisterSharing(l); err != nil {
			return err
		}
	}
	return nil
}

func (l *Library) ShowPopup(
	title string,
	message string,
	buttonTitles string,
	buttonCount int,
	callback bridge.PopupCallback,
) {
	l.slots.Store(slotPopup, callback)

	bufs, ptrs := cStrings(bridge.SplitButtons(buttonTitles, buttonCount))
	l.showPopup(title, message, uintptr(unsafe.Pointer(&ptrs[0])), int32(buttonCount), l.popupTrampoline)
	runtime.KeepAlive(bufs)
	runtime.KeepAlive(ptrs)
}

func (l *Library) popupClosed(index uintptr) {
	v, ok := l.slots.LoadAndDelete(slotPopup)
	if !ok {
		l.logger.Warn("popup callback without pending request")
		return
	}
	v.(bridge.PopupCallback).PopupClosed(cInt(index))
}

func (l *Library) RegisterNetworkTypeChangedCallback(callback bridge.NetworkTypeCallback) {
	l.slots.Store(slotNetwork, callback)
	l.registerNetwork(l.networkTrampoline)
}

func (l *Library) networkChanged(index uintptr) {
	v, ok := l.slots.Load(slotNetwork)
	if !ok {
		return
	}
	v.(bridge.NetworkTypeCallback).NetworkTypeChanged(cInt(index))
}

func (l *Library) GetCurrentNetworkType() int {
	return int(l.currentNetwork())
}

func (l *Library) GetInternetReachability() int {
	if l.reachability == nil {
		return l.probe.GetInternetReachability()
	}
	return int(l.reachability())
}

func (l *Library) CleanupResources() {
	l.slots.Delete(slotNetwork)
	l.cleanup()
}

func (l *Library) Share(
	text string,
	url string,
	imageData []byte,
	imageSize int,
	callback bridge.SharingCallback,
) {
	l.slots.Store(slotSharing, callback)

	var data uintptr
	if imageSize > 0 {
		data = uintptr(unsafe.Pointer(&imageData[0]))
	}
	l.share(text, url, data, uint32(imageSize), l.sharingTrampoline)
	runtime.KeepAlive(imageData)
}

func (l *Library) sharingFinished(destination uintptr, completed uintptr) {
	v, ok := l.slots.LoadAndDelete(slotSharing)
	if !ok {
		l.logger.Warn("sharing callback without pending request")
		return
	}
	v.(bridge.SharingCallback).SharingFinished(goString(destination), cBool(completed))
}

// Close unloads the library. Backends obtained from it must not be used
// afterwards.
func (l *Library) Close() error {
	var err error
	l.closeOnce.Do(func() {
		err = purego.Dlclose(l.handle)
	})
	return err
}
