package bridge

import (
	"errors"
	"sync"
)

var ErrSealed = errors.New("bridge: registry sealed, backends are chosen once at start")

// Registry collects whatever native backends the host provides. It is
// created once per process, filled before services are built and then
// sealed, so strategy selection never changes while the process runs.
type Registry struct {
	mu      sync.Mutex
	sealed  bool
	popup   PopupBackend
	network NetworkBackend
	sharing SharingBackend
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) RegisterPopup(b PopupBackend) error {
	return r.set(func() { r.popup = b })
}

func (r *Registry) RegisterNetwork(b NetworkBackend) error {
	return r.set(func() { r.network = b })
}

func (r *Registry) RegisterSharing(b SharingBackend) error {
	return r.set(func() { r.sharing = b })
}

func (r *Registry) set(apply func()) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrSealed
	}
	apply()
	return nil
}

func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

func (r *Registry) Sealed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sealed
}

func (r *Registry) Popup() (PopupBackend, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.popup, r.popup != nil
}

func (r *Registry) Network() (NetworkBackend, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.network, r.network != nil
}

func (r *Registry) Sharing() (SharingBackend, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sharing, r.sharing != nil
}
