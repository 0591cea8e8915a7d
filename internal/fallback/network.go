package fallback

import (
	"log/slog"
	"net"
	"sync"

	"github.com/arko-chat/nativekit/internal/bridge"
	"github.com/arko-chat/nativekit/internal/models"
)

// Network has no radio to ask: the technology is always unknown and change
// events never fire. Reachability is derived from the host's interfaces.
type Network struct {
	mu         sync.Mutex
	callback   bridge.NetworkTypeCallback
	interfaces func() ([]net.Interface, error)
	logger     *slog.Logger
}

func NewNetwork(logger *slog.Logger) *Network {
	return &Network{
		interfaces: net.Interfaces,
		logger:     logger.With("fallback", "network"),
	}
}

func (n *Network) RegisterNetworkTypeChangedCallback(cb bridge.NetworkTypeCallback) {
	n.mu.Lock()
	n.callback = cb
	n.mu.Unlock()
	n.logger.Debug("network type callback registered, no events will be sent")
}

func (n *Network) GetCurrentNetworkType() int {
	return int(models.NetworkUnknown)
}

// GetInternetReachability reports LAN when any non-loopback interface is up
// with an address assigned.
func (n *Network) GetInternetReachability() int {
	ifaces, err := n.interfaces()
	if err != nil {
		n.logger.Warn("listing interfaces failed", "err", err)
		return int(models.NotReachable)
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err == nil && len(addrs) > 0 {
			return int(models.ReachableViaLocalAreaNetwork)
		}
	}
	return int(models.NotReachable)
}

func (n *Network) CleanupResources() {
	n.mu.Lock()
	n.callback = nil
	n.mu.Unlock()
}
