package service

import (
	"cmp"
	"slices"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/arko-chat/nativekit/internal/bridge"
	"github.com/arko-chat/nativekit/internal/cache"
	"github.com/arko-chat/nativekit/internal/models"
)

type NetworkTypeHandler func(current models.NetworkType)

type subscriber struct {
	id uint64
	fn NetworkTypeHandler
}

// NetworkService answers network technology queries from a cache and relays
// change events pushed by the backend to subscribers on the main context.
type NetworkService struct {
	*BaseService

	backend bridge.NetworkBackend
	kind    bridge.Kind
	cache   *cache.ResultCache[models.NetworkType]

	cachingEnabled atomic.Bool
	registered     atomic.Bool
	shutdown       atomic.Bool

	nextID      atomic.Uint64
	subscribers *xsync.Map[uint64, NetworkTypeHandler]
}

func NewNetworkService(
	base *BaseService,
	backend bridge.NetworkBackend,
	kind bridge.Kind,
	results *cache.ResultCache[models.NetworkType],
) *NetworkService {
	s := &NetworkService{
		BaseService: base,
		backend:     backend,
		kind:        kind,
		cache:       results,
		subscribers: xsync.NewMap[uint64, NetworkTypeHandler](),
	}
	s.cachingEnabled.Store(true)
	return s
}

func (s *NetworkService) Kind() bridge.Kind {
	return s.kind
}

func (s *NetworkService) SetCachingEnabled(enabled bool) {
	s.cachingEnabled.Store(enabled)
}

func (s *NetworkService) CachingEnabled() bool {
	return s.cachingEnabled.Load()
}

// CurrentType returns the cached technology unless ignoreCache is set,
// caching is disabled, or the cached value is unknown.
func (s *NetworkService) CurrentType(ignoreCache bool) models.NetworkType {
	force := ignoreCache || !s.cachingEnabled.Load()
	if !force {
		if v, fresh, ok := s.cache.Peek(); ok && fresh && v == models.NetworkUnknown {
			force = true
		}
	}
	return s.cache.Read(force, s.query)
}

func (s *NetworkService) query() models.NetworkType {
	t := models.NetworkTypeFromIndex(s.backend.GetCurrentNetworkType())
	s.logger.Debug("queried network type", "type", t)
	return t
}

func (s *NetworkService) Reachability() models.Reachability {
	return models.ReachabilityFromIndex(s.backend.GetInternetReachability())
}

// IsFastEnough is true on a local area network, false without connectivity
// and otherwise true for anything faster than Edge.
func (s *NetworkService) IsFastEnough() bool {
	switch s.Reachability() {
	case models.ReachableViaLocalAreaNetwork:
		return true
	case models.NotReachable:
		return false
	}
	return s.CurrentType(false).FasterThan(models.NetworkEdge)
}

// Subscribe adds fn to the change listeners. The first subscription
// registers with the backend; later unsubscribes never unregister.
func (s *NetworkService) Subscribe(fn NetworkTypeHandler) uint64 {
	id := s.nextID.Add(1)
	s.subscribers.Store(id, fn)

	if s.registered.CompareAndSwap(false, true) {
		onChange := bridge.Forward(s.dispatcher, s.changed)
		s.backend.RegisterNetworkTypeChangedCallback(bridge.NetworkTypeCallbackFunc(onChange))
		s.logger.Debug("registered for network type changes")
	}
	return id
}

func (s *NetworkService) Unsubscribe(id uint64) bool {
	_, ok := s.subscribers.LoadAndDelete(id)
	return ok
}

func (s *NetworkService) SubscriberCount() int {
	return s.subscribers.Size()
}

func (s *NetworkService) changed(index int) {
	t := models.NetworkTypeFromIndex(index)
	s.metrics.CallbackDelivered(s.name)
	s.cache.Store(t)
	s.logger.Debug("network type changed", "type", t)
	s.notify(t)
}

// Refresh re-queries the backend, typically after the app resumed, and
// notifies subscribers when the technology changed. Main context only.
func (s *NetworkService) Refresh() models.NetworkType {
	prev, _, had := s.cache.Peek()
	current := s.cache.Read(true, s.query)
	if !had || prev != current {
		s.notify(current)
	}
	return current
}

func (s *NetworkService) notify(t models.NetworkType) {
	var subs []subscriber
	s.subscribers.Range(func(id uint64, fn NetworkTypeHandler) bool {
		subs = append(subs, subscriber{id: id, fn: fn})
		return true
	})
	slices.SortFunc(subs, func(a, b subscriber) int {
		return cmp.Compare(a.id, b.id)
	})
	for _, sub := range subs {
		sub.fn(t)
	}
}

// Shutdown releases backend resources. Further calls do nothing.
func (s *NetworkService) Shutdown() {
	if !s.shutdown.CompareAndSwap(false, true) {
		return
	}
	s.backend.CleanupResources()
	s.logger.Debug("network backend cleaned up")
}
