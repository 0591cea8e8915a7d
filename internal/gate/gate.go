package gate

import "sync/atomic"

// Gate lets one logical operation be in flight at a time. A second request
// while one is active is rejected, never queued: the native UI behind it
// cannot show two modals anyway.
type Gate struct {
	held atomic.Bool
}

func (g *Gate) TryAcquire() bool {
	return g.held.CompareAndSwap(false, true)
}

// Release is idempotent.
func (g *Gate) Release() {
	g.held.Store(false)
}

func (g *Gate) Held() bool {
	return g.held.Load()
}
