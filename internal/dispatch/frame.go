package dispatch

import "sync"

// FrameSignal is the end-of-frame synchronization point. The host calls
// SignalEndOfFrame on the main context once per tick, after the frame has
// been fully rendered. Work that samples the frame buffer waits here.
type FrameSignal struct {
	mu      sync.Mutex
	waiting []Action
	runner  *Dispatcher
}

func NewFrameSignal(d *Dispatcher) *FrameSignal {
	return &FrameSignal{runner: d}
}

// AwaitEndOfFrame runs action at the next signal. Actions registered while a
// signal is being processed wait for the following one.
func (f *FrameSignal) AwaitEndOfFrame(action Action) {
	if action == nil {
		return
	}
	f.mu.Lock()
	f.waiting = append(f.waiting, action)
	f.mu.Unlock()
}

func (f *FrameSignal) Waiting() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiting)
}

func (f *FrameSignal) SignalEndOfFrame() int {
	f.mu.Lock()
	batch := f.waiting
	f.waiting = nil
	f.mu.Unlock()

	for _, action := range batch {
		f.runner.run(action)
	}
	return len(batch)
}
