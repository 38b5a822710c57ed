package stopwatch

import (
	"sync"
	"time"
)

// TickSource produces periodic ticks for a running engine.
type TickSource interface {
	// Acquire starts calling tick every period until the returned handle
	// is released. Acquire must not call tick before it returns.
	Acquire(period time.Duration, tick func()) TickHandle
}

// TickHandle is an acquired tick source.
type TickHandle interface {
	// Release stops tick delivery. It must not block on an in-flight tick
	// and must be safe to call more than once.
	Release()
}

// SystemTickSource is the default TickSource, backed by time.Ticker.
var SystemTickSource TickSource = systemTickSource{}

type systemTickSource struct{}

func (systemTickSource) Acquire(period time.Duration, tick func()) TickHandle {
	h := &systemHandle{
		ticker: time.NewTicker(period),
		done:   make(chan struct{}),
	}
	go h.run(tick)
	return h
}

type systemHandle struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (h *systemHandle) run(tick func()) {
	for {
		select {
		case <-h.done:
			return
		case <-h.ticker.C:
			// Release may race with a ready ticker channel.
			select {
			case <-h.done:
				return
			default:
			}
			tick()
		}
	}
}

func (h *systemHandle) Release() {
	h.once.Do(func() {
		h.ticker.Stop()
		close(h.done)
	})
}

// ManualTickSource delivers ticks only when Advance is called.
// It is safe for concurrent use.
type ManualTickSource struct {
	mu       sync.Mutex
	handles  []*manualHandle
	period   time.Duration
	acquired int
}

// NewManualTickSource creates a tick source driven by Advance.
func NewManualTickSource() *ManualTickSource {
	return &ManualTickSource{}
}

// Acquire registers tick for delivery on subsequent Advance calls.
func (s *ManualTickSource) Acquire(period time.Duration, tick func()) TickHandle {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := &manualHandle{source: s, tick: tick}
	s.handles = append(s.handles, h)
	s.period = period
	s.acquired++
	return h
}

// Advance delivers n ticks to every active handle, one tick at a time.
// A handle released during Advance receives no further ticks.
// Returns the number of ticks delivered.
func (s *ManualTickSource) Advance(n int) int {
	delivered := 0
	for i := 0; i < n; i++ {
		s.mu.Lock()
		active := make([]*manualHandle, len(s.handles))
		copy(active, s.handles)
		s.mu.Unlock()

		if len(active) == 0 {
			break
		}

		// Ticks run without the source lock so a tick handler may release.
		for _, h := range active {
			if h.isActive() {
				h.tick()
				delivered++
			}
		}
	}
	return delivered
}

// Active returns the number of handles currently receiving ticks.
func (s *ManualTickSource) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// Acquired returns how many times Acquire has been called.
func (s *ManualTickSource) Acquired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.acquired
}

// Period returns the period passed to the most recent Acquire.
func (s *ManualTickSource) Period() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

func (s *ManualTickSource) remove(h *manualHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, cur := range s.handles {
		if cur == h {
			s.handles = append(s.handles[:i], s.handles[i+1:]...)
			return
		}
	}
}

type manualHandle struct {
	source *ManualTickSource
	tick   func()

	mu       sync.Mutex
	released bool
}

func (h *manualHandle) isActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.released
}

func (h *manualHandle) Release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	h.mu.Unlock()

	h.source.remove(h)
}

// Compile-time interface satisfaction checks.
var (
	_ TickSource = systemTickSource{}
	_ TickSource = (*ManualTickSource)(nil)
)
