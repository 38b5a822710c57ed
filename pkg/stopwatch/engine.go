package stopwatch

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tickwatch/tickwatch-go/pkg/log"
)

// Engine limits.
const (
	// DefaultTicksPerSecond gives millisecond ticks.
	DefaultTicksPerSecond = 1000

	// MaxTicksPerSecond is one tick per nanosecond, the finest period
	// time.Duration can express.
	MaxTicksPerSecond = uint32(time.Second)
)

// Engine configuration errors.
var (
	ErrInvalidTicksPerSecond = errors.New("invalid ticks per second")
	ErrInvalidPeriod         = errors.New("invalid tick period")
	ErrInvalidElapsed        = errors.New("elapsed time not normalized")
)

// State represents the engine state.
type State uint8

const (
	// StateIdle indicates a stopped engine with zero elapsed time.
	StateIdle State = iota

	// StateRunning indicates the engine holds a tick source and is counting.
	StateRunning

	// StatePaused indicates counting is suspended with elapsed time kept.
	StatePaused
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateRunning:
		return "RUNNING"
	case StatePaused:
		return "PAUSED"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is a consistent view of an engine.
type Snapshot struct {
	Elapsed        ElapsedTime
	State          State
	TicksPerSecond uint32
}

// String renders the snapshot as "H:MM:SS.fff STATE".
func (s Snapshot) String() string {
	return s.Elapsed.Format(s.TicksPerSecond) + " " + s.State.String()
}

// Config holds engine configuration.
type Config struct {
	// TicksPerSecond is the sub-second resolution. Zero selects
	// DefaultTicksPerSecond.
	TicksPerSecond uint32

	// Period is the interval between ticks. Zero selects
	// time.Second / TicksPerSecond.
	Period time.Duration

	// Source supplies ticks while running. Nil selects SystemTickSource.
	Source TickSource

	// Logger receives command and state events. Nil disables capture.
	Logger log.Logger

	// ID identifies the engine in events. Empty selects a random UUID.
	ID string

	// Initial is the elapsed value the engine is created with. A non-zero
	// value creates the engine Paused, so Start resumes from it and Idle
	// always means zero. Stop resets to zero.
	Initial ElapsedTime
}

// Engine is a stopwatch driven by an owned tick source.
type Engine struct {
	mu sync.RWMutex

	// Immutable after construction
	id             string
	ticksPerSecond uint32
	period         time.Duration
	source         TickSource
	logger         log.Logger

	// Current state
	state   State
	elapsed ElapsedTime

	// Tick source held while running, and the epoch its ticks carry
	handle TickHandle
	epoch  uint64

	// Callbacks
	onStateChange func(oldState, newState State)
}

// NewEngine creates an idle engine with millisecond ticks.
func NewEngine() *Engine {
	e, _ := NewEngineWithConfig(Config{})
	return e
}

// NewEngineWithConfig creates an idle engine with custom configuration.
func NewEngineWithConfig(cfg Config) (*Engine, error) {
	if cfg.TicksPerSecond > MaxTicksPerSecond {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidTicksPerSecond, cfg.TicksPerSecond, MaxTicksPerSecond)
	}
	if cfg.Period < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPeriod, cfg.Period)
	}

	e := &Engine{
		id:             cfg.ID,
		ticksPerSecond: rate(cfg.TicksPerSecond),
		period:         cfg.Period,
		source:         cfg.Source,
		logger:         cfg.Logger,
		state:          StateIdle,
		elapsed:        cfg.Initial,
	}

	if !e.elapsed.Normalized(e.ticksPerSecond) {
		return nil, fmt.Errorf("%w: %+v at %d ticks per second", ErrInvalidElapsed, cfg.Initial, e.ticksPerSecond)
	}
	if !e.elapsed.IsZero() {
		e.state = StatePaused
	}

	if e.period == 0 {
		e.period = time.Second / time.Duration(e.ticksPerSecond)
	}
	if e.source == nil {
		e.source = SystemTickSource
	}
	if e.logger == nil {
		e.logger = log.NoopLogger{}
	}
	if e.id == "" {
		e.id = uuid.New().String()
	}

	return e, nil
}

// ID returns the engine identifier used in events.
func (e *Engine) ID() string {
	return e.id
}

// TicksPerSecond returns the sub-second resolution.
func (e *Engine) TicksPerSecond() uint32 {
	return e.ticksPerSecond
}

// Period returns the interval between ticks.
func (e *Engine) Period() time.Duration {
	return e.period
}

// State returns the current state.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

// Elapsed returns the current elapsed value.
func (e *Engine) Elapsed() ElapsedTime {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.elapsed
}

// Snapshot returns the elapsed value and state together.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

// Start begins counting from Idle or Paused. No-op while running.
func (e *Engine) Start() {
	e.mu.Lock()

	if e.state == StateRunning {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.logCommand(log.CommandStart, false, snap)
		return
	}

	oldState := e.state
	e.state = StateRunning
	e.epoch++
	epoch := e.epoch
	e.handle = e.source.Acquire(e.period, func() {
		e.tick(epoch)
	})

	snap := e.snapshotLocked()
	stateChangeFn := e.onStateChange

	e.mu.Unlock()

	e.logCommand(log.CommandStart, true, snap)
	e.logTransition(log.CommandStart, oldState, snap)
	if stateChangeFn != nil {
		stateChangeFn(oldState, StateRunning)
	}
}

// Pause suspends counting and keeps the elapsed value. No-op unless running.
func (e *Engine) Pause() {
	e.mu.Lock()

	if e.state != StateRunning {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		e.logCommand(log.CommandPause, false, snap)
		return
	}

	e.releaseLocked()
	e.state = StatePaused

	snap := e.snapshotLocked()
	stateChangeFn := e.onStateChange

	e.mu.Unlock()

	e.logCommand(log.CommandPause, true, snap)
	e.logTransition(log.CommandPause, StateRunning, snap)
	if stateChangeFn != nil {
		stateChangeFn(StateRunning, StatePaused)
	}
}

// Stop releases any tick source and resets to Idle with zero elapsed time.
func (e *Engine) Stop() {
	e.mu.Lock()

	oldState := e.state
	applied := oldState != StateIdle

	e.releaseLocked()
	e.state = StateIdle
	e.elapsed = ElapsedTime{}

	snap := e.snapshotLocked()
	stateChangeFn := e.onStateChange

	e.mu.Unlock()

	e.logCommand(log.CommandStop, applied, snap)
	if oldState == StateIdle {
		return
	}
	e.logTransition(log.CommandStop, oldState, snap)
	if stateChangeFn != nil {
		stateChangeFn(oldState, StateIdle)
	}
}

// OnStateChange sets a callback for state changes.
// The callback runs outside the engine lock and may call back into the
// engine. Callbacks from concurrent commands are not ordered.
func (e *Engine) OnStateChange(fn func(oldState, newState State)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onStateChange = fn
}

// tick applies one tick if it belongs to the current acquisition.
func (e *Engine) tick(epoch uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning || epoch != e.epoch {
		return
	}
	e.elapsed = e.elapsed.advance(e.ticksPerSecond)
}

// releaseLocked drops the held tick source, if any.
func (e *Engine) releaseLocked() {
	if e.handle != nil {
		e.handle.Release()
		e.handle = nil
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		Elapsed:        e.elapsed,
		State:          e.state,
		TicksPerSecond: e.ticksPerSecond,
	}
}

func (e *Engine) logCommand(cmd log.Command, applied bool, snap Snapshot) {
	elapsed := snap.Elapsed.logSnapshot(snap.TicksPerSecond)
	e.logger.Log(log.Event{
		Timestamp: time.Now(),
		EngineID:  e.id,
		Category:  log.CategoryCommand,
		Elapsed:   &elapsed,
		Command:   &log.CommandEvent{Command: cmd, Applied: applied},
	})
}

func (e *Engine) logTransition(cmd log.Command, oldState State, snap Snapshot) {
	elapsed := snap.Elapsed.logSnapshot(snap.TicksPerSecond)
	e.logger.Log(log.Event{
		Timestamp: time.Now(),
		EngineID:  e.id,
		Category:  log.CategoryState,
		Elapsed:   &elapsed,
		StateChange: &log.StateChangeEvent{
			OldState: oldState.String(),
			NewState: snap.State.String(),
			Reason:   cmd.String(),
		},
	})
}
