// Package stopwatch implements a tick-driven stopwatch engine.
//
// An Engine accumulates elapsed time as hours, minutes, seconds and
// sub-second ticks. Ticks come from a TickSource the engine acquires on
// Start and releases on Pause or Stop.
//
// # State Machine
//
//	IDLE    --Start--> RUNNING
//	RUNNING --Pause--> PAUSED
//	PAUSED  --Start--> RUNNING
//	RUNNING --Stop---> IDLE
//	PAUSED  --Stop---> IDLE
//
// Start while running and Pause while not running are no-ops. Stop always
// leaves the engine idle with a zero elapsed value. There is no terminal
// state; an engine can be restarted indefinitely. An engine created with a
// non-zero Config.Initial starts PAUSED, so IDLE always means zero.
//
// # Tick Handling
//
// Each tick adds one sub-tick and applies carries in order:
// sub-ticks to seconds at TicksPerSecond, seconds to minutes at 60, minutes
// to hours at 60. A tick is applied completely under the engine lock, so a
// Snapshot never shows a field at or beyond its bound.
//
// The engine counts delivered ticks, not wall time. A SystemTickSource
// backed by time.Ticker drops ticks the receiver is too slow to take, the
// same way an interval timer in a busy event loop does.
//
// # Releasing the Tick Source
//
// Every acquisition gets a new epoch. Ticks from an older epoch, or ticks
// arriving while the engine is not running, are discarded. Once Pause or
// Stop returns, no further tick changes the elapsed value even if the
// source goroutine already had one in flight.
//
// # Testing
//
// ManualTickSource delivers ticks synchronously through Advance, which
// makes tick counts exact in tests and lets an external frame loop drive
// the engine.
package stopwatch
