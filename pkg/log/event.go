package log

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Event represents an engine event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// EngineID identifies the engine instance that produced the event.
	EngineID string `cbor:"2,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"3,keyasint"`

	// Elapsed is the engine's elapsed value when the event was produced.
	Elapsed *ElapsedSnapshot `cbor:"4,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Command     *CommandEvent     `cbor:"5,keyasint,omitempty"`
	StateChange *StateChangeEvent `cbor:"6,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryCommand indicates a Start, Pause or Stop request.
	CategoryCommand Category = 0
	// CategoryState indicates a state transition.
	CategoryState Category = 1
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryCommand:
		return "COMMAND"
	case CategoryState:
		return "STATE"
	default:
		return "UNKNOWN"
	}
}

// ParseCategory converts a case-insensitive category name into a Category.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(s) {
	case "command":
		return CategoryCommand, nil
	case "state":
		return CategoryState, nil
	default:
		return 0, fmt.Errorf("invalid category %q (valid: command, state)", s)
	}
}

// Command identifies a control request sent to an engine.
type Command uint8

const (
	// CommandStart requests Idle/Paused -> Running.
	CommandStart Command = 0
	// CommandPause requests Running -> Paused.
	CommandPause Command = 1
	// CommandStop requests a reset to Idle.
	CommandStop Command = 2
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CommandStart:
		return "START"
	case CommandPause:
		return "PAUSE"
	case CommandStop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}

// ParseCommand converts a case-insensitive command name into a Command.
func ParseCommand(s string) (Command, error) {
	switch strings.ToLower(s) {
	case "start":
		return CommandStart, nil
	case "pause":
		return CommandPause, nil
	case "stop":
		return CommandStop, nil
	default:
		return 0, fmt.Errorf("invalid command %q (valid: start, pause, stop)", s)
	}
}

// CommandEvent captures a control request and whether it took effect.
type CommandEvent struct {
	// Command that was requested.
	Command Command `cbor:"1,keyasint"`

	// Applied is false when the command was a no-op for the engine's state.
	Applied bool `cbor:"2,keyasint"`
}

// StateChangeEvent captures an engine state transition.
type StateChangeEvent struct {
	// OldState is the previous state.
	OldState string `cbor:"1,keyasint"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason names the command that caused the change.
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ElapsedSnapshot mirrors the engine's elapsed value for encoding.
type ElapsedSnapshot struct {
	Hours          uint64 `cbor:"1,keyasint"`
	Minutes        uint8  `cbor:"2,keyasint"`
	Seconds        uint8  `cbor:"3,keyasint"`
	SubTicks       uint32 `cbor:"4,keyasint"`
	TicksPerSecond uint32 `cbor:"5,keyasint"`
}

// maxDurationHours is the largest whole hour count a time.Duration holds.
const maxDurationHours = uint64(math.MaxInt64 / int64(time.Hour))

// Duration returns the wall-clock equivalent of the snapshot. Values beyond
// the range of time.Duration (about 2.56 million hours) saturate.
func (s ElapsedSnapshot) Duration() time.Duration {
	if s.Hours > maxDurationHours {
		return math.MaxInt64
	}
	rest := time.Duration(s.Minutes)*time.Minute + time.Duration(s.Seconds)*time.Second
	if s.TicksPerSecond != 0 {
		rest += time.Duration(s.SubTicks) * time.Second / time.Duration(s.TicksPerSecond)
	}
	whole := time.Duration(s.Hours) * time.Hour
	if whole > math.MaxInt64-rest {
		return math.MaxInt64
	}
	return whole + rest
}

// String formats the snapshot as H:MM:SS.fff.
func (s ElapsedSnapshot) String() string {
	base := fmt.Sprintf("%d:%02d:%02d", s.Hours, s.Minutes, s.Seconds)
	if s.TicksPerSecond <= 1 {
		return base
	}
	width := len(fmt.Sprint(s.TicksPerSecond - 1))
	return fmt.Sprintf("%s.%0*d", base, width, s.SubTicks)
}
