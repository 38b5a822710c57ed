package stopwatch

import (
	"math"
	"math/bits"
	"time"

	"github.com/tickwatch/tickwatch-go/pkg/log"
)

// Unit bounds for normalized elapsed values.
const (
	SecondsPerMinute = 60
	MinutesPerHour   = 60
)

// ElapsedTime is a normalized elapsed value.
//
// At rest Minutes and Seconds are in [0, 59] and SubTicks is in
// [0, ticksPerSecond-1]. Hours is unbounded.
type ElapsedTime struct {
	Hours    uint64
	Minutes  uint8
	Seconds  uint8
	SubTicks uint32
}

// ElapsedFromTicks returns the normalized value for a flat tick count.
// A zero ticksPerSecond selects DefaultTicksPerSecond.
func ElapsedFromTicks(ticks uint64, ticksPerSecond uint32) ElapsedTime {
	tps := uint64(rate(ticksPerSecond))
	secs := ticks / tps
	return ElapsedTime{
		Hours:    secs / (SecondsPerMinute * MinutesPerHour),
		Minutes:  uint8(secs / SecondsPerMinute % MinutesPerHour),
		Seconds:  uint8(secs % SecondsPerMinute),
		SubTicks: uint32(ticks % tps),
	}
}

// Ticks returns the flattened tick count, saturating at math.MaxUint64.
func (e ElapsedTime) Ticks(ticksPerSecond uint32) uint64 {
	tps := uint64(rate(ticksPerSecond))

	hi, secs := bits.Mul64(e.Hours, SecondsPerMinute*MinutesPerHour)
	if hi != 0 {
		return math.MaxUint64
	}
	secs, carry := bits.Add64(secs, uint64(e.Minutes)*SecondsPerMinute+uint64(e.Seconds), 0)
	if carry != 0 {
		return math.MaxUint64
	}
	hi, ticks := bits.Mul64(secs, tps)
	if hi != 0 {
		return math.MaxUint64
	}
	ticks, carry = bits.Add64(ticks, uint64(e.SubTicks), 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return ticks
}

// Duration returns the wall-clock equivalent of the value, saturating at
// the largest time.Duration.
func (e ElapsedTime) Duration(ticksPerSecond uint32) time.Duration {
	return e.logSnapshot(rate(ticksPerSecond)).Duration()
}

// Normalized reports whether every field is within its bound.
func (e ElapsedTime) Normalized(ticksPerSecond uint32) bool {
	return e.Minutes < MinutesPerHour &&
		e.Seconds < SecondsPerMinute &&
		e.SubTicks < rate(ticksPerSecond)
}

// IsZero reports whether no time has accumulated.
func (e ElapsedTime) IsZero() bool {
	return e == ElapsedTime{}
}

// Format renders the value as H:MM:SS.fff. The fraction has as many
// digits as ticksPerSecond-1 and is omitted for one tick per second.
func (e ElapsedTime) Format(ticksPerSecond uint32) string {
	return e.logSnapshot(rate(ticksPerSecond)).String()
}

// advance applies one tick with ordered carries.
func (e ElapsedTime) advance(ticksPerSecond uint32) ElapsedTime {
	e.SubTicks++
	if e.SubTicks < ticksPerSecond {
		return e
	}
	e.SubTicks = 0
	e.Seconds++
	if e.Seconds < SecondsPerMinute {
		return e
	}
	e.Seconds = 0
	e.Minutes++
	if e.Minutes < MinutesPerHour {
		return e
	}
	e.Minutes = 0
	e.Hours++
	return e
}

func (e ElapsedTime) logSnapshot(ticksPerSecond uint32) log.ElapsedSnapshot {
	return log.ElapsedSnapshot{
		Hours:          e.Hours,
		Minutes:        e.Minutes,
		Seconds:        e.Seconds,
		SubTicks:       e.SubTicks,
		TicksPerSecond: ticksPerSecond,
	}
}

func rate(ticksPerSecond uint32) uint32 {
	if ticksPerSecond == 0 {
		return DefaultTicksPerSecond
	}
	return ticksPerSecond
}
