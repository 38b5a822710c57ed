package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes engine events to an slog.Logger.
// Useful for development when you want to see engine events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("engine_id", event.EngineID),
		slog.String("category", event.Category.String()),
	}

	if event.Elapsed != nil {
		attrs = append(attrs,
			slog.String("elapsed", event.Elapsed.String()),
			slog.Uint64("ticks_per_second", uint64(event.Elapsed.TicksPerSecond)),
		)
	}

	switch {
	case event.Command != nil:
		attrs = append(attrs,
			slog.String("command", event.Command.Command.String()),
			slog.Bool("applied", event.Command.Applied),
		)
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "engine", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
