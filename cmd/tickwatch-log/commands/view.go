// Package commands implements the tickwatch-log CLI commands.
package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/tickwatch/tickwatch-go/pkg/log"
)

const timestampLayout = "2006-01-02T15:04:05.000000Z"

// ViewFilter specifies criteria for filtering events in the view command.
type ViewFilter struct {
	EngineID string
	Category *log.Category
	Command  *log.Command
}

func (f ViewFilter) logFilter() log.Filter {
	return log.Filter{
		EngineID: f.EngineID,
		Category: f.Category,
		Command:  f.Command,
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [engine:id] CATEGORY detail
	ts := event.Timestamp.UTC().Format(timestampLayout)
	engineID := shortenEngineID(event.EngineID)

	switch {
	case event.Command != nil:
		outcome := "applied"
		if !event.Command.Applied {
			outcome = "ignored"
		}
		fmt.Fprintf(w, "%s [engine:%s] %s %s (%s)\n", ts, engineID, event.Category, event.Command.Command, outcome)
	case event.StateChange != nil:
		fmt.Fprintf(w, "%s [engine:%s] %s %s -> %s\n", ts, engineID, event.Category,
			event.StateChange.OldState, event.StateChange.NewState)
		if event.StateChange.Reason != "" {
			fmt.Fprintf(w, "  Reason: %s\n", event.StateChange.Reason)
		}
	default:
		fmt.Fprintf(w, "%s [engine:%s] %s\n", ts, engineID, event.Category)
	}

	if event.Elapsed != nil {
		fmt.Fprintf(w, "  Elapsed: %s\n", event.Elapsed)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenEngineID returns the first 8 characters of the engine ID.
func shortenEngineID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

// ParseCategoryFlag parses a category string from command-line flag (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	return log.ParseCategory(s)
}

// ParseCommandFlag parses a command string from command-line flag (case-insensitive).
func ParseCommandFlag(s string) (log.Command, error) {
	return log.ParseCommand(s)
}

// RunView executes the view command.
func RunView(path string, filter ViewFilter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter.logFilter())
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		formatEvent(output, event)
	}

	return nil
}
