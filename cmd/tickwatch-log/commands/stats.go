package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/tickwatch/tickwatch-go/pkg/log"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents      int
	EventsByCategory map[log.Category]int
	Commands         map[log.Command]*CommandStats
	Transitions      map[string]int
	Engines          map[string]*EngineStats
	TimeRange        struct {
		Start time.Time
		End   time.Time
	}
}

// CommandStats counts how often a command took effect.
type CommandStats struct {
	Applied int
	Ignored int
}

// EngineStats holds statistics for a single engine.
type EngineStats struct {
	FirstSeen   time.Time
	LastSeen    time.Time
	Events      int
	Commands    int
	LastState   string
	LastElapsed *log.ElapsedSnapshot
}

func newStats() *Stats {
	return &Stats{
		EventsByCategory: make(map[log.Category]int),
		Commands:         make(map[log.Command]*CommandStats),
		Transitions:      make(map[string]int),
		Engines:          make(map[string]*EngineStats),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByCategory[event.Category]++

	// Track time range
	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}

	// Track engine stats
	engine, ok := s.Engines[event.EngineID]
	if !ok {
		engine = &EngineStats{
			FirstSeen: event.Timestamp,
			LastSeen:  event.Timestamp,
		}
		s.Engines[event.EngineID] = engine
	}
	engine.Events++
	if !event.Timestamp.Before(engine.LastSeen) {
		engine.LastSeen = event.Timestamp
		if event.Elapsed != nil {
			engine.LastElapsed = event.Elapsed
		}
	}

	switch {
	case event.Command != nil:
		engine.Commands++
		cs, ok := s.Commands[event.Command.Command]
		if !ok {
			cs = &CommandStats{}
			s.Commands[event.Command.Command] = cs
		}
		if event.Command.Applied {
			cs.Applied++
		} else {
			cs.Ignored++
		}
	case event.StateChange != nil:
		s.Transitions[event.StateChange.OldState+" -> "+event.StateChange.NewState]++
		engine.LastState = event.StateChange.NewState
	}
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := newStats()
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		stats.add(event)
	}

	return printStats(w, stats)
}

func printStats(w io.Writer, stats *Stats) error {
	fmt.Fprintln(w, "=== Stopwatch Event Log Statistics ===")
	fmt.Fprintln(w)

	// Time range
	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	// Total events
	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	// Events by category
	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryCommand, log.CategoryState} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	// Commands
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range []log.Command{log.CommandStart, log.CommandPause, log.CommandStop} {
		if cs, ok := stats.Commands[cmd]; ok {
			fmt.Fprintf(w, "  %-12s %d applied, %d ignored\n", cmd.String()+":", cs.Applied, cs.Ignored)
		}
	}
	fmt.Fprintln(w)

	// Transitions
	if len(stats.Transitions) > 0 {
		fmt.Fprintln(w, "Transitions:")
		names := make([]string, 0, len(stats.Transitions))
		for name := range stats.Transitions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %-20s %d\n", name, stats.Transitions[name])
		}
		fmt.Fprintln(w)
	}

	// Engines
	fmt.Fprintf(w, "Engines: %d\n", len(stats.Engines))
	if len(stats.Engines) == 0 {
		return nil
	}

	// Sort by first seen time
	type engineInfo struct {
		id    string
		stats *EngineStats
	}
	engines := make([]engineInfo, 0, len(stats.Engines))
	for id, es := range stats.Engines {
		engines = append(engines, engineInfo{id, es})
	}
	sort.Slice(engines, func(i, j int) bool {
		return engines[i].stats.FirstSeen.Before(engines[j].stats.FirstSeen)
	})

	fmt.Fprintln(w)
	table := tablewriter.NewWriter(w)
	table.Header("Engine", "Events", "Commands", "Duration", "Last State", "Last Elapsed")
	for _, e := range engines {
		lastElapsed := "-"
		if e.stats.LastElapsed != nil {
			lastElapsed = e.stats.LastElapsed.String()
		}
		lastState := e.stats.LastState
		if lastState == "" {
			lastState = "-"
		}
		if err := table.Append(
			shortenEngineID(e.id),
			strconv.Itoa(e.stats.Events),
			strconv.Itoa(e.stats.Commands),
			e.stats.LastSeen.Sub(e.stats.FirstSeen).Round(time.Millisecond).String(),
			lastState,
			lastElapsed,
		); err != nil {
			return fmt.Errorf("failed to add engine row: %w", err)
		}
	}
	return table.Render()
}
