package log

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.swlog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func readAll(t *testing.T, reader *Reader) []Event {
	t.Helper()
	var read []Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		read = append(read, event)
	}
	return read
}

func commandEvent(engineID string, ts time.Time, cmd Command, applied bool) Event {
	return Event{
		Timestamp: ts,
		EngineID:  engineID,
		Category:  CategoryCommand,
		Command:   &CommandEvent{Command: cmd, Applied: applied},
	}
}

func stateEvent(engineID string, ts time.Time, from, to, reason string) Event {
	return Event{
		Timestamp:   ts,
		EngineID:    engineID,
		Category:    CategoryState,
		StateChange: &StateChangeEvent{OldState: from, NewState: to, Reason: reason},
	}
}

func TestReaderIteratesEvents(t *testing.T) {
	now := time.Now()
	path := createTestLogFile(t, []Event{
		commandEvent("engine-1", now, CommandStart, true),
		stateEvent("engine-1", now, "IDLE", "RUNNING", "START"),
		commandEvent("engine-1", now, CommandStart, false),
	})

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 3 {
		t.Fatalf("got %d events, want 3", len(read))
	}
	if read[1].StateChange == nil || read[1].StateChange.NewState != "RUNNING" {
		t.Errorf("second event StateChange = %+v, want NewState RUNNING", read[1].StateChange)
	}
	if read[2].Command == nil || read[2].Command.Applied {
		t.Errorf("last event Command = %+v, want unapplied START", read[2].Command)
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader(filepath.Join(t.TempDir(), "nope.swlog")); err == nil {
		t.Error("NewReader on missing file error = nil, want error")
	}
}

func TestReaderHandlesEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.swlog")

	logger, _ := NewFileLogger(path)
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	event, err := reader.Next()
	if err != io.EOF {
		t.Errorf("expected io.EOF, got err=%v, event=%+v", err, event)
	}
}

func TestReaderHandlesTruncatedFile(t *testing.T) {
	path := createTestLogFile(t, []Event{
		commandEvent("engine-1", time.Now(), CommandStart, true),
		commandEvent("engine-1", time.Now(), CommandPause, true),
	})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if err := os.WriteFile(path, data[:len(data)-3], 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if _, err := reader.Next(); err != nil {
		t.Fatalf("first Next failed: %v", err)
	}

	_, err = reader.Next()
	if err == nil || err == io.EOF {
		t.Errorf("Next on truncated event error = %v, want decode error", err)
	}
}

func TestReaderFilterByEngineID(t *testing.T) {
	now := time.Now()
	path := createTestLogFile(t, []Event{
		commandEvent("engine-a", now, CommandStart, true),
		commandEvent("engine-b", now, CommandStart, true),
		commandEvent("engine-a", now, CommandStop, true),
	})

	reader, err := NewFilteredReader(path, Filter{EngineID: "engine-a"})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}
	for _, e := range read {
		if e.EngineID != "engine-a" {
			t.Errorf("EngineID = %q, want engine-a", e.EngineID)
		}
	}
}

func TestReaderFilterByCategory(t *testing.T) {
	now := time.Now()
	path := createTestLogFile(t, []Event{
		commandEvent("engine-1", now, CommandStart, true),
		stateEvent("engine-1", now, "IDLE", "RUNNING", "START"),
		commandEvent("engine-1", now, CommandPause, true),
		stateEvent("engine-1", now, "RUNNING", "PAUSED", "PAUSE"),
	})

	category := CategoryState
	reader, err := NewFilteredReader(path, Filter{Category: &category})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}
	if read[1].StateChange.NewState != "PAUSED" {
		t.Errorf("NewState = %q, want PAUSED", read[1].StateChange.NewState)
	}
}

func TestReaderFilterByCommand(t *testing.T) {
	now := time.Now()
	path := createTestLogFile(t, []Event{
		commandEvent("engine-1", now, CommandStart, true),
		stateEvent("engine-1", now, "IDLE", "RUNNING", "START"),
		commandEvent("engine-1", now, CommandStop, true),
		stateEvent("engine-1", now, "RUNNING", "IDLE", "STOP"),
	})

	cmd := CommandStop
	reader, err := NewFilteredReader(path, Filter{Command: &cmd})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}
	if read[0].Category != CategoryCommand || read[1].Category != CategoryState {
		t.Errorf("categories = %v, %v; want COMMAND, STATE", read[0].Category, read[1].Category)
	}
}

func TestReaderFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	path := createTestLogFile(t, []Event{
		commandEvent("engine-1", base, CommandStart, true),
		commandEvent("engine-1", base.Add(time.Minute), CommandPause, true),
		commandEvent("engine-1", base.Add(2*time.Minute), CommandStart, true),
		commandEvent("engine-1", base.Add(3*time.Minute), CommandStop, true),
	})

	start := base.Add(time.Minute)
	end := base.Add(3 * time.Minute)
	reader, err := NewFilteredReader(path, Filter{TimeStart: &start, TimeEnd: &end})
	if err != nil {
		t.Fatalf("NewFilteredReader failed: %v", err)
	}
	defer reader.Close()

	read := readAll(t, reader)
	if len(read) != 2 {
		t.Fatalf("got %d events, want 2", len(read))
	}
	if read[0].Command.Command != CommandPause {
		t.Errorf("first command = %v, want PAUSE", read[0].Command.Command)
	}
}

func TestFilterMatchesEventWithoutPayload(t *testing.T) {
	cmd := CommandStart
	f := Filter{Command: &cmd}
	if f.Matches(Event{EngineID: "engine-1"}) {
		t.Error("Matches(event without payload) = true, want false")
	}

	var empty Filter
	if !empty.Matches(Event{}) {
		t.Error("empty filter Matches() = false, want true")
	}
}
