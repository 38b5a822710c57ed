package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tickwatch/tickwatch-go/pkg/log"
)

// createTestLogFile writes events to a new log file and returns its path.
func createTestLogFile(t *testing.T, events []log.Event) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.swlog")

	logger, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	for _, e := range events {
		logger.Log(e)
	}
	logger.Close()

	return path
}

func commandEvent(ts time.Time, engineID string, cmd log.Command, applied bool, elapsed *log.ElapsedSnapshot) log.Event {
	return log.Event{
		Timestamp: ts,
		EngineID:  engineID,
		Category:  log.CategoryCommand,
		Elapsed:   elapsed,
		Command:   &log.CommandEvent{Command: cmd, Applied: applied},
	}
}

func stateEvent(ts time.Time, engineID, oldState, newState, reason string) log.Event {
	return log.Event{
		Timestamp:   ts,
		EngineID:    engineID,
		Category:    log.CategoryState,
		StateChange: &log.StateChangeEvent{OldState: oldState, NewState: newState, Reason: reason},
	}
}

func TestExportToJSONL(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	elapsed := &log.ElapsedSnapshot{Seconds: 1, SubTicks: 500, TicksPerSecond: 1000}
	events := []log.Event{
		commandEvent(ts, "engine-1", log.CommandPause, true, elapsed),
		stateEvent(ts, "engine-1", "RUNNING", "PAUSED", "PAUSE"),
	}

	path := createTestLogFile(t, events)
	output := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", output); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if first["engine_id"] != "engine-1" {
		t.Errorf("engine_id = %v, want engine-1", first["engine_id"])
	}
	if first["category"] != "COMMAND" {
		t.Errorf("category = %v, want COMMAND", first["category"])
	}
	if first["command"] != "PAUSE" {
		t.Errorf("command = %v, want PAUSE", first["command"])
	}
	if first["applied"] != true {
		t.Errorf("applied = %v, want true", first["applied"])
	}
	if first["elapsed"] != "0:00:01.500" {
		t.Errorf("elapsed = %v, want 0:00:01.500", first["elapsed"])
	}
	if first["elapsed_ns"] != float64(1500*time.Millisecond) {
		t.Errorf("elapsed_ns = %v, want %d", first["elapsed_ns"], 1500*time.Millisecond)
	}

	var second map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if second["new_state"] != "PAUSED" {
		t.Errorf("new_state = %v, want PAUSED", second["new_state"])
	}
	if _, ok := second["applied"]; ok {
		t.Error("state event should not carry applied")
	}
}

func TestExportToCSV(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)
	events := []log.Event{
		commandEvent(ts, "engine-1", log.CommandStart, false, nil),
		stateEvent(ts, "engine-1", "IDLE", "RUNNING", "START"),
	}

	path := createTestLogFile(t, events)
	output := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", output); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(output)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records (header + 2), got %d", len(records))
	}
	if records[0][0] != "timestamp" || records[0][8] != "elapsed" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if got := records[1][0]; got != "2026-01-28T10:15:32.123456Z" {
		t.Errorf("timestamp = %q", got)
	}
	if records[1][3] != "START" || records[1][4] != "false" {
		t.Errorf("command row = %v", records[1])
	}
	if records[2][5] != "IDLE" || records[2][6] != "RUNNING" || records[2][7] != "START" {
		t.Errorf("state row = %v", records[2])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := createTestLogFile(t, nil)

	err := RunExport(path, "xml", filepath.Join(t.TempDir(), "out.xml"))
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("expected unknown format error, got %v", err)
	}
}

func TestExportMissingFile(t *testing.T) {
	err := RunExport(filepath.Join(t.TempDir(), "missing.swlog"), "jsonl", "")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestExportRecordCommandOnly(t *testing.T) {
	rec := newExportRecord(commandEvent(time.Unix(0, 0), "e", log.CommandStop, true, nil))

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(rec); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "elapsed") {
		t.Errorf("unexpected elapsed field in %s", buf.String())
	}
}
