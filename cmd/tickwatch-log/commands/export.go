package commands

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/tickwatch/tickwatch-go/pkg/log"
)

// exportRecord is the flattened form of an event used by JSONL and CSV.
type exportRecord struct {
	Timestamp  time.Time     `json:"timestamp"`
	EngineID   string        `json:"engine_id"`
	Category   string        `json:"category"`
	Command    string        `json:"command,omitempty"`
	Applied    *bool         `json:"applied,omitempty"`
	OldState   string        `json:"old_state,omitempty"`
	NewState   string        `json:"new_state,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Elapsed    string        `json:"elapsed,omitempty"`
	ElapsedDur time.Duration `json:"elapsed_ns,omitempty"`
}

func newExportRecord(event log.Event) exportRecord {
	rec := exportRecord{
		Timestamp: event.Timestamp.UTC(),
		EngineID:  event.EngineID,
		Category:  event.Category.String(),
	}
	if event.Command != nil {
		applied := event.Command.Applied
		rec.Command = event.Command.Command.String()
		rec.Applied = &applied
	}
	if event.StateChange != nil {
		rec.OldState = event.StateChange.OldState
		rec.NewState = event.StateChange.NewState
		rec.Reason = event.StateChange.Reason
	}
	if event.Elapsed != nil {
		rec.Elapsed = event.Elapsed.String()
		rec.ElapsedDur = event.Elapsed.Duration()
	}
	return rec
}

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(newExportRecord(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
	return nil
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	// Write header
	header := []string{"timestamp", "engine_id", "category", "command", "applied", "old_state", "new_state", "reason", "elapsed"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		rec := newExportRecord(event)
		applied := ""
		if rec.Applied != nil {
			applied = strconv.FormatBool(*rec.Applied)
		}

		row := []string{
			rec.Timestamp.Format(timestampLayout),
			rec.EngineID,
			rec.Category,
			rec.Command,
			applied,
			rec.OldState,
			rec.NewState,
			rec.Reason,
			rec.Elapsed,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
