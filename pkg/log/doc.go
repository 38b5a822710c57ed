// Package log provides structured event capture for stopwatch engines.
//
// This package defines the Logger interface and Event types for recording
// what an engine was told to do and how its state changed. It is separate
// from operational logging (log, slog) - event capture provides a complete
// machine-readable trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure capture by passing a Logger to the engine:
//
//	// For development: log to console via slog
//	cfg.Logger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	cfg.Logger, _ = log.NewFileLogger("/var/log/tickwatch/engine.swlog")
//
//	// Both: use MultiLogger
//	cfg.Logger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    fileLogger,
//	)
//
// # Event Types
//
// Every Start, Pause and Stop produces a CommandEvent, including the ones
// the engine ignored because they did not apply to its current state. Every
// transition additionally produces a StateChangeEvent. Both carry the
// elapsed value at the moment the command was handled.
//
// Individual ticks are not captured.
//
// # File Format
//
// Log files use CBOR encoding with .swlog extension. The tickwatch-log CLI
// tool provides viewing, statistics and export capabilities.
package log
