// Command tickwatch is a reference front end for the stopwatch engine.
//
// It forwards start, pause and stop requests to an engine and renders its
// snapshots, either from an interactive console or headless for a fixed
// duration.
//
// Usage:
//
//	tickwatch [flags]
//
// Flags:
//
//	-config string            Configuration file path (YAML)
//	-ticks-per-second uint    Sub-second resolution (default 1000)
//	-period duration          Tick period (default 1s / ticks-per-second)
//	-log-level string         Log level: debug, info, warn, error (default "info")
//	-event-log string         Write engine events to this file (.swlog)
//	-engine-id string         Engine identifier in events (random if empty)
//	-interactive              Run the interactive console (default true)
//	-run duration             Headless mode: run for this long, then print the result
//
// Examples:
//
//	# Interactive stopwatch with millisecond ticks
//	tickwatch
//
//	# Tenth-of-a-second display, events captured to a file
//	tickwatch -ticks-per-second 10 -event-log session.swlog
//
//	# Run for 90 seconds without a console
//	tickwatch -run 90s
//
// Config file:
//
//	ticks_per_second: 100
//	period: 10ms
//	log_level: debug
//	event_log: /var/log/tickwatch/session.swlog
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tickwatch/tickwatch-go/cmd/tickwatch/interactive"
	eventlog "github.com/tickwatch/tickwatch-go/pkg/log"
	"github.com/tickwatch/tickwatch-go/pkg/stopwatch"
)

func main() {
	config, err := resolveConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	setupLogging(config.LogLevel)

	log.Println("tickwatch")
	log.Println("=========")
	if config.ConfigFile != "" {
		log.Printf("Config file: %s", config.ConfigFile)
	}
	log.Printf("Ticks per second: %d", config.TicksPerSecond)

	eventLogger, closeEvents, err := createEventLogger(config, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to open event log: %v", err)
	}
	defer closeEvents()

	engine, err := newEngine(config, eventLogger, closeEvents)
	if err != nil {
		log.Fatalf("Failed to create engine: %v", err)
	}
	log.Printf("Engine %s (period %v)", engine.ID(), engine.Period())

	engine.OnStateChange(func(oldState, newState stopwatch.State) {
		log.Printf("State: %s -> %s", oldState, newState)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	switch {
	case config.Run > 0:
		runHeadless(ctx, engine, config.Run, sigCh, os.Stdout)
		engine.Stop()
		return

	case config.Interactive:
		console, err := interactive.New(engine)
		if err != nil {
			closeEvents()
			log.Fatalf("Failed to create interactive console: %v", err)
		}
		// Redirect log output through readline to avoid interfering with input
		log.SetOutput(console.Stdout())
		go console.Run(ctx, cancel)

	default:
		engine.Start()
	}

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}

	log.Printf("Final: %s", engine.Snapshot())
	engine.Stop()
	log.Println("Goodbye!")
}

// newEngine creates the engine feeding eventLogger. When creation fails
// closeEvents has already been called.
func newEngine(config Config, eventLogger eventlog.Logger, closeEvents func()) (*stopwatch.Engine, error) {
	engine, err := stopwatch.NewEngineWithConfig(stopwatch.Config{
		TicksPerSecond: config.TicksPerSecond,
		Period:         config.Period,
		Logger:         eventLogger,
		ID:             config.EngineID,
	})
	if err != nil {
		closeEvents()
		return nil, err
	}
	return engine, nil
}

// runHeadless starts the engine, waits for d or a signal, pauses and
// prints the result to w.
func runHeadless(ctx context.Context, engine *stopwatch.Engine, d time.Duration, sigCh <-chan os.Signal, w io.Writer) {
	engine.Start()

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}

	engine.Pause()
	fmt.Fprintln(w, engine.Snapshot())
}

// createEventLogger builds the engine event sink from the configuration.
// The returned close function is always non-nil.
func createEventLogger(config Config, console io.Writer) (eventlog.Logger, func(), error) {
	var loggers []eventlog.Logger
	closeFn := func() {}

	if config.EventLog != "" {
		fileLogger, err := eventlog.NewFileLogger(config.EventLog)
		if err != nil {
			return nil, closeFn, err
		}
		log.Printf("Event log: %s", config.EventLog)
		loggers = append(loggers, fileLogger)
		closeFn = func() {
			if err := fileLogger.Close(); err != nil {
				log.Printf("Error closing event log: %v", err)
			}
		}
	}

	if config.LogLevel == "debug" {
		handler := slog.NewTextHandler(console, &slog.HandlerOptions{Level: slog.LevelDebug})
		loggers = append(loggers, eventlog.NewSlogAdapter(slog.New(handler)))
	}

	switch len(loggers) {
	case 0:
		return eventlog.NoopLogger{}, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	default:
		return eventlog.NewMultiLogger(loggers...), closeFn, nil
	}
}

func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}
}
