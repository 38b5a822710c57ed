// Package interactive provides the interactive command-line interface
// for tickwatch.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/tickwatch/tickwatch-go/pkg/stopwatch"
)

const (
	defaultWatchDuration = 3 * time.Second
	defaultWatchInterval = 250 * time.Millisecond
)

// Engine is the part of the stopwatch engine the console drives.
type Engine interface {
	Start()
	Pause()
	Stop()
	Snapshot() stopwatch.Snapshot
	ID() string
	Period() time.Duration
}

// Console handles interactive mode for tickwatch.
type Console struct {
	engine Engine
	rl     *readline.Instance
	out    io.Writer
}

// New creates a new interactive console for engine.
func New(engine Engine) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "stopwatch> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	c := newConsole(engine, rl.Stdout())
	c.rl = rl
	return c, nil
}

func newConsole(engine Engine, out io.Writer) *Console {
	return &Console{engine: engine, out: out}
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.out
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if quit := c.Execute(ctx, line); quit {
			cancel()
			return
		}
	}
}

// Execute runs a single command line. It reports whether the console
// should exit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "start", "s":
		c.engine.Start()
		c.printSnapshot()

	case "pause", "p":
		c.engine.Pause()
		c.printSnapshot()

	case "stop", "reset":
		c.engine.Stop()
		c.printSnapshot()

	case "status", "st":
		c.cmdStatus()

	case "watch", "w":
		c.cmdWatch(ctx, args)

	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Stopwatch Commands:
  Control:
    start              - Start or resume the stopwatch
    pause              - Pause, keeping the elapsed time
    stop               - Stop and reset to zero

  Display:
    status             - Show engine status
    watch [dur] [int]  - Redraw the time every int (default 250ms) for dur (default 3s)

  General:
    help               - Show this help
    quit               - Exit`)
}

func (c *Console) printSnapshot() {
	fmt.Fprintln(c.out, c.engine.Snapshot())
}

func (c *Console) cmdStatus() {
	snap := c.engine.Snapshot()
	fmt.Fprintf(c.out, "Engine:           %s\n", c.engine.ID())
	fmt.Fprintf(c.out, "State:            %s\n", snap.State)
	fmt.Fprintf(c.out, "Elapsed:          %s\n", snap.Elapsed.Format(snap.TicksPerSecond))
	fmt.Fprintf(c.out, "Ticks per second: %d\n", snap.TicksPerSecond)
	fmt.Fprintf(c.out, "Tick period:      %v\n", c.engine.Period())
}

// cmdWatch re-renders the snapshot on an interval until the duration
// elapses or ctx is cancelled.
func (c *Console) cmdWatch(ctx context.Context, args []string) {
	duration := defaultWatchDuration
	interval := defaultWatchInterval

	if len(args) > 0 {
		d, err := time.ParseDuration(args[0])
		if err != nil || d <= 0 {
			fmt.Fprintf(c.out, "Invalid duration: %s\n", args[0])
			return
		}
		duration = d
	}
	if len(args) > 1 {
		d, err := time.ParseDuration(args[1])
		if err != nil || d <= 0 {
			fmt.Fprintf(c.out, "Invalid interval: %s\n", args[1])
			return
		}
		interval = d
	}

	c.printSnapshot()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.NewTimer(duration)
	defer deadline.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			c.printSnapshot()
			return
		case <-ticker.C:
			c.printSnapshot()
		}
	}
}
