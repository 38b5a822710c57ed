package interactive

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickwatch/tickwatch-go/pkg/stopwatch"
)

func newTestConsole(t *testing.T) (*Console, *stopwatch.Engine, *stopwatch.ManualTickSource, *bytes.Buffer) {
	t.Helper()

	source := stopwatch.NewManualTickSource()
	engine, err := stopwatch.NewEngineWithConfig(stopwatch.Config{
		Source: source,
		ID:     "console-test",
	})
	require.NoError(t, err)

	var out bytes.Buffer
	return newConsole(engine, &out), engine, source, &out
}

func TestConsoleStartPauseStop(t *testing.T) {
	c, engine, source, out := newTestConsole(t)
	ctx := context.Background()

	assert.False(t, c.Execute(ctx, "start"))
	assert.Equal(t, stopwatch.StateRunning, engine.State())
	assert.Equal(t, 1, source.Active())

	source.Advance(1500)

	assert.False(t, c.Execute(ctx, "pause"))
	assert.Equal(t, stopwatch.StatePaused, engine.State())
	assert.Contains(t, out.String(), "0:00:01.500 PAUSED")

	assert.False(t, c.Execute(ctx, "stop"))
	assert.Equal(t, stopwatch.StateIdle, engine.State())
	assert.Equal(t, 0, source.Active())
	assert.Contains(t, out.String(), "0:00:00.000 IDLE")
}

func TestConsoleAliases(t *testing.T) {
	c, engine, source, _ := newTestConsole(t)
	ctx := context.Background()

	c.Execute(ctx, "  S  ")
	assert.Equal(t, stopwatch.StateRunning, engine.State())

	source.Advance(3)
	c.Execute(ctx, "p")
	assert.Equal(t, stopwatch.StatePaused, engine.State())

	c.Execute(ctx, "reset")
	assert.Equal(t, stopwatch.StateIdle, engine.State())
	assert.True(t, engine.Elapsed().IsZero())
}

func TestConsoleStatus(t *testing.T) {
	c, _, _, out := newTestConsole(t)

	c.Execute(context.Background(), "status")

	got := out.String()
	assert.Contains(t, got, "console-test")
	assert.Contains(t, got, "IDLE")
	assert.Contains(t, got, "Ticks per second: 1000")
	assert.Contains(t, got, "Tick period:      1ms")
}

func TestConsoleQuit(t *testing.T) {
	for _, cmd := range []string{"quit", "exit", "q", "QUIT"} {
		t.Run(cmd, func(t *testing.T) {
			c, _, _, out := newTestConsole(t)
			assert.True(t, c.Execute(context.Background(), cmd))
			assert.Contains(t, out.String(), "Exiting...")
		})
	}
}

func TestConsoleUnknownAndEmpty(t *testing.T) {
	c, _, _, out := newTestConsole(t)
	ctx := context.Background()

	assert.False(t, c.Execute(ctx, ""))
	assert.Empty(t, out.String())

	assert.False(t, c.Execute(ctx, "lap"))
	assert.Contains(t, out.String(), "Unknown command: lap")
}

func TestConsoleHelp(t *testing.T) {
	c, _, _, out := newTestConsole(t)

	c.Execute(context.Background(), "help")

	assert.Contains(t, out.String(), "Stopwatch Commands:")
	assert.Contains(t, out.String(), "watch [dur] [int]")
}

func TestConsoleWatch(t *testing.T) {
	c, _, _, out := newTestConsole(t)

	c.Execute(context.Background(), "watch 30ms 10ms")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	// Initial render plus the final one at the deadline.
	assert.GreaterOrEqual(t, len(lines), 2)
	for _, line := range lines {
		assert.Equal(t, "0:00:00.000 IDLE", line)
	}
}

func TestConsoleWatchStopsOnCancel(t *testing.T) {
	c, _, _, _ := newTestConsole(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		c.Execute(ctx, "watch 1h")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watch did not return after context cancellation")
	}
}

func TestConsoleWatchInvalidArgs(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"watch soon", "Invalid duration: soon"},
		{"watch -1s", "Invalid duration: -1s"},
		{"watch 1s never", "Invalid interval: never"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			c, _, _, out := newTestConsole(t)
			c.Execute(context.Background(), tt.line)
			assert.Equal(t, tt.want+"\n", out.String())
		})
	}
}
