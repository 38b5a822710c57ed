package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tickwatch/tickwatch-go/pkg/stopwatch"
)

// Config holds the command configuration.
//
// Values are resolved in order: built-in defaults, then the YAML file
// named by -config, then flags given explicitly on the command line.
type Config struct {
	ConfigFile     string        `yaml:"-"`
	TicksPerSecond uint32        `yaml:"ticks_per_second"`
	Period         time.Duration `yaml:"period"`
	LogLevel       string        `yaml:"log_level"`
	EventLog       string        `yaml:"event_log"`
	EngineID       string        `yaml:"engine_id"`
	Interactive    bool          `yaml:"interactive"`
	Run            time.Duration `yaml:"run"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		TicksPerSecond: stopwatch.DefaultTicksPerSecond,
		LogLevel:       "info",
		Interactive:    true,
	}
}

// registerFlags binds the command flags to cfg.
func registerFlags(fs *flag.FlagSet, cfg *Config, tps *uint) {
	fs.StringVar(&cfg.ConfigFile, "config", "", "Configuration file path (YAML)")
	fs.UintVar(tps, "ticks-per-second", stopwatch.DefaultTicksPerSecond, "Sub-second resolution (1000 = millisecond ticks)")
	fs.DurationVar(&cfg.Period, "period", 0, "Tick period (default 1s / ticks-per-second)")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.EventLog, "event-log", "", "Write engine events to this file (.swlog)")
	fs.StringVar(&cfg.EngineID, "engine-id", "", "Engine identifier in events (random if empty)")
	fs.BoolVar(&cfg.Interactive, "interactive", true, "Run the interactive console")
	fs.DurationVar(&cfg.Run, "run", 0, "Headless mode: run for this long, then print the result")
}

// resolveConfig parses args and merges defaults, config file and flags.
func resolveConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var flags Config
	var tps uint
	registerFlags(fs, &flags, &tps)

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if tps > uint(stopwatch.MaxTicksPerSecond) {
		return Config{}, fmt.Errorf("ticks-per-second must be at most %d, got %d", stopwatch.MaxTicksPerSecond, tps)
	}
	flags.TicksPerSecond = uint32(tps)

	cfg := DefaultConfig()
	if flags.ConfigFile != "" {
		if err := loadConfigFile(flags.ConfigFile, &cfg); err != nil {
			return Config{}, err
		}
		cfg.ConfigFile = flags.ConfigFile
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ticks-per-second":
			cfg.TicksPerSecond = flags.TicksPerSecond
		case "period":
			cfg.Period = flags.Period
		case "log-level":
			cfg.LogLevel = flags.LogLevel
		case "event-log":
			cfg.EventLog = flags.EventLog
		case "engine-id":
			cfg.EngineID = flags.EngineID
		case "interactive":
			cfg.Interactive = flags.Interactive
		case "run":
			cfg.Run = flags.Run
		}
	})

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// loadConfigFile overlays the YAML file at path onto cfg.
// Unknown keys are rejected.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c Config) validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}
	if c.TicksPerSecond == 0 {
		return fmt.Errorf("ticks-per-second must be positive")
	}
	if c.TicksPerSecond > stopwatch.MaxTicksPerSecond {
		return fmt.Errorf("ticks-per-second must be at most %d, got %d", stopwatch.MaxTicksPerSecond, c.TicksPerSecond)
	}
	if c.Period < 0 {
		return fmt.Errorf("period must not be negative, got %v", c.Period)
	}
	if c.Run < 0 {
		return fmt.Errorf("run must not be negative, got %v", c.Run)
	}
	return nil
}
