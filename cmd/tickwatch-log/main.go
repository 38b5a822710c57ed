// Command tickwatch-log is a tool for viewing and analyzing stopwatch event logs.
//
// Log files are created by tickwatch when run with the -event-log flag.
//
// Usage:
//
//	tickwatch-log <command> [flags] <file.swlog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View all events
//	tickwatch-log view session.swlog
//
//	# View only state transitions
//	tickwatch-log view -category state session.swlog
//
//	# View everything caused by pause requests
//	tickwatch-log view -command pause session.swlog
//
//	# Export to CSV
//	tickwatch-log export -format csv -o session.csv session.swlog
//
//	# Keep one engine's events in a new file
//	tickwatch-log filter -engine-id 5f1c2a9e -o bench.swlog session.swlog
//
//	# Show statistics
//	tickwatch-log stats session.swlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tickwatch/tickwatch-go/cmd/tickwatch-log/commands"
)

const usage = `tickwatch-log - Stopwatch Event Log Analyzer

Usage:
  tickwatch-log <command> [flags] <file.swlog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file

Use "tickwatch-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// requirePath returns the single positional log file argument.
func requirePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `tickwatch-log view - View log file in human-readable format

Usage:
  tickwatch-log view [flags] <file.swlog>

Flags:
`)
		fs.PrintDefaults()
	}

	engineID := fs.String("engine-id", "", "Filter by engine ID")
	category := fs.String("category", "", "Filter by category (command, state)")
	command := fs.String("command", "", "Filter by command (start, pause, stop)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	// Build filter
	filter := commands.ViewFilter{EngineID: *engineID}

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if *command != "" {
		c, err := commands.ParseCommandFlag(*command)
		if err != nil {
			fail(err)
		}
		filter.Command = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `tickwatch-log export - Export log file to JSON or CSV format

Usage:
  tickwatch-log export [flags] <file.swlog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `tickwatch-log filter - Filter log file and write to new file

Usage:
  tickwatch-log filter [flags] <file.swlog>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	engineID := fs.String("engine-id", "", "Filter by engine ID")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	category := fs.String("category", "", "Filter by category (command, state)")
	command := fs.String("command", "", "Filter by command (start, pause, stop)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:    *output,
		EngineID:  *engineID,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Category:  *category,
		Command:   *command,
	}

	if err := commands.RunFilter(path, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `tickwatch-log stats - Show statistics about the log file

Usage:
  tickwatch-log stats <file.swlog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
