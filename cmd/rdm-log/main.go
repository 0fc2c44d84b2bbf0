// Command rdm-log views and analyzes protocol capture files written by
// rdm-responder -capture.
//
// Usage:
//
//	rdm-log <command> [flags] <file.rlog>
//
// Commands:
//
//	view     View events in human-readable format
//	export   Export events as JSON lines or CSV
//	filter   Copy matching events to a new capture file
//	stats    Show statistics about the capture
//
// Examples:
//
//	# Responses to DEVICE_LABEL requests
//	rdm-log view -pid DEVICE_LABEL -direction out rig.rlog
//
//	# Host link traffic only, as CSV
//	rdm-log export -layer host -format csv rig.rlog
//
//	# One session into its own file
//	rdm-log filter -session 3f2a9c1e-... -o session.rlog rig.rlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rdm-protocol/rdm-go/cmd/rdm-log/commands"
)

const usage = `rdm-log - RDM Protocol Capture Analyzer

Usage:
  rdm-log <command> [flags] <file.rlog>

Commands:
  view     View events in human-readable format
  export   Export events as JSON lines or CSV
  filter   Copy matching events to a new capture file
  stats    Show statistics about the capture

Use "rdm-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "view":
		err = runView(args)
	case "export":
		err = runExport(args)
	case "filter":
		err = runFilter(args)
	case "stats":
		err = runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newFlagSet creates a flag set for a subcommand with the shared filter
// flags registered.
func newFlagSet(name, summary string, opts *commands.FilterOptions) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "rdm-log %s - %s\n\nUsage:\n  rdm-log %s [flags] <file.rlog>\n\nFlags:\n", name, summary, name)
		fs.PrintDefaults()
	}
	if opts != nil {
		fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
		fs.StringVar(&opts.Source, "source", "", "Filter by source (responder UID or peer address)")
		fs.StringVar(&opts.PID, "pid", "", "Filter RDM events by PID name or number")
		fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
		fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
		fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (bus, host, responder)")
		fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
		fs.StringVar(&opts.Category, "category", "", "Filter by category (message, state, error)")
	}
	return fs
}

// capturePath parses args and returns the single positional argument.
func capturePath(fs *flag.FlagSet, args []string) (string, error) {
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if fs.NArg() < 1 {
		fs.Usage()
		return "", fmt.Errorf("log file path required")
	}
	return fs.Arg(0), nil
}

func runView(args []string) error {
	var opts commands.FilterOptions
	fs := newFlagSet("view", "View events in human-readable format", &opts)
	path, err := capturePath(fs, args)
	if err != nil {
		return err
	}
	return commands.RunView(path, opts, os.Stdout)
}

func runExport(args []string) error {
	var opts commands.FilterOptions
	fs := newFlagSet("export", "Export events as JSON lines or CSV", &opts)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path, err := capturePath(fs, args)
	if err != nil {
		return err
	}
	return commands.RunExport(path, *format, *output, opts, os.Stdout)
}

func runFilter(args []string) error {
	var opts commands.FilterOptions
	fs := newFlagSet("filter", "Copy matching events to a new capture file", &opts)
	output := fs.String("o", "", "Output file (required)")
	path, err := capturePath(fs, args)
	if err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("output file (-o) required")
	}
	return commands.RunFilter(path, *output, opts, os.Stdout)
}

func runStats(args []string) error {
	fs := newFlagSet("stats", "Show statistics about the capture", nil)
	path, err := capturePath(fs, args)
	if err != nil {
		return err
	}
	return commands.RunStats(path, os.Stdout)
}
