// Package main is the entry point for the editrace command.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/editrace/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	opts, args, err := parseFlags(argv, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	opts.Stdout = stdout
	opts.Stderr = stderr
	opts.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	// Handle signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx, args); err != nil {
		switch {
		case errors.Is(err, app.ErrFilesFailed):
			// Per-file results are already on stdout.
			application.Logger().Debug("%v", err)
		case errors.Is(err, app.ErrUsage), errors.Is(err, app.ErrUnknownCommand):
			fmt.Fprintf(stderr, "Error: %v\n\n", err)
			usage(stderr)
			return 2
		default:
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// parseFlags accepts flags both before and after the command name.
func parseFlags(argv []string, stderr io.Writer) (app.Options, []string, error) {
	var opts app.Options
	var (
		logLevel    string
		strictTime  bool
		workers     int
		placeholder string
	)

	fs := flag.NewFlagSet("editrace", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	fs.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	fs.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.BoolVar(&strictTime, "strict-time", false, "Require timestamps to never decrease")
	fs.StringVar(&opts.Format, "format", "text", "Result format (text, json, yaml)")
	fs.IntVar(&workers, "workers", 0, "Files processed at once (0 = one per CPU)")
	fs.StringVar(&opts.GatePath, "gate", "", "Lua script defining gate(report)")
	fs.IntVar(&opts.Limit, "limit", 0, "replay: stop after this many txns")
	fs.StringVar(&placeholder, "placeholder", "_", "strip: replacement for non-ASCII characters")
	fs.StringVar(&opts.Output, "o", "", "replay/strip: output file")
	fs.Usage = func() { usage(stderr); fs.PrintDefaults() }

	if err := fs.Parse(argv); err != nil {
		return opts, nil, err
	}
	args := fs.Args()
	if len(args) > 0 {
		cmd := args[0]
		if err := fs.Parse(args[1:]); err != nil {
			return opts, nil, err
		}
		args = append([]string{cmd}, fs.Args()...)
	}

	// Only flags given explicitly override the config file and environment.
	overrides := make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			overrides["log.level"] = logLevel
		case "strict-time":
			overrides["validate.strict_time"] = strictTime
		case "workers":
			overrides["batch.workers"] = workers
		case "placeholder":
			overrides["strip.placeholder"] = placeholder
		}
	})
	opts.Overrides = overrides

	return opts, args, nil
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "editrace - replay, validate and measure text editing traces\n\n")
	fmt.Fprintf(w, "Usage: editrace [options] COMMAND [options] ARGS...\n\n")
	fmt.Fprintf(w, "Commands:\n")
	for _, line := range app.CommandHelp() {
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  editrace check ./traces                  Validate every trace in a directory\n")
	fmt.Fprintf(w, "  editrace -strict-time check a.json.gz    Also require ordered timestamps\n")
	fmt.Fprintf(w, "  editrace stats -format json a.json.gz    Statistics as JSON\n")
	fmt.Fprintf(w, "  editrace replay -limit 100 a.json        Document after 100 txns\n")
	fmt.Fprintf(w, "  editrace check -gate ci.lua ./traces     Fail traces the gate rejects\n\n")
	fmt.Fprintf(w, "Options:\n")
}
