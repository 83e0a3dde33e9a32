// Package app wires configuration, logging and the trace packages into the
// editrace commands.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/editrace/internal/batch"
	"github.com/dshills/editrace/internal/config"
	"github.com/dshills/editrace/internal/gate"
	"github.com/dshills/editrace/internal/stats"
	"github.com/dshills/editrace/internal/validate"
)

// Options contains application startup options.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// ConfigOptions are passed to config.Load.
	ConfigOptions []config.Option

	// Overrides is the command-line layer of the configuration, keyed by
	// dotted setting path such as "validate.strict_time".
	Overrides map[string]any

	// Format selects the result format: text, json or yaml.
	Format string

	// GatePath is an optional Lua gate script.
	GatePath string

	// Limit stops replay after this many transactions. Zero replays all.
	Limit int

	// Output is the file replay and strip write to, if set.
	Output string

	// Version is printed by the version command.
	Version string

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

// Application holds what every command needs.
type Application struct {
	opts   Options
	cfg    *config.Config
	logger *Logger
	stdout io.Writer
	gate   *gate.Gate
}

// New loads the configuration and builds an Application.
func New(opts Options) (*Application, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Format == "" {
		opts.Format = "text"
	}
	switch opts.Format {
	case "text", "json", "yaml":
	default:
		return nil, fmt.Errorf("%w %q (want text, json or yaml)", ErrUnknownFormat, opts.Format)
	}

	cfg, err := config.Load(opts.ConfigPath, opts.ConfigOptions...)
	if err != nil {
		return nil, err
	}
	if len(opts.Overrides) > 0 {
		if err := cfg.Apply(nest(opts.Overrides)); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	app := &Application{
		opts:   opts,
		cfg:    cfg,
		stdout: opts.Stdout,
		logger: NewLogger(LoggerConfig{
			Level:  ParseLogLevel(cfg.Log.Level),
			Output: opts.Stderr,
			Prefix: "editrace",
		}),
	}

	if opts.GatePath != "" {
		gl := app.logger.WithComponent("gate")
		g, err := gate.Load(opts.GatePath, gate.WithPrint(func(s string) {
			gl.Info("%s", s)
		}))
		if err != nil {
			return nil, err
		}
		app.gate = g
	}
	return app, nil
}

// Config returns the effective configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Logger returns the application's logger.
func (app *Application) Logger() *Logger {
	return app.logger
}

// Close releases the gate script, if any.
func (app *Application) Close() error {
	if app.gate != nil {
		return app.gate.Close()
	}
	return nil
}

// Run executes the command named by args[0] with the remaining arguments.
func (app *Application) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("no command given")
	}
	cmd, ok := lookupCommand(args[0])
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownCommand, args[0])
	}
	rest := args[1:]
	if len(rest) < cmd.minArgs {
		return usageError("editrace %s %s", cmd.name, cmd.usage)
	}
	return cmd.run(app, ctx, rest)
}

// batchConfig translates the configuration into a batch.Config.
// validateConfig maps the validate settings onto validate.Config with the
// validator's own defaults applied.
func (app *Application) validateConfig() validate.Config {
	vcfg := validate.Config{
		ContextWindow: app.cfg.Validate.ContextWindow,
		ProgressEvery: app.cfg.Validate.ProgressEvery,
	}
	if app.cfg.Validate.StrictTime {
		vcfg.TimeOrder = validate.TimeOrderStrict
	}
	return validate.New(vcfg).Config()
}

func (app *Application) batchConfig() batch.Config {
	bcfg := batch.Config{
		Workers:      app.cfg.Batch.Workers,
		Validate:     app.validateConfig(),
		StatsOptions: []stats.Option{stats.WithSampleCap(app.cfg.Stats.SampleCap)},
		Progress:     app.logProgress,
		OnResult: func(r batch.FileResult) {
			app.logger.WithFields(map[string]any{
				"file":    r.Path,
				"status":  r.Status,
				"elapsed": r.Elapsed,
			}).Debug("finished")
		},
	}
	if app.gate != nil {
		bcfg.Gate = app.gate
	}
	return bcfg
}

// logProgress reports replay progress every validate.progress_every
// transactions.
func (app *Application) logProgress(path string, done, total int) {
	if done == 0 {
		return
	}
	l := app.logger.WithField("file", path)
	if done == total {
		l.Debug("replayed %d txns", total)
		return
	}
	l.Info("replayed %d / %d txns", done, total)
}

// nest turns dotted keys into the nested map config.Apply expects.
func nest(flat map[string]any) map[string]any {
	out := make(map[string]any)
	for key, v := range flat {
		section, setting, ok := strings.Cut(key, ".")
		if !ok {
			out[key] = v
			continue
		}
		m, _ := out[section].(map[string]any)
		if m == nil {
			m = make(map[string]any)
			out[section] = m
		}
		m[setting] = v
	}
	return out
}
