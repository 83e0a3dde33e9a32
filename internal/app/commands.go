package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/dshills/editrace/internal/batch"
	"github.com/dshills/editrace/internal/engine"
	"github.com/dshills/editrace/internal/engine/buffer"
	"github.com/dshills/editrace/internal/trace/tracefile"
	"github.com/dshills/editrace/internal/validate"
	"github.com/dshills/editrace/internal/watcher"
)

type command struct {
	name    string
	usage   string
	summary string
	minArgs int
	run     func(app *Application, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"check": {
		name:    "check",
		usage:   "FILE|DIR...",
		summary: "replay each trace and verify it reproduces its end content",
		minArgs: 1,
		run:     (*Application).check,
	},
	"stats": {
		name:    "stats",
		usage:   "FILE|DIR...",
		summary: "print editing statistics for each trace",
		minArgs: 1,
		run:     (*Application).stats,
	},
	"replay": {
		name:    "replay",
		usage:   "FILE",
		summary: "replay a trace (or its first -limit txns) and print the document",
		minArgs: 1,
		run:     (*Application).replay,
	},
	"convert": {
		name:    "convert",
		usage:   "FILE|DIR...",
		summary: "rewrite legacy traces in place with per-patch timestamps",
		minArgs: 1,
		run:     (*Application).convert,
	},
	"strip": {
		name:    "strip",
		usage:   "FILE|DIR...",
		summary: "write ASCII-only copies of traces",
		minArgs: 1,
		run:     (*Application).strip,
	},
	"watch": {
		name:    "watch",
		usage:   "DIR...",
		summary: "check traces now and again whenever they change",
		minArgs: 1,
		run:     (*Application).watch,
	},
	"version": {
		name:    "version",
		summary: "print the version",
		run:     (*Application).version,
	},
}

func lookupCommand(name string) (command, bool) {
	cmd, ok := commands[name]
	return cmd, ok
}

// CommandHelp returns one line per command, sorted by name.
func CommandHelp() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		c := commands[name]
		lines = append(lines, fmt.Sprintf("  %-8s %-12s %s", c.name, c.usage, c.summary))
	}
	return lines
}

func (app *Application) check(ctx context.Context, args []string) error {
	return app.runBatch(ctx, args, func(*batch.Config) {})
}

// stats reads each trace without replaying it; the report does not depend
// on the document.
func (app *Application) stats(ctx context.Context, args []string) error {
	return app.runBatch(ctx, args, func(c *batch.Config) {
		c.Stats = true
		c.SkipValidate = true
	})
}

func (app *Application) runBatch(ctx context.Context, args []string, adjust func(*batch.Config)) error {
	paths, err := batch.Expand(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return usageError("no trace files in %v", args)
	}

	cfg := app.batchConfig()
	adjust(&cfg)

	sum, err := batch.Run(ctx, paths, cfg)
	if rerr := app.render(sum); rerr != nil {
		return rerr
	}
	if err != nil {
		return err
	}
	if !sum.OK() {
		return ErrFilesFailed
	}
	return nil
}

func (app *Application) replay(_ context.Context, args []string) error {
	if len(args) != 1 {
		return usageError("editrace replay [-limit N] [-o FILE] FILE")
	}
	path := args[0]
	tr, err := tracefile.Load(path)
	if err != nil {
		return err
	}

	buf := buffer.NewBufferFromString(tr.StartContent)
	eng := engine.New(
		engine.WithLimit(app.opts.Limit),
		engine.WithProgress(app.cfg.Validate.ProgressEvery, func(done, total int) {
			app.logProgress(path, done, total)
		}),
	)
	res, err := eng.Replay(tr, buf)
	if err != nil {
		return NewOperationError("replay", path, err)
	}

	l := app.logger.WithFields(map[string]any{"file": path, "txns": res.Txns, "patches": res.Patches})
	if res.Txns == len(tr.Txns) {
		if m := validate.Compare(buf.Snapshot(), tr.EndContent, app.validateConfig().ContextWindow); m != nil {
			l.Warn("document differs from endContent: %v", m)
		} else {
			l.Info("document matches endContent")
		}
	} else {
		l.Info("stopped after %d of %d txns", res.Txns, len(tr.Txns))
	}

	if app.opts.Output == "" {
		_, err = fmt.Fprint(app.stdout, buf.Text())
		return err
	}
	f, err := os.Create(app.opts.Output)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(buf.Text()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (app *Application) convert(_ context.Context, args []string) error {
	paths, err := batch.Expand(args)
	if err != nil {
		return err
	}
	var errs []error
	for _, path := range paths {
		l := app.logger.WithField("file", path)
		changed, err := tracefile.Convert(path)
		switch {
		case err != nil:
			l.Error("convert failed: %v", err)
			errs = append(errs, NewOperationError("convert", path, err))
		case changed:
			l.Info("converted to per-patch timestamps")
		default:
			l.Info("already current")
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrFilesFailed, errors.Join(errs...))
	}
	return nil
}

func (app *Application) strip(_ context.Context, args []string) error {
	paths, err := batch.Expand(args)
	if err != nil {
		return err
	}
	if app.opts.Output != "" && len(paths) != 1 {
		return usageError("-o needs exactly one input file, got %d", len(paths))
	}
	placeholder := app.cfg.PlaceholderRune()

	var errs []error
	for _, path := range paths {
		l := app.logger.WithField("file", path)
		dst, err := tracefile.Sanitize(path, app.opts.Output, placeholder)
		if err != nil {
			l.Error("strip failed: %v", err)
			errs = append(errs, NewOperationError("strip", path, err))
			continue
		}
		l.Info("wrote %s", dst)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrFilesFailed, errors.Join(errs...))
	}
	return nil
}

// watch checks every trace under args, then re-checks each trace file
// whenever it settles after a change. It returns when ctx is done.
func (app *Application) watch(ctx context.Context, args []string) error {
	l := app.logger.WithComponent("watch")

	err := app.runBatch(ctx, args, func(*batch.Config) {})
	switch {
	case ctx.Err() != nil:
		return nil
	case err == nil, errors.Is(err, ErrFilesFailed), errors.Is(err, ErrUsage):
		// Failing or missing traces are reported and watched for fixes.
	default:
		return err
	}

	fsw, err := watcher.NewFSNotifyWatcher(watcher.WithEventFilter(watcher.TraceFiles))
	if err != nil {
		return err
	}
	w := watcher.NewDebouncedWatcher(fsw, app.cfg.Watch.Debounce)
	defer w.Close()

	for _, dir := range args {
		if err := w.Watch(dir); err != nil {
			return NewOperationError("watch", dir, err)
		}
		l.Info("watching %s", dir)
	}

	watcher.Run(ctx, w, func(e watcher.Event) {
		if e.Gone() {
			l.WithField("file", e.Path).Info("removed")
			return
		}
		l.WithFields(map[string]any{"file": e.Path, "op": e.Op}).Debug("changed")
		cfg := app.batchConfig()
		sum, err := batch.Run(ctx, []string{e.Path}, cfg)
		if err != nil {
			return
		}
		if err := app.render(sum); err != nil {
			l.Error("render: %v", err)
		}
	}, func(err error) {
		l.Warn("watcher: %v", err)
	})
	return nil
}

func (app *Application) version(context.Context, []string) error {
	v := app.opts.Version
	if v == "" {
		v = "dev"
	}
	_, err := fmt.Fprintf(app.stdout, "editrace %s\n", v)
	return err
}
