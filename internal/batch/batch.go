// Package batch checks many trace files concurrently.
//
// Each file is loaded, validated and analysed by its own worker; files share
// nothing, so a failure in one never affects another. Run returns a Summary
// listing every file with its outcome.
package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/editrace/internal/gate"
	"github.com/dshills/editrace/internal/stats"
	"github.com/dshills/editrace/internal/trace/tracefile"
	"github.com/dshills/editrace/internal/validate"
)

// Status is the outcome of one file.
type Status string

const (
	// StatusPassed indicates the file loaded, validated and passed the gate.
	StatusPassed Status = "passed"
	// StatusFailed indicates the file could not be loaded or failed
	// validation.
	StatusFailed Status = "failed"
	// StatusRejected indicates the gate script rejected the file's report.
	StatusRejected Status = "rejected"
	// StatusCanceled indicates the run was canceled before the file was
	// processed.
	StatusCanceled Status = "canceled"
)

// Checker judges a statistics report. *gate.Gate implements it.
type Checker interface {
	Check(ctx context.Context, file string, r stats.Report) (gate.Verdict, error)
}

// Config configures a Run.
type Config struct {
	// Workers bounds the number of files processed at once.
	// Zero or less uses runtime.NumCPU().
	Workers int

	// Validate configures each file's validation.
	Validate validate.Config

	// SkipValidate loads and analyses files without replaying them.
	SkipValidate bool

	// Stats enables the statistics report. It is implied by Gate.
	Stats bool

	// StatsOptions configure each file's aggregator.
	StatsOptions []stats.Option

	// Gate, if set, judges each file's report.
	Gate Checker

	// Progress, if set, is called during each file's replay. It may be
	// called from several goroutines at once.
	Progress func(path string, done, total int)

	// OnResult, if set, is called as each file finishes. It may be called
	// from several goroutines at once.
	OnResult func(FileResult)
}

// FileResult is the outcome of one file.
type FileResult struct {
	Path    string            `json:"path" yaml:"path"`
	Status  Status            `json:"status" yaml:"status"`
	Err     error             `json:"-" yaml:"-"`
	Error   string            `json:"error,omitempty" yaml:"error,omitempty"`
	Summary *validate.Summary `json:"summary,omitempty" yaml:"summary,omitempty"`
	Report  *stats.Report     `json:"report,omitempty" yaml:"report,omitempty"`
	Verdict *gate.Verdict     `json:"verdict,omitempty" yaml:"verdict,omitempty"`
	Elapsed time.Duration     `json:"elapsed" yaml:"elapsed"`
}

// Summary is the outcome of a Run.
type Summary struct {
	RunID    string        `json:"run_id" yaml:"run_id"`
	Started  time.Time     `json:"started" yaml:"started"`
	Elapsed  time.Duration `json:"elapsed" yaml:"elapsed"`
	Files    []FileResult  `json:"files" yaml:"files"`
	Passed   int           `json:"passed" yaml:"passed"`
	Failed   int           `json:"failed" yaml:"failed"`
	Rejected int           `json:"rejected" yaml:"rejected"`
	Canceled int           `json:"canceled" yaml:"canceled"`
}

// OK reports whether every file passed.
func (s *Summary) OK() bool {
	return s.Passed == len(s.Files)
}

// Err joins the errors of every file that did not pass, or returns nil.
func (s *Summary) Err() error {
	var errs []error
	for _, f := range s.Files {
		switch {
		case f.Err != nil:
			errs = append(errs, f.Err)
		case f.Status == StatusRejected:
			errs = append(errs, fmt.Errorf("%s: %w: %s", f.Path, ErrRejected, f.Verdict.Reason))
		}
	}
	return errors.Join(errs...)
}

// ErrRejected marks a file whose report a gate rejected.
var ErrRejected = errors.New("rejected by gate")

// Run processes paths with at most cfg.Workers files in flight. Results keep
// the order of paths. The returned error is non-nil only when ctx ends
// before every file was processed; per-file failures are reported in the
// Summary.
func Run(ctx context.Context, paths []string, cfg Config) (*Summary, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	sum := &Summary{
		RunID:   uuid.New().String(),
		Started: time.Now(),
		Files:   make([]FileResult, len(paths)),
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, path := range paths {
		if ctx.Err() != nil {
			sum.Files[i] = canceled(path, ctx.Err())
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				sum.Files[i] = canceled(path, err)
			} else {
				sum.Files[i] = processFile(ctx, path, cfg)
			}
			if cfg.OnResult != nil {
				cfg.OnResult(sum.Files[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, f := range sum.Files {
		switch f.Status {
		case StatusPassed:
			sum.Passed++
		case StatusFailed:
			sum.Failed++
		case StatusRejected:
			sum.Rejected++
		case StatusCanceled:
			sum.Canceled++
		}
	}
	sum.Elapsed = time.Since(sum.Started)

	if sum.Canceled > 0 {
		return sum, ctx.Err()
	}
	return sum, nil
}

func canceled(path string, err error) FileResult {
	return FileResult{Path: path, Status: StatusCanceled, Err: err, Error: err.Error()}
}

// processFile runs one file through load, validation, statistics and the
// gate. It owns every value it creates.
func processFile(ctx context.Context, path string, cfg Config) FileResult {
	started := time.Now()
	res := FileResult{Path: path, Status: StatusPassed}
	fail := func(err error) FileResult {
		res.Status = StatusFailed
		res.Err = err
		res.Error = err.Error()
		res.Elapsed = time.Since(started)
		return res
	}

	tr, err := tracefile.Load(path)
	if err != nil {
		return fail(err)
	}

	if !cfg.SkipValidate {
		vcfg := cfg.Validate
		if cfg.Progress != nil {
			vcfg.Progress = func(done, total int) {
				cfg.Progress(path, done, total)
			}
		}
		vsum, err := validate.New(vcfg).Validate(tr)
		res.Summary = &vsum
		if err != nil {
			return fail(fmt.Errorf("%s: %w", path, err))
		}
	}

	if cfg.Stats || cfg.Gate != nil {
		r := stats.Analyze(tr, cfg.StatsOptions...)
		res.Report = &r
	}

	if cfg.Gate != nil {
		v, err := cfg.Gate.Check(ctx, path, *res.Report)
		if err != nil {
			return fail(fmt.Errorf("%s: %w", path, err))
		}
		res.Verdict = &v
		if !v.Pass {
			res.Status = StatusRejected
		}
	}

	res.Elapsed = time.Since(started)
	return res
}

// Expand resolves command-line arguments into trace file paths. Files are
// taken as given; directories contribute their trace files (see
// tracefile.IsTraceFile), sorted by name, without descending further.
func Expand(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && tracefile.IsTraceFile(e.Name()) {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}
