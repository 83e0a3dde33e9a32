// Package validate checks a trace end to end: every timestamp parses,
// optionally timestamps never go backwards, every patch fits the document,
// and the replayed document equals the recorded end content.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dshills/editrace/internal/engine"
	"github.com/dshills/editrace/internal/engine/buffer"
	"github.com/dshills/editrace/internal/trace"
)

// DefaultContextWindow is the default number of code points shown on each
// side of a content mismatch.
const DefaultContextWindow = 20

// TimeOrderMode selects how timestamp ordering is checked.
type TimeOrderMode uint8

const (
	// TimeOrderOff accepts timestamps in any order.
	TimeOrderOff TimeOrderMode = iota
	// TimeOrderStrict requires timestamps to be non-decreasing across the
	// flattened patch sequence.
	TimeOrderStrict
)

// String returns the mode name.
func (m TimeOrderMode) String() string {
	switch m {
	case TimeOrderOff:
		return "off"
	case TimeOrderStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseTimeOrderMode parses "off" or "strict".
func ParseTimeOrderMode(s string) (TimeOrderMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "off", "none":
		return TimeOrderOff, nil
	case "strict", "on":
		return TimeOrderStrict, nil
	default:
		return TimeOrderOff, fmt.Errorf("unknown time order mode %q", s)
	}
}

// Config configures a Validator.
type Config struct {
	// TimeOrder selects the timestamp ordering check.
	TimeOrder TimeOrderMode

	// ContextWindow is the number of code points reported on each side of
	// a content mismatch. Zero uses DefaultContextWindow.
	ContextWindow int

	// ProgressEvery is the number of transactions between Progress calls.
	// Zero uses engine.DefaultProgressEvery.
	ProgressEvery int

	// Progress, if set, is called periodically during replay.
	Progress engine.ProgressFunc
}

// Summary describes a successfully validated trace.
type Summary struct {
	Txns     int `json:"txns" yaml:"txns"`
	Patches  int `json:"patches" yaml:"patches"`
	StartLen int `json:"start_len" yaml:"start_len"`
	EndLen   int `json:"end_len" yaml:"end_len"`
	// Astral is the number of characters in the final document that need a
	// surrogate pair under UTF-16.
	Astral  int           `json:"astral" yaml:"astral"`
	Elapsed time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Validator validates traces. It is stateless between calls.
type Validator struct {
	cfg Config
}

// New creates a validator.
func New(cfg Config) *Validator {
	if cfg.ContextWindow <= 0 {
		cfg.ContextWindow = DefaultContextWindow
	}
	if cfg.ProgressEvery <= 0 {
		cfg.ProgressEvery = engine.DefaultProgressEvery
	}
	return &Validator{cfg: cfg}
}

// Config returns the effective configuration.
func (v *Validator) Config() Config {
	return v.cfg
}

// Validate replays tr from its start content and checks every invariant.
// The first violation is returned; on failure the Summary holds the counts
// of what was applied before it.
func (v *Validator) Validate(tr *trace.Trace) (Summary, error) {
	started := time.Now()
	sum := Summary{StartLen: len([]rune(tr.StartContent))}
	if err := tr.Check(); err != nil {
		var se *trace.StructureError
		if errors.As(err, &se) {
			err = &engine.MalformedTraceError{Loc: se.Loc, Err: se.Err}
		}
		sum.Elapsed = time.Since(started)
		return sum, err
	}

	var (
		prev    time.Time
		prevLoc trace.Location
		seen    bool
	)
	hook := func(loc trace.Location, p trace.Patch) error {
		ts, err := p.Time.Parse()
		if err != nil {
			return &InvalidTimestampError{Loc: loc, Raw: p.Time.Raw, Source: p.Time.Source, Err: err}
		}
		if v.cfg.TimeOrder == TimeOrderStrict && seen && ts.Before(prev) {
			return &TimeOrderError{Loc: loc, PrevLoc: prevLoc, Prev: prev, Cur: ts}
		}
		prev, prevLoc, seen = ts, loc, true
		return nil
	}

	opts := []engine.Option{engine.WithPatchHook(hook)}
	if v.cfg.Progress != nil {
		opts = append(opts, engine.WithProgress(v.cfg.ProgressEvery, v.cfg.Progress))
	}

	buf := buffer.NewBufferFromString(tr.StartContent)
	res, err := engine.New(opts...).Replay(tr, buf)
	sum.Txns, sum.Patches = res.Txns, res.Patches
	sum.EndLen = buf.Len()
	sum.Elapsed = time.Since(started)
	if err != nil {
		return sum, err
	}

	if mismatch := Compare(buf.Snapshot(), tr.EndContent, v.cfg.ContextWindow); mismatch != nil {
		return sum, mismatch
	}

	sum.Astral = buf.AstralCount()
	sum.Elapsed = time.Since(started)
	return sum, nil
}
