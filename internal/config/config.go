package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dshills/editrace/internal/config/loader"
)

// Defaults for every setting.
const (
	DefaultLogLevel      = "info"
	DefaultProgressEvery = 10000
	DefaultContextWindow = 20
	DefaultSampleCap     = 16
	DefaultPlaceholder   = "_"
	DefaultDebounce      = 200 * time.Millisecond
)

// Config is the complete editrace configuration.
type Config struct {
	Log      LogConfig
	Validate ValidateConfig
	Stats    StatsConfig
	Batch    BatchConfig
	Strip    StripConfig
	Watch    WatchConfig
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string
}

// ValidateConfig configures trace validation.
type ValidateConfig struct {
	// StrictTime requires timestamps to never decrease.
	StrictTime bool
	// ProgressEvery is the number of transactions between progress logs.
	ProgressEvery int
	// ContextWindow is the number of characters shown on each side of a
	// content mismatch.
	ContextWindow int
}

// StatsConfig configures the statistics report.
type StatsConfig struct {
	// SampleCap bounds the number of distinct non-ASCII examples kept.
	SampleCap int
}

// BatchConfig configures processing of many files.
type BatchConfig struct {
	// Workers is the number of files processed at once. Zero means one per CPU.
	Workers int
}

// StripConfig configures the non-ASCII sanitizer.
type StripConfig struct {
	// Placeholder replaces every non-ASCII character. It must be one
	// character.
	Placeholder string
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	// Debounce is how long a file must be quiet before it is re-checked.
	Debounce time.Duration
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: DefaultLogLevel},
		Validate: ValidateConfig{ProgressEvery: DefaultProgressEvery, ContextWindow: DefaultContextWindow},
		Stats:    StatsConfig{SampleCap: DefaultSampleCap},
		Strip:    StripConfig{Placeholder: DefaultPlaceholder},
		Watch:    WatchConfig{Debounce: DefaultDebounce},
	}
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	fs        loader.FileSystem
	env       loader.Loader
	envPrefix string
}

// WithFS sets the file system config files are read from.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithEnvLoader replaces the environment layer.
func WithEnvLoader(l loader.Loader) Option {
	return func(o *loadOptions) {
		o.env = l
	}
}

// WithEnvPrefix sets the prefix of environment variables read.
func WithEnvPrefix(prefix string) Option {
	return func(o *loadOptions) {
		o.envPrefix = prefix
	}
}

// Load builds the configuration from the defaults, the file at path (if path
// is not empty) and the environment, then validates it.
func Load(path string, opts ...Option) (*Config, error) {
	o := loadOptions{fs: loader.DefaultFS(), envPrefix: loader.DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	if o.env == nil {
		o.env = loader.NewEnvLoader(o.envPrefix)
	}

	var fileValues map[string]any
	if path != "" {
		if _, err := o.fs.Stat(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
			}
			return nil, err
		}
		l, err := loader.ForPath(o.fs, path)
		if err != nil {
			return nil, err
		}
		if fileValues, err = l.Load(); err != nil {
			return nil, err
		}
		if err := checkKnown(fileValues); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	envValues, err := o.env.Load()
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}
	envValues = onlyKnown(envValues)

	cfg := Default()
	if err := cfg.Apply(loader.DeepMerge(fileValues, envValues)); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// settings lists every known setting path.
var settings = []string{
	"log.level",
	"validate.strict_time",
	"validate.progress_every",
	"validate.context_window",
	"stats.sample_cap",
	"batch.workers",
	"strip.placeholder",
	"watch.debounce",
}

func isKnown(path string) bool {
	for _, s := range settings {
		if s == path {
			return true
		}
	}
	return false
}

func checkKnown(values map[string]any) error {
	flat := loader.Flatten(values)
	paths := make([]string, 0, len(flat))
	for path := range flat {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		if !isKnown(path) {
			return &ValidationError{Path: path, Message: "unknown setting", Value: flat[path], Code: ErrCodeUnknownSetting}
		}
	}
	return nil
}

// onlyKnown drops environment variables that share the prefix but are not
// settings.
func onlyKnown(values map[string]any) map[string]any {
	out := make(map[string]any)
	for path, v := range loader.Flatten(values) {
		if !isKnown(path) {
			continue
		}
		section, name, _ := strings.Cut(path, ".")
		m, ok := out[section].(map[string]any)
		if !ok {
			m = make(map[string]any)
			out[section] = m
		}
		m[name] = v
	}
	return out
}

// Apply overlays values, a nested map keyed by section and setting, onto c.
// Settings absent from values keep their current value.
func (c *Config) Apply(values map[string]any) error {
	v := newValues(values)
	v.str("log.level", &c.Log.Level)
	v.boolean("validate.strict_time", &c.Validate.StrictTime)
	v.integer("validate.progress_every", &c.Validate.ProgressEvery)
	v.integer("validate.context_window", &c.Validate.ContextWindow)
	v.integer("stats.sample_cap", &c.Stats.SampleCap)
	v.integer("batch.workers", &c.Batch.Workers)
	v.str("strip.placeholder", &c.Strip.Placeholder)
	v.duration("watch.debounce", &c.Watch.Debounce)
	return v.err
}

// Validate checks every setting is within its allowed range.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "log.level", Message: "must be debug, info, warn or error", Value: c.Log.Level, Code: ErrCodeInvalidEnum}
	}
	if c.Validate.ProgressEvery <= 0 {
		return outOfRange("validate.progress_every", "must be positive", c.Validate.ProgressEvery)
	}
	if c.Validate.ContextWindow < 0 {
		return outOfRange("validate.context_window", "must not be negative", c.Validate.ContextWindow)
	}
	if c.Stats.SampleCap < 0 {
		return outOfRange("stats.sample_cap", "must not be negative", c.Stats.SampleCap)
	}
	if c.Batch.Workers < 0 {
		return outOfRange("batch.workers", "must not be negative", c.Batch.Workers)
	}
	if utf8.RuneCountInString(c.Strip.Placeholder) != 1 || c.Strip.Placeholder == string(utf8.RuneError) {
		return outOfRange("strip.placeholder", "must be exactly one character", c.Strip.Placeholder)
	}
	if c.Watch.Debounce < 0 {
		return outOfRange("watch.debounce", "must not be negative", c.Watch.Debounce)
	}
	return nil
}

// PlaceholderRune returns the sanitizer placeholder as a rune.
func (c *Config) PlaceholderRune() rune {
	r, _ := utf8.DecodeRuneInString(c.Strip.Placeholder)
	return r
}

func outOfRange(path, msg string, value any) *ValidationError {
	return &ValidationError{Path: path, Message: msg, Value: value, Code: ErrCodeOutOfRange}
}
