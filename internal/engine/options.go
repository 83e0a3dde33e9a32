package engine

import "github.com/dshills/editrace/internal/trace"

// DefaultProgressEvery is the default number of transactions between
// progress callbacks.
const DefaultProgressEvery = 10000

// PatchHook runs before a patch is applied.
type PatchHook func(loc trace.Location, p trace.Patch) error

// ProgressFunc receives the number of transactions applied so far and the
// number that will be applied in total.
type ProgressFunc func(done, total int)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithPatchHook sets a function called before every patch.
func WithPatchHook(hook PatchHook) Option {
	return func(e *Engine) {
		e.hook = hook
	}
}

// WithProgress reports progress every n transactions.
func WithProgress(every int, fn ProgressFunc) Option {
	return func(e *Engine) {
		if every > 0 {
			e.progressEvery = every
		}
		e.progress = fn
	}
}

// WithLimit stops the replay after the first n transactions.
// Non-positive values replay everything.
func WithLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}
