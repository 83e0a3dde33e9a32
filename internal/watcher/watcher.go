// Package watcher reports changes to trace files on disk.
//
// The fsnotify-backed watcher delivers raw events for the directories it
// watches; DebouncedWatcher coalesces the burst of writes an editor or a
// recorder produces into one event per file.
package watcher

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dshills/editrace/internal/trace/tracefile"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrPathNotExist    = errors.New("path does not exist")
)

// Op is a set of file operations.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	// OpRename means the file was renamed away from Path.
	OpRename
)

// String joins the names of the set ops with "|".
func (op Op) String() string {
	var parts []string
	for _, o := range []struct {
		op   Op
		name string
	}{{OpCreate, "CREATE"}, {OpWrite, "WRITE"}, {OpRemove, "REMOVE"}, {OpRename, "RENAME"}} {
		if op.Has(o.op) {
			parts = append(parts, o.name)
		}
	}
	if len(parts) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(parts, "|")
}

// Has reports whether every op in o is set.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a change to one file. Debounced events carry every op seen
// within the window.
type Event struct {
	Path      string
	Op        Op
	Timestamp time.Time
}

// Gone reports whether the file no longer exists at Path.
func (e Event) Gone() bool {
	return (e.Op.Has(OpRemove) || e.Op.Has(OpRename)) && !e.Op.Has(OpCreate) && !e.Op.Has(OpWrite)
}

// Watcher delivers change events for the paths added with Watch. Both
// channels are closed once Close returns.
type Watcher interface {
	Watch(path string) error
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

// EventFilter reports whether an event should be delivered.
type EventFilter func(event Event) bool

// bufferSize is the capacity of every event and error channel.
const bufferSize = 100

type options struct {
	filter EventFilter
}

// Option configures NewFSNotifyWatcher.
type Option func(*options)

// WithEventFilter drops events the filter rejects before they are queued.
func WithEventFilter(filter EventFilter) Option {
	return func(o *options) {
		o.filter = filter
	}
}

// TraceFiles keeps events for trace files (.json and .json.gz), skipping
// hidden files such as the temporary files written during an in-place
// rewrite.
func TraceFiles(event Event) bool {
	return tracefile.IsTraceFile(event.Path)
}

// Run delivers events to handle until ctx is cancelled or the watcher is
// closed. Errors go to onError when it is set.
func Run(ctx context.Context, w Watcher, handle func(Event), onError func(error)) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.Events():
			if !ok {
				return
			}
			handle(event)
		case err, ok := <-w.Errors():
			if !ok {
				return
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
