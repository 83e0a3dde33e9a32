package watcher

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// FSNotifyWatcher implements Watcher using fsnotify. Directories are
// watched non-recursively, which is how trace collections are laid out.
type FSNotifyWatcher struct {
	fsw    *fsnotify.Watcher
	filter EventFilter

	events chan Event
	errors chan error
	done   chan struct{}

	mu     sync.Mutex
	paths  map[string]bool
	closed bool
}

// NewFSNotifyWatcher creates a new fsnotify-based watcher.
func NewFSNotifyWatcher(opts ...Option) (*FSNotifyWatcher, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &FSNotifyWatcher{
		fsw:    fsw,
		filter: o.filter,
		events: make(chan Event, bufferSize),
		errors: make(chan error, bufferSize),
		done:   make(chan struct{}),
		paths:  make(map[string]bool),
	}
	go w.loop()
	return w, nil
}

// Watch adds path, a directory or a single file.
func (w *FSNotifyWatcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(abs); errors.Is(err, fs.ErrNotExist) {
		return ErrPathNotExist
	} else if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	switch {
	case w.closed:
		return ErrWatcherClosed
	case w.paths[abs]:
		return ErrAlreadyWatching
	}
	if err := w.fsw.Add(abs); err != nil {
		return err
	}
	w.paths[abs] = true
	return nil
}

// Events returns the event channel. It is closed by Close.
func (w *FSNotifyWatcher) Events() <-chan Event { return w.events }

// Errors returns the error channel. It is closed by Close.
func (w *FSNotifyWatcher) Errors() <-chan error { return w.errors }

// Close stops the watcher and waits for the delivery loop to exit.
func (w *FSNotifyWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	// fsnotify closes its channels, which ends loop.
	err := w.fsw.Close()
	<-w.done
	return err
}

// loop is the only sender on events and errors, so it closes them.
func (w *FSNotifyWatcher) loop() {
	defer close(w.done)
	defer close(w.errors)
	defer close(w.events)

	in, errs := w.fsw.Events, w.fsw.Errors
	for in != nil || errs != nil {
		select {
		case ev, ok := <-in:
			if !ok {
				in = nil
				continue
			}
			w.deliver(ev)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			select {
			case w.errors <- err:
			default: // full; the consumer is behind
			}
		}
	}
}

func (w *FSNotifyWatcher) deliver(ev fsnotify.Event) {
	op := convertOp(ev.Op)
	if op == 0 {
		return
	}
	e := Event{Path: ev.Name, Op: op, Timestamp: time.Now()}
	if w.filter != nil && !w.filter(e) {
		return
	}
	select {
	case w.events <- e:
	default: // full; the consumer is behind
	}
}

// convertOp maps fsnotify ops onto Op. Chmod does not change content and
// maps to zero.
func convertOp(in fsnotify.Op) Op {
	var op Op
	for _, m := range []struct {
		from fsnotify.Op
		to   Op
	}{
		{fsnotify.Create, OpCreate},
		{fsnotify.Write, OpWrite},
		{fsnotify.Remove, OpRemove},
		{fsnotify.Rename, OpRename},
	} {
		if in.Has(m.from) {
			op |= m.to
		}
	}
	return op
}

var _ Watcher = (*FSNotifyWatcher)(nil)
