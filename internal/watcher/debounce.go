package watcher

import (
	"sync"
	"time"
)

// DefaultDebounce is the delay used when NewDebouncedWatcher gets a
// non-positive one.
const DefaultDebounce = 100 * time.Millisecond

// DebouncedWatcher wraps a Watcher so that a burst of changes to one file
// becomes a single event, delivered once the file has been quiet for the
// delay. The delivered Op is the union of the ops seen in the burst.
//
// All pending state is owned by one goroutine; Flush and PendingCount talk
// to it over channels.
type DebouncedWatcher struct {
	inner Watcher
	delay time.Duration

	events chan Event
	errors chan error

	flushReq chan chan struct{}
	countReq chan chan int
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

type pendingEvent struct {
	event Event
	due   time.Time
}

// NewDebouncedWatcher creates a debounced watcher wrapper.
func NewDebouncedWatcher(inner Watcher, delay time.Duration) *DebouncedWatcher {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	dw := &DebouncedWatcher{
		inner:    inner,
		delay:    delay,
		events:   make(chan Event, bufferSize),
		errors:   make(chan error, bufferSize),
		flushReq: make(chan chan struct{}),
		countReq: make(chan chan int),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go dw.loop()
	return dw
}

// Watch starts watching a path.
func (dw *DebouncedWatcher) Watch(path string) error {
	return dw.inner.Watch(path)
}

// Events returns the debounced event channel.
func (dw *DebouncedWatcher) Events() <-chan Event { return dw.events }

// Errors returns the error channel.
func (dw *DebouncedWatcher) Errors() <-chan error { return dw.errors }

// Close drops pending events and closes the wrapped watcher.
func (dw *DebouncedWatcher) Close() error {
	dw.stopOnce.Do(func() { close(dw.stop) })
	<-dw.done
	return dw.inner.Close()
}

// Flush delivers every pending event now.
func (dw *DebouncedWatcher) Flush() {
	reply := make(chan struct{})
	select {
	case dw.flushReq <- reply:
		<-reply
	case <-dw.done:
	}
}

// PendingCount returns the number of files with an undelivered event.
func (dw *DebouncedWatcher) PendingCount() int {
	reply := make(chan int)
	select {
	case dw.countReq <- reply:
		return <-reply
	case <-dw.done:
		return 0
	}
}

func (dw *DebouncedWatcher) loop() {
	defer close(dw.done)
	defer close(dw.errors)
	defer close(dw.events)

	pending := make(map[string]*pendingEvent)
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	var fire <-chan time.Time

	// rearm points the timer at the earliest deadline.
	rearm := func() {
		var next time.Time
		for _, p := range pending {
			if next.IsZero() || p.due.Before(next) {
				next = p.due
			}
		}
		if next.IsZero() {
			timer.Stop()
			fire = nil
			return
		}
		timer.Reset(time.Until(next))
		fire = timer.C
	}
	emit := func(before time.Time) {
		for path, p := range pending {
			if !before.IsZero() && p.due.After(before) {
				continue
			}
			delete(pending, path)
			select {
			case dw.events <- p.event:
			default: // full; the consumer is behind
			}
		}
	}

	in, errs := dw.inner.Events(), dw.inner.Errors()
	for {
		select {
		case <-dw.stop:
			timer.Stop()
			return

		case e, ok := <-in:
			if !ok {
				return
			}
			if p, exists := pending[e.Path]; exists {
				p.event.Op |= e.Op
				p.event.Timestamp = e.Timestamp
				p.due = time.Now().Add(dw.delay)
			} else {
				pending[e.Path] = &pendingEvent{event: e, due: time.Now().Add(dw.delay)}
			}
			rearm()

		case err, ok := <-errs:
			if !ok {
				return
			}
			select {
			case dw.errors <- err:
			default:
			}

		case <-fire:
			emit(time.Now())
			rearm()

		case reply := <-dw.flushReq:
			emit(time.Time{})
			rearm()
			close(reply)

		case reply := <-dw.countReq:
			reply <- len(pending)
		}
	}
}

var _ Watcher = (*DebouncedWatcher)(nil)
