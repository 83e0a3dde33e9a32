package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		want string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpCreate | OpWrite, "CREATE|WRITE"},
		{OpRemove | OpRename, "REMOVE|RENAME"},
		{0, "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestEventGone(t *testing.T) {
	tests := []struct {
		op   Op
		want bool
	}{
		{OpRemove, true},
		{OpRename, true},
		{OpWrite, false},
		{OpRemove | OpCreate, false},
	}
	for _, tt := range tests {
		if got := (Event{Op: tt.op}).Gone(); got != tt.want {
			t.Errorf("Event{Op: %v}.Gone() = %v, want %v", tt.op, got, tt.want)
		}
	}
}

func TestTraceFiles(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/data/seph-blog1.json.gz", true},
		{"/data/automerge-paper.json", true},
		{"/data/notes.txt", false},
		{"/data/.seph-blog1.json.gz.123456", false},
		{"/data/.hidden.json", false},
	}
	for _, tt := range tests {
		if got := TraceFiles(Event{Path: tt.path}); got != tt.want {
			t.Errorf("TraceFiles(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestConvertOp(t *testing.T) {
	if got := convertOp(fsnotify.Chmod); got != 0 {
		t.Errorf("convertOp(Chmod) = %v, want 0", got)
	}
	if got := convertOp(fsnotify.Create | fsnotify.Write); got != OpCreate|OpWrite {
		t.Errorf("convertOp(Create|Write) = %v", got)
	}
}

func TestRun(t *testing.T) {
	mock := newMockWatcher()
	mock.events <- Event{Path: "/a.json", Op: OpWrite}
	mock.errors <- os.ErrClosed

	var events []Event
	var errs []error
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Run(ctx, mock, func(e Event) {
			events = append(events, e)
		}, func(err error) {
			errs = append(errs, err)
		})
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for len(mock.events) > 0 || len(mock.errors) > 0 {
		if time.Now().After(deadline) {
			t.Fatal("Run did not drain the watcher")
		}
		time.Sleep(5 * time.Millisecond)
	}
	mock.Close()
	<-done
	cancel()

	if len(events) != 1 || events[0].Path != "/a.json" {
		t.Errorf("events = %v", events)
	}
	if len(errs) != 1 {
		t.Errorf("errs = %v", errs)
	}
}

func TestFSNotifyWatcher_WatchNonexistent(t *testing.T) {
	w, err := NewFSNotifyWatcher()
	if err != nil {
		t.Fatalf("NewFSNotifyWatcher error = %v", err)
	}
	defer w.Close()

	if err := w.Watch(filepath.Join(t.TempDir(), "missing")); err != ErrPathNotExist {
		t.Errorf("Watch error = %v, want ErrPathNotExist", err)
	}
}

func TestFSNotifyWatcher_WatchTwice(t *testing.T) {
	w, err := NewFSNotifyWatcher()
	if err != nil {
		t.Fatalf("NewFSNotifyWatcher error = %v", err)
	}
	defer w.Close()

	dir := t.TempDir()
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch error = %v", err)
	}
	if err := w.Watch(dir); err != ErrAlreadyWatching {
		t.Errorf("second Watch error = %v, want ErrAlreadyWatching", err)
	}
}

func TestFSNotifyWatcher_Close(t *testing.T) {
	w, err := NewFSNotifyWatcher()
	if err != nil {
		t.Fatalf("NewFSNotifyWatcher error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
	if err := w.Watch(t.TempDir()); err != ErrWatcherClosed {
		t.Errorf("Watch after Close = %v, want ErrWatcherClosed", err)
	}
}

func TestFSNotifyWatcher_FiltersEvents(t *testing.T) {
	w, err := NewFSNotifyWatcher(WithEventFilter(TraceFiles))
	if err != nil {
		t.Fatalf("NewFSNotifyWatcher error = %v", err)
	}
	defer w.Close()

	dir := t.TempDir()
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch error = %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	trace := filepath.Join(dir, "run.json")
	if err := os.WriteFile(trace, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	timeout := time.After(2 * time.Second)
	for {
		select {
		case e := <-w.Events():
			if filepath.Base(e.Path) == "notes.txt" {
				t.Fatalf("filtered file delivered: %v", e)
			}
			if e.Path == trace {
				return
			}
		case <-timeout:
			t.Fatal("timeout waiting for trace file event")
		}
	}
}
