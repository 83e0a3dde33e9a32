package app

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LogLevelDebug},
		{"Info", LogLevelInfo},
		{"WARNING", LogLevelWarn},
		{"error", LogLevelError},
		{"verbose", LogLevelInfo},
		{"", LogLevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelWarn, Output: &buf, Prefix: "test"})

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn %d", 1)
	logger.Error("error")

	out := buf.String()
	if strings.Contains(out, "[DEBUG]") || strings.Contains(out, "[INFO]") {
		t.Errorf("lines below WARN leaked: %s", out)
	}
	if !strings.Contains(out, "[WARN] test: warn 1") {
		t.Errorf("missing formatted warn line: %s", out)
	}
	if !strings.Contains(out, "[ERROR]") {
		t.Errorf("missing error line: %s", out)
	}
}

func TestLoggerFieldsAreSorted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf})

	logger.WithFields(map[string]any{"txns": 3, "file": "a.json"}).WithComponent("check").Info("done")

	if !strings.Contains(buf.String(), "done {component=check, file=a.json, txns=3}") {
		t.Errorf("unexpected fields: %s", buf.String())
	}
}

func TestLoggerChildDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf})
	_ = logger.WithField("file", "a.json")

	logger.Info("plain")
	if strings.Contains(buf.String(), "file=") {
		t.Errorf("parent picked up child field: %s", buf.String())
	}
}

func TestLoggerSetLevelAndOutput(t *testing.T) {
	var first, second bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelError, Output: &first})

	logger.Info("hidden")
	if first.Len() != 0 {
		t.Fatal("info logged at error level")
	}

	logger.SetLevel(LogLevelInfo)
	logger.SetOutput(&second)
	logger.Info("shown")
	if first.Len() != 0 || second.Len() == 0 {
		t.Errorf("first=%q second=%q", first.String(), second.String())
	}
}

func TestLoggerDisable(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelDebug, Output: &buf})

	logger.Disable()
	logger.Error("hidden")
	if buf.Len() != 0 {
		t.Error("expected no output when disabled")
	}
	logger.Enable()
	logger.Error("shown")
	if buf.Len() == 0 {
		t.Error("expected output when enabled")
	}
}

func TestLoggerConcurrentChildren(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			child := logger.WithField("worker", i)
			for j := 0; j < 50; j++ {
				child.Info("tick")
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 400 {
		t.Fatalf("got %d lines, want 400", len(lines))
	}
	for _, line := range lines {
		if !strings.HasSuffix(line, "}") {
			t.Fatalf("interleaved line: %q", line)
		}
	}
}

func TestNullLogger(t *testing.T) {
	NullLogger.Info("nothing")
	NullLogger.WithComponent("x").Error("nothing")
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig()
	if cfg.Level != LogLevelInfo {
		t.Errorf("Level = %v, want INFO", cfg.Level)
	}
	if cfg.Output == nil {
		t.Error("expected default output")
	}
	if cfg.Prefix != "editrace" {
		t.Errorf("Prefix = %q, want editrace", cfg.Prefix)
	}
}

func TestLoggerChildrenShareLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: &buf})
	child := logger.WithComponent("batch")

	logger.SetLevel(LogLevelError)
	child.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("child ignored parent level: %s", buf.String())
	}
}
