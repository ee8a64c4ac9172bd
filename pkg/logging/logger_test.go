package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		entry := map[string]any{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("Failed to unmarshal %q: %v", line, err)
		}
		out = append(out, entry)
	}
	return out
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level    Level
		expected string
	}{
		{DebugLevel, "DEBUG"},
		{InfoLevel, "INFO"},
		{WarnLevel, "WARN"},
		{ErrorLevel, "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := tt.level.String(); got != tt.expected {
				t.Errorf("Level.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"info", InfoLevel},
		{"WARNING", WarnLevel},
		{"warn", WarnLevel},
		{"error", ErrorLevel},
		{"invalid", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFieldConstructors(t *testing.T) {
	if f := NodeID("hostA"); f.Key != "node_id" || f.Value != "hostA" {
		t.Errorf("NodeID() = %+v", f)
	}
	if f := Duration("timeout", 5*time.Second); f.Value != "5s" {
		t.Errorf("Duration() = %+v", f)
	}
	if f := Error(errors.New("boom")); f.Key != "error" || f.Value != "boom" {
		t.Errorf("Error() = %+v", f)
	}
	if f := Error(nil); f.Value != nil {
		t.Errorf("Error(nil) = %+v", f)
	}
}

func TestZapLogger_Output(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZapLogger(&buf, InfoLevel)

	logger.Info("graph built", NodeCount(3), EdgeCount(2), Source("file"))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e["msg"] != "graph built" {
		t.Errorf("msg = %v", e["msg"])
	}
	if e["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", e["level"])
	}
	if e["nodes"] != float64(3) || e["edges"] != float64(2) {
		t.Errorf("counts = %v/%v", e["nodes"], e["edges"])
	}
	if e["source"] != "file" {
		t.Errorf("source = %v", e["source"])
	}
	if e["time"] == nil {
		t.Error("time missing")
	}
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZapLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(entries))
	}
	if entries[0]["level"] != "WARN" || entries[1]["level"] != "ERROR" {
		t.Errorf("levels = %v, %v", entries[0]["level"], entries[1]["level"])
	}
}

func TestZapLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZapLogger(&buf, InfoLevel)

	child := logger.With(Component("workspace"))
	child.Info("refreshed", Outcome("ok"))

	entries := decodeLines(t, &buf)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries[0]["component"] != "workspace" || entries[0]["outcome"] != "ok" {
		t.Errorf("entry = %v", entries[0])
	}
}

func TestZapLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZapLogger(&buf, InfoLevel)

	if logger.GetLevel() != InfoLevel {
		t.Errorf("Initial level = %v, want InfoLevel", logger.GetLevel())
	}

	logger.SetLevel(ErrorLevel)
	if logger.GetLevel() != ErrorLevel {
		t.Errorf("After SetLevel, level = %v, want ErrorLevel", logger.GetLevel())
	}

	logger.Info("info")
	if buf.Len() != 0 {
		t.Error("Expected no output for Info at ErrorLevel")
	}

	logger.Error("error")
	if buf.Len() == 0 {
		t.Error("Expected output for Error at ErrorLevel")
	}
}

func TestGlobalHelperFunctions(t *testing.T) {
	var buf bytes.Buffer
	SetDefaultLogger(NewZapLogger(&buf, DebugLevel))
	defer SetDefaultLogger(NewNopLogger())

	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	ErrorLog("error msg")

	entries := decodeLines(t, &buf)
	if len(entries) != 4 {
		t.Fatalf("Expected 4 log entries, got %d", len(entries))
	}
	for i, want := range []string{"DEBUG", "INFO", "WARN", "ERROR"} {
		if entries[i]["level"] != want {
			t.Errorf("Entry %d level = %v, want %v", i, entries[i]["level"], want)
		}
	}
}

func TestTimedOperation(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZapLogger(&buf, InfoLevel)

	op := StartTimer(logger, "build", Component("graph"))
	op.End(NodeCount(1))

	op = StartTimer(logger, "fetch")
	op.EndError(errors.New("timeout"))

	entries := decodeLines(t, &buf)
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if entries[0]["latency"] == nil || entries[0]["nodes"] != float64(1) {
		t.Errorf("timed entry = %v", entries[0])
	}
	if entries[1]["level"] != "ERROR" || entries[1]["error"] != "timeout" {
		t.Errorf("error entry = %v", entries[1])
	}
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	l.Info("ignored")
	if l.With(String("a", "b")) == nil {
		t.Error("With returned nil")
	}
	if l.GetLevel() != InfoLevel {
		t.Error("NopLogger level should be Info")
	}
}
