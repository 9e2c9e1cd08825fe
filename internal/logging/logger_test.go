package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLoggerWritesJSONToSessionFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, "sess-1", "DEBUG")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("dispatched", "issue", 42)
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "sess-1.log"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	var entry map[string]any
	line := strings.TrimSpace(string(data))
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("log line is not valid JSON: %v", err)
	}
	if entry["msg"] != "dispatched" {
		t.Errorf("msg = %v, want dispatched", entry["msg"])
	}
	if entry["issue"].(float64) != 42 {
		t.Errorf("issue = %v, want 42", entry["issue"])
	}
}

func TestLoggerWithSessionAndPhasePropagate(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewLogger(dir, "sess-2", "INFO")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer logger.Close()

	child := logger.WithSession("sess-2").WithPhase("supervisor")
	child.Info("transitioned")

	data, _ := os.ReadFile(filepath.Join(dir, "sess-2.log"))
	var entry map[string]any
	json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry)

	if entry["session_id"] != "sess-2" {
		t.Errorf("session_id = %v, want sess-2", entry["session_id"])
	}
	if entry["phase"] != "supervisor" {
		t.Errorf("phase = %v, want supervisor", entry["phase"])
	}
}

func TestNopLoggerDiscardsOutput(t *testing.T) {
	logger := NopLogger()
	logger.Info("this goes nowhere")
	if err := logger.Close(); err != nil {
		t.Errorf("Close on nop logger: %v", err)
	}
}

func TestParseLevelDefaultsToInfo(t *testing.T) {
	if got := ParseLevel("bogus"); got != LevelInfo {
		t.Errorf("ParseLevel(bogus) = %s, want %s", got, LevelInfo)
	}
	if got := ParseLevel("debug"); got != LevelDebug {
		t.Errorf("ParseLevel(debug) = %s, want %s", got, LevelDebug)
	}
}
