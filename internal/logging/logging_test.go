package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
)

func TestNew_Level(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New("warn", &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Info("hidden")
	logger.WithField("task_id", 4).Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Expected info suppressed at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "task_id=4") {
		t.Errorf("Expected warn record with field, got %q", out)
	}

	if _, err := New("chatty", &buf); err == nil {
		t.Error("Expected error for unknown level")
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewJSON("info", &buf)
	if err != nil {
		t.Fatalf("NewJSON failed: %v", err)
	}
	logger.Info("hello")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("Expected JSON record, got %q", buf.String())
	}
	if logger.GetLevel() != log.InfoLevel {
		t.Errorf("Expected info level, got %v", logger.GetLevel())
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "planner.log")
	logger, closer, err := NewFile("debug", path)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	logger.Debug("to file")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("Expected record in file, got %q", data)
	}
}
