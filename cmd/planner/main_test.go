package main

import (
	"testing"

	"github.com/fentz26/planner/internal/models"
)

func TestParseLane(t *testing.T) {
	tests := map[string]models.TaskStatus{
		"todo":        models.TaskStatusToDo,
		"To Do":       models.TaskStatusToDo,
		"progress":    models.TaskStatusInProgress,
		"In Progress": models.TaskStatusInProgress,
		"done":        models.TaskStatusCompleted,
		"Completed":   models.TaskStatusCompleted,
	}
	for in, want := range tests {
		got, err := parseLane(in)
		if err != nil || got != want {
			t.Errorf("parseLane(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := parseLane("someday"); err == nil {
		t.Error("Expected error for unknown status")
	}
}

func TestParseTaskID(t *testing.T) {
	if id, err := parseTaskID("@42"); err != nil || id != 42 {
		t.Errorf("parseTaskID(@42) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "0", "-3", "abc"} {
		if _, err := parseTaskID(bad); err == nil {
			t.Errorf("parseTaskID(%q) should fail", bad)
		}
	}
}

func TestIsLocal(t *testing.T) {
	tests := map[string]bool{
		"http://127.0.0.1:7466":     true,
		"http://localhost:8080":     true,
		"http://[::1]:7466":         true,
		"https://board.example.com": false,
	}
	for addr, want := range tests {
		if got := isLocal(addr); got != want {
			t.Errorf("isLocal(%q) = %v, want %v", addr, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("Expected unchanged, got %q", got)
	}
	if got := truncate("abcdefghij", 5); got != "abcd…" {
		t.Errorf("Expected abcd…, got %q", got)
	}
}
