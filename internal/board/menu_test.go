package board

import (
	"testing"

	"github.com/fentz26/planner/internal/models"
)

func TestStatusMenu_SelectCloses(t *testing.T) {
	var m StatusMenu
	m.Open(Anchor{TaskID: 4})
	if a, ok := m.IsOpen(); !ok || a.TaskID != 4 {
		t.Fatalf("Expected menu open at task 4, got %+v %v", a, ok)
	}

	anchor, status, ok := m.Select(1)
	if !ok || anchor.TaskID != 4 || status != models.TaskStatusInProgress {
		t.Errorf("Unexpected selection: %+v %s %v", anchor, status, ok)
	}
	if _, open := m.IsOpen(); open {
		t.Error("Expected menu closed after selection")
	}
	if _, _, ok := m.Select(0); ok {
		t.Error("Expected selection on closed menu to fail")
	}
}

func TestStatusMenu_DismissOutside(t *testing.T) {
	var m StatusMenu
	m.Open(Anchor{TaskID: 1})

	m.DismissOutside(Anchor{TaskID: 1})
	if _, open := m.IsOpen(); !open {
		t.Error("Expected click on invoking control to keep menu open")
	}

	m.DismissOutside(Anchor{TaskID: 2})
	if _, open := m.IsOpen(); open {
		t.Error("Expected outside click to close menu")
	}
}

func TestStatusMenu_SingleInstance(t *testing.T) {
	var m StatusMenu
	m.Open(Anchor{TaskID: 1})
	m.Open(Anchor{TaskID: 2})
	if a, _ := m.IsOpen(); a.TaskID != 2 {
		t.Errorf("Expected menu moved to task 2, got %d", a.TaskID)
	}
	m.Move(-1)
	if got := m.Cursor(); got != len(StatusOptions)-1 {
		t.Errorf("Expected cursor to wrap to %d, got %d", len(StatusOptions)-1, got)
	}
}
