package board

import (
	"sync"

	"github.com/fentz26/planner/internal/models"
)

// Anchor is the control a status menu was opened from.
type Anchor struct {
	TaskID int64
}

// MenuOption is one selectable status.
type MenuOption struct {
	Label  string
	Status models.TaskStatus
}

// StatusOptions are offered by the status menu. Completion has its own control.
var StatusOptions = []MenuOption{
	{Label: string(models.TaskStatusToDo), Status: models.TaskStatusToDo},
	{Label: string(models.TaskStatusInProgress), Status: models.TaskStatusInProgress},
}

// StatusMenu is a floating menu that is either closed or open at one anchor.
// At most one is open at a time.
type StatusMenu struct {
	mu     sync.Mutex
	open   bool
	anchor Anchor
	cursor int
}

// Open shows the menu below anchor, replacing any menu already open.
func (m *StatusMenu) Open(anchor Anchor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	m.anchor = anchor
	m.cursor = 0
}

// Close dismisses the menu.
func (m *StatusMenu) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	m.anchor = Anchor{}
	m.cursor = 0
}

// IsOpen reports whether the menu is shown and where.
func (m *StatusMenu) IsOpen() (Anchor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.anchor, m.open
}

// Options returns the menu entries.
func (m *StatusMenu) Options() []MenuOption {
	out := make([]MenuOption, len(StatusOptions))
	copy(out, StatusOptions)
	return out
}

// Cursor returns the highlighted option index.
func (m *StatusMenu) Cursor() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursor
}

// Move shifts the highlight by delta, wrapping around.
func (m *StatusMenu) Move(delta int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(StatusOptions)
	m.cursor = ((m.cursor+delta)%n + n) % n
}

// Select closes the menu and returns the chosen status for its anchor.
func (m *StatusMenu) Select(i int) (Anchor, models.TaskStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open || i < 0 || i >= len(StatusOptions) {
		return Anchor{}, "", false
	}
	anchor := m.anchor
	m.open = false
	m.anchor = Anchor{}
	m.cursor = 0
	return anchor, StatusOptions[i].Status, true
}

// DismissOutside closes the menu unless target is the control that opened it.
func (m *StatusMenu) DismissOutside(target Anchor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.open && target != m.anchor {
		m.open = false
		m.anchor = Anchor{}
		m.cursor = 0
	}
}
