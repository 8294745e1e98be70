package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// CmdBarModel manages the command input bar
type CmdBarModel struct {
	input   textinput.Model
	focused bool
}

// NewCmdBarModel creates a new command bar
func NewCmdBarModel() *CmdBarModel {
	ti := textinput.New()
	ti.Placeholder = "new | edit | status todo | done | comment <text> | users | @<id>"
	ti.CharLimit = 256
	ti.Prompt = ": "
	return &CmdBarModel{input: ti}
}

// Focused reports whether keys go to the bar.
func (m *CmdBarModel) Focused() bool { return m.focused }

// Focus focuses the command bar
func (m *CmdBarModel) Focus() tea.Cmd {
	m.focused = true
	return m.input.Focus()
}

// Blur unfocuses the command bar
func (m *CmdBarModel) Blur() {
	m.focused = false
	m.input.Blur()
	m.input.SetValue("")
}

// Value is the text typed so far.
func (m *CmdBarModel) Value() string { return m.input.Value() }

// SetValue replaces the typed text.
func (m *CmdBarModel) SetValue(s string) {
	m.input.SetValue(s)
	m.input.CursorEnd()
}

// SetWidth sizes the input.
func (m *CmdBarModel) SetWidth(w int) { m.input.Width = w }

// Submit returns the current input and blurs
func (m *CmdBarModel) Submit() string {
	val := m.input.Value()
	m.Blur()
	return val
}

// Update handles messages
func (m *CmdBarModel) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// View renders the command bar
func (m *CmdBarModel) View(st styles) string {
	if m.focused {
		return m.input.View()
	}
	return st.help.Render("Press : for commands")
}

// command is a parsed command-bar line.
type command struct {
	name   string
	arg    string
	taskID int64
}

// parseCommand splits a command-bar line. "@12" selects task 12, and an
// "@12" after the command name targets it instead of the selected card.
func parseCommand(input string) (command, bool) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return command{}, false
	}
	var c command
	if strings.HasPrefix(fields[0], "@") {
		id, err := strconv.ParseInt(strings.TrimPrefix(fields[0], "@"), 10, 64)
		if err != nil {
			return command{}, false
		}
		c.name, c.taskID = "goto", id
		return c, true
	}
	c.name = strings.ToLower(fields[0])
	rest := fields[1:]
	if len(rest) > 0 && strings.HasPrefix(rest[0], "@") {
		if id, err := strconv.ParseInt(strings.TrimPrefix(rest[0], "@"), 10, 64); err == nil {
			c.taskID = id
			rest = rest[1:]
		}
	}
	c.arg = strings.Join(rest, " ")
	return c, true
}
