package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Suggestions provides autocomplete for the command bar.
type Suggestions struct {
	items        []SuggestionItem
	filtered     []SuggestionItem
	selectedIdx  int
	visible      bool
	prefix       string // "" for commands, "@" for task references
	currentInput string
}

// SuggestionItem represents a single autocomplete suggestion
type SuggestionItem struct {
	Text        string
	Description string
	Type        string // "command" or "task"
}

var commandSuggestions = []SuggestionItem{
	{Text: "new", Description: "Create a new task", Type: "command"},
	{Text: "edit", Description: "Edit the selected task", Type: "command"},
	{Text: "status todo", Description: "Move the selected task to To Do", Type: "command"},
	{Text: "status progress", Description: "Move the selected task to In Progress", Type: "command"},
	{Text: "done", Description: "Mark the selected task completed", Type: "command"},
	{Text: "delete", Description: "Delete the selected task", Type: "command"},
	{Text: "comment", Description: "Comment on the selected task", Type: "command"},
	{Text: "comments", Description: "Show or hide the selected thread", Type: "command"},
	{Text: "users", Description: "Open the user directory", Type: "command"},
	{Text: "reload", Description: "Reload the board", Type: "command"},
	{Text: "signin", Description: "Sign in", Type: "command"},
	{Text: "signup", Description: "Create an account", Type: "command"},
	{Text: "signout", Description: "Sign out", Type: "command"},
	{Text: "quit", Description: "Leave the board", Type: "command"},
}

// NewSuggestions creates a new suggestions handler
func NewSuggestions() *Suggestions {
	return &Suggestions{items: commandSuggestions}
}

// Update updates suggestions based on current input
func (s *Suggestions) Update(input string) {
	s.currentInput = input
	if input == "" {
		s.visible = false
		s.filtered = nil
		s.prefix = ""
		return
	}

	if strings.HasPrefix(input, "@") {
		if s.prefix != "@" {
			// Task references are filled in by SetTasks.
			s.items = nil
		}
		s.prefix = "@"
		s.visible = true
		s.filter(strings.ToLower(strings.TrimPrefix(input, "@")))
		return
	}

	// Arguments follow the command; stop suggesting once one is typed.
	if strings.Contains(strings.TrimSpace(input), " ") && !strings.HasPrefix(input, "status") {
		s.visible = false
		s.filtered = nil
		return
	}
	s.prefix = ""
	s.items = commandSuggestions
	s.visible = true
	s.filter(strings.ToLower(strings.TrimSpace(input)))
}

// TaskRef is a task offered after "@".
type TaskRef struct {
	ID    int64
	Title string
}

// SetTasks updates the task suggestions
func (s *Suggestions) SetTasks(tasks []TaskRef) {
	if s.prefix != "@" {
		return
	}
	s.items = make([]SuggestionItem, len(tasks))
	for i, t := range tasks {
		s.items[i] = SuggestionItem{
			Text:        fmt.Sprintf("@%d", t.ID),
			Description: t.Title,
			Type:        "task",
		}
	}
	s.filter(strings.ToLower(strings.TrimPrefix(s.currentInput, "@")))
}

func (s *Suggestions) filter(query string) {
	s.selectedIdx = 0
	if query == "" {
		s.filtered = s.items
		return
	}
	s.filtered = []SuggestionItem{}
	for _, item := range s.items {
		if strings.Contains(strings.ToLower(item.Text), query) ||
			strings.Contains(strings.ToLower(item.Description), query) && item.Type == "task" {
			s.filtered = append(s.filtered, item)
		}
	}
}

// Next moves to the next suggestion
func (s *Suggestions) Next() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx = (s.selectedIdx + 1) % len(s.filtered)
}

// Prev moves to the previous suggestion
func (s *Suggestions) Prev() {
	if len(s.filtered) == 0 {
		return
	}
	s.selectedIdx--
	if s.selectedIdx < 0 {
		s.selectedIdx = len(s.filtered) - 1
	}
}

// Selected returns the currently selected suggestion
func (s *Suggestions) Selected() *SuggestionItem {
	if !s.visible || len(s.filtered) == 0 || s.selectedIdx >= len(s.filtered) {
		return nil
	}
	return &s.filtered[s.selectedIdx]
}

// IsVisible returns whether suggestions are currently visible
func (s *Suggestions) IsVisible() bool {
	return s.visible && len(s.filtered) > 0
}

// Render renders the suggestions dropdown
func (s *Suggestions) Render(st styles, width int) string {
	if !s.IsVisible() {
		return ""
	}

	var b strings.Builder
	header := "Commands"
	if s.prefix == "@" {
		header = "Tasks"
	}
	b.WriteString(st.laneHeader.Render(header) + "\n")

	// Show max 5 suggestions
	maxVisible := 5
	for i, item := range s.filtered {
		if i >= maxVisible {
			b.WriteString(st.help.Render(fmt.Sprintf("  ... and %d more", len(s.filtered)-maxVisible)))
			break
		}
		var line string
		if i == s.selectedIdx {
			line = st.selected.Render("▶ " + item.Text + " " + item.Description)
		} else {
			line = "  " + item.Text + " " + st.help.Render(item.Description)
		}
		b.WriteString(line + "\n")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#6366F1")).
		Padding(0, 1).
		Width(width - 4).
		Render(b.String())
}
