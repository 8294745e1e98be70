package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/fentz26/planner/internal/board"
)

// Theme is the palette the board is drawn with.
type Theme struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color
	Fg      lipgloss.Color
	Bar     lipgloss.Color
}

var darkTheme = Theme{
	Primary: lipgloss.Color("#7C3AED"),
	Accent:  lipgloss.Color("#06B6D4"),
	Success: lipgloss.Color("#10B981"),
	Warning: lipgloss.Color("#F59E0B"),
	Error:   lipgloss.Color("#EF4444"),
	Muted:   lipgloss.Color("#6B7280"),
	Fg:      lipgloss.Color("#F9FAFB"),
	Bar:     lipgloss.Color("#374151"),
}

var lightTheme = Theme{
	Primary: lipgloss.Color("#5B21B6"),
	Accent:  lipgloss.Color("#0E7490"),
	Success: lipgloss.Color("#047857"),
	Warning: lipgloss.Color("#B45309"),
	Error:   lipgloss.Color("#B91C1C"),
	Muted:   lipgloss.Color("#4B5563"),
	Fg:      lipgloss.Color("#111827"),
	Bar:     lipgloss.Color("#E5E7EB"),
}

// ThemeNamed returns the light palette for "light" and the dark one otherwise.
func ThemeNamed(name string) Theme {
	if name == "light" {
		return lightTheme
	}
	return darkTheme
}

// styles are derived once per theme.
type styles struct {
	title      lipgloss.Style
	statusBar  lipgloss.Style
	lane       lipgloss.Style
	laneFocus  lipgloss.Style
	laneHeader lipgloss.Style
	card       lipgloss.Style
	cardFocus  lipgloss.Style
	muted      lipgloss.Style
	help       lipgloss.Style
	errText    lipgloss.Style
	okText     lipgloss.Style
	marker     lipgloss.Style
	dialog     lipgloss.Style
	label      lipgloss.Style
	selected   lipgloss.Style
	priority   map[board.PriorityStyle]lipgloss.Style
}

func newStyles(t Theme) styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Primary).
			Padding(0, 1),
		statusBar: lipgloss.NewStyle().
			Background(t.Bar).
			Foreground(t.Fg).
			Padding(0, 1),
		lane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Muted).
			Padding(0, 1),
		laneFocus: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(0, 1),
		laneHeader: lipgloss.NewStyle().
			Bold(true).
			Foreground(t.Accent),
		card: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			PaddingLeft(1).
			MarginBottom(1),
		cardFocus: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(t.Primary).
			PaddingLeft(1).
			MarginBottom(1),
		muted:    lipgloss.NewStyle().Foreground(t.Muted),
		help:     lipgloss.NewStyle().Foreground(t.Muted).Italic(true),
		errText:  lipgloss.NewStyle().Foreground(t.Error),
		okText:   lipgloss.NewStyle().Foreground(t.Success),
		marker:   lipgloss.NewStyle().Foreground(t.Success).Bold(true),
		label:    lipgloss.NewStyle().Foreground(t.Accent),
		selected: lipgloss.NewStyle().Background(t.Primary).Foreground(lipgloss.Color("#F9FAFB")).Bold(true),
		dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Padding(1, 2),
		priority: map[board.PriorityStyle]lipgloss.Style{
			board.PriorityStyleLow:    lipgloss.NewStyle().Foreground(t.Success).Bold(true),
			board.PriorityStyleMedium: lipgloss.NewStyle().Foreground(t.Warning).Bold(true),
			board.PriorityStyleHigh:   lipgloss.NewStyle().Foreground(t.Error).Bold(true),
		},
	}
}

func (s styles) badge(p board.PriorityBadge) string {
	st, ok := s.priority[p.Style]
	if !ok {
		st = s.priority[board.PriorityStyleMedium]
	}
	return st.Render("[" + p.Label + "]")
}
