package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/fentz26/planner/internal/board"
	"github.com/fentz26/planner/internal/models"
)

// visibleLanes lists the lanes currently drawn. Completed only appears
// once it holds a card.
func visibleLanes(s board.Snapshot) []models.TaskStatus {
	if s.CompletedVisible {
		return board.Lanes
	}
	return board.Lanes[:2]
}

func laneTitle(s board.Snapshot, status models.TaskStatus) string {
	if status == models.TaskStatusCompleted {
		return fmt.Sprintf("%s (%d)", status, s.CompletedCount)
	}
	return fmt.Sprintf("%s (%d)", status, len(s.Lane(status).Tasks))
}

func (a *App) renderBoard(width, height int) string {
	snap := a.ctl.Board.Snapshot()
	if !snap.Loaded && snap.LoadErr == nil && a.ctl.Viewer().Authenticated {
		return a.styles.muted.Render("\n  Loading tasks...\n")
	}
	if a.ctl.Session.Locked() {
		return a.styles.muted.Render("\n  The app is locked. Press L to enter the app password.\n")
	}
	if !a.ctl.Viewer().Authenticated {
		return a.styles.muted.Render("\n  Sign in to see your tasks. Press L to sign in, S to sign up.\n")
	}

	lanes := visibleLanes(snap)
	gap := 1
	laneWidth := (width - gap*(len(lanes)-1)) / len(lanes)
	if laneWidth < 20 {
		laneWidth = 20
	}
	inner := laneWidth - 4

	cols := make([]string, 0, len(lanes))
	for i, status := range lanes {
		cards := a.ctl.Cards(status)
		focused := i == a.lane
		sel := a.cursor[status]

		blocks := make([]string, 0, len(cards))
		for j, card := range cards {
			blocks = append(blocks, a.renderCard(card, inner, focused && j == sel))
		}
		if len(blocks) == 0 {
			blocks = append(blocks, a.styles.muted.Render(board.EmptyLanePlaceholder))
		}

		body := strings.Join(fitBlocks(blocks, sel, height-4), "\n")
		content := a.styles.laneHeader.Render(laneTitle(snap, status)) + "\n\n" + body

		st := a.styles.lane
		if focused {
			st = a.styles.laneFocus
		}
		cols = append(cols, st.Width(laneWidth-2).Height(height-2).Render(content))
	}

	out := lipgloss.JoinHorizontal(lipgloss.Top, interleave(cols, strings.Repeat(" ", gap))...)
	if snap.LoadErr != nil {
		out += "\n" + a.styles.errText.Render("  "+board.Message(snap.LoadErr, "Could not load tasks"))
	}
	return out
}

func (a *App) renderCard(v board.CardView, width int, focused bool) string {
	st := a.styles.card
	if focused {
		st = a.styles.cardFocus
	}

	var b strings.Builder
	if v.Compact {
		b.WriteString(a.styles.marker.Render(v.Marker) + " " + v.Title)
	} else {
		b.WriteString(a.styles.badge(v.Priority) + " ")
		b.WriteString(lipgloss.NewStyle().Bold(true).Render(wordwrap.String(v.Title, width)))
		if v.Description != "" {
			b.WriteString("\n" + a.styles.muted.Render(wordwrap.String(v.Description, width)))
		}
		var meta []string
		if v.AssignedToOther && v.Assignee != "" {
			meta = append(meta, "→ "+v.Assignee)
		}
		if v.DueDate != "" {
			meta = append(meta, "due "+v.DueDate)
		}
		if len(meta) > 0 {
			b.WriteString("\n" + a.styles.label.Render(strings.Join(meta, "  ")))
		}
	}

	count := fmt.Sprintf("💬 %d", len(v.Comments))
	if v.Compact {
		b.WriteString("\n" + a.styles.muted.Render(count))
		a.writeComments(&b, v.Comments, width)
		return st.Width(width).Render(b.String())
	}

	composer := a.ctl.Threads.Composer(v.TaskID)
	if !composer.Expanded {
		b.WriteString("\n" + a.styles.muted.Render(count))
		return st.Width(width).Render(b.String())
	}

	b.WriteString("\n" + a.styles.muted.Render(count+" ▾"))
	a.writeComments(&b, v.Comments, width)
	switch {
	case a.composing == v.TaskID:
		b.WriteString("\n" + a.composer.View())
	case composer.Sending:
		b.WriteString("\n" + a.styles.muted.Render("sending..."))
	case composer.Draft != "":
		b.WriteString("\n" + a.styles.muted.Render("draft: "+composer.Draft))
	default:
		b.WriteString("\n" + a.styles.help.Render("i to comment"))
	}
	if composer.Error != "" {
		b.WriteString("\n" + a.styles.errText.Render(composer.Error))
	}
	return st.Width(width).Render(b.String())
}

func (a *App) writeComments(b *strings.Builder, comments []board.CommentView, width int) {
	for _, c := range comments {
		head := a.styles.label.Render(c.Author) + " " + a.styles.muted.Render(c.When)
		b.WriteString("\n" + head + "\n" + wordwrap.String(c.Content, width))
	}
}

// fitBlocks drops blocks from the top until the selected one fits in height lines.
func fitBlocks(blocks []string, selected, height int) []string {
	if selected >= len(blocks) {
		selected = len(blocks) - 1
	}
	if selected < 0 {
		selected = 0
	}
	start := 0
	for start < selected {
		total := 0
		for _, bl := range blocks[start : selected+1] {
			total += lipgloss.Height(bl) + 1
		}
		if total <= height {
			break
		}
		start++
	}
	return blocks[start:]
}

func interleave(items []string, sep string) []string {
	out := make([]string, 0, len(items)*2)
	for i, it := range items {
		if i > 0 {
			out = append(out, sep)
		}
		out = append(out, it)
	}
	return out
}
