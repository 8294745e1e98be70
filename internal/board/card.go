package board

import (
	"strings"

	"github.com/fentz26/planner/internal/models"
)

// Action is a control bound on a card.
type Action string

const (
	ActionComplete       Action = "complete"
	ActionStatus         Action = "status"
	ActionDelete         Action = "delete"
	ActionEdit           Action = "edit"
	ActionToggleComments Action = "comments"
	ActionSendComment    Action = "send-comment"
)

// CompletedMarker labels a compact card.
const CompletedMarker = "COMPLETED"

// PriorityStyle selects the badge colour.
type PriorityStyle string

const (
	PriorityStyleLow    PriorityStyle = "low"
	PriorityStyleMedium PriorityStyle = "medium"
	PriorityStyleHigh   PriorityStyle = "high"
)

// PriorityBadge is the label and style shown for a priority.
type PriorityBadge struct {
	Label string
	Style PriorityStyle
}

// PriorityInfo maps a stored priority, canonical or legacy, onto its badge.
// Unknown values are echoed uppercased with the medium style.
func PriorityInfo(p string) PriorityBadge {
	lower := strings.ToLower(strings.TrimSpace(p))
	switch {
	case strings.HasPrefix(lower, "ba") || lower == "low":
		return PriorityBadge{Label: "LOW", Style: PriorityStyleLow}
	case strings.HasPrefix(lower, "me") || lower == "medium":
		return PriorityBadge{Label: "MEDIUM", Style: PriorityStyleMedium}
	case strings.HasPrefix(lower, "al") || lower == "high":
		return PriorityBadge{Label: "HIGH", Style: PriorityStyleHigh}
	default:
		return PriorityBadge{Label: strings.ToUpper(p), Style: PriorityStyleMedium}
	}
}

// FormatDate reorders "YYYY-MM-DD" into "DD/MM/YYYY". Anything that does not
// split into exactly three dash-separated parts is returned unchanged.
func FormatDate(iso string) string {
	if iso == "" {
		return ""
	}
	parts := strings.Split(iso, "-")
	if len(parts) != 3 {
		return iso
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// FormatDateTime formats a "YYYY-MM-DD HH:MM:SS" (or RFC 3339 style) timestamp
// as "DD/MM/YYYY HH:MM". The time part is optional.
func FormatDateTime(ts string) string {
	if ts == "" {
		return ""
	}
	date, clock := ts, ""
	if i := strings.IndexAny(ts, " T"); i >= 0 {
		date, clock = ts[:i], ts[i+1:]
	}
	out := FormatDate(date)
	if clock != "" {
		if len(clock) > 5 {
			clock = clock[:5]
		}
		out += " " + clock
	}
	return out
}

// CommentView is one rendered comment.
type CommentView struct {
	Author  string
	Content string
	When    string
}

// CardView is the presentational description of a task card.
type CardView struct {
	TaskID      int64
	Compact     bool
	Marker      string
	Title       string
	Description string
	Handle      bool
	Priority    PriorityBadge
	// AssignedToOther is set when the task is assigned to someone other than
	// the viewer. Assignee may still be empty when the server sent no name.
	AssignedToOther bool
	Assignee        string
	DueDate         string
	Actions         []Action
	Comments        []CommentView
}

// Has reports whether the card exposes action a.
func (v CardView) Has(a Action) bool {
	for _, x := range v.Actions {
		if x == a {
			return true
		}
	}
	return false
}

// Render derives the card for task as seen by viewer. It is pure.
func Render(task models.Task, viewer models.Session) CardView {
	owner := canModify(task, viewer)
	comments := make([]CommentView, 0, len(task.Comments))
	for _, c := range task.Comments {
		comments = append(comments, CommentView{
			Author:  c.UserName,
			Content: c.Content,
			When:    FormatDateTime(c.CreatedAt),
		})
	}

	v := CardView{
		TaskID:      task.ID,
		Title:       task.Title,
		Description: task.Description,
		Comments:    comments,
	}

	if task.Lane() == models.TaskStatusCompleted {
		v.Compact = true
		v.Marker = CompletedMarker
		// The thread stays visible but the card takes no new comments.
		if owner {
			v.Actions = append(v.Actions, ActionDelete)
		}
		return v
	}

	v.Handle = true
	v.Priority = PriorityInfo(task.Priority)
	if assignedToOther(task, viewer) {
		v.AssignedToOther = true
		v.Assignee = task.AssignedToName
	}
	v.DueDate = FormatDate(task.DueDate)
	v.Actions = append(v.Actions, ActionComplete, ActionStatus)
	if owner {
		v.Actions = append(v.Actions, ActionDelete, ActionEdit)
	}
	v.Actions = append(v.Actions, ActionToggleComments, ActionSendComment)
	return v
}

func canModify(task models.Task, viewer models.Session) bool {
	return viewer.Authenticated && viewer.UserID != 0 && task.CreatedBy == viewer.UserID
}

func assignedToOther(task models.Task, viewer models.Session) bool {
	return viewer.Authenticated && task.UserID != 0 && task.UserID != viewer.UserID
}

// EditForm is the pre-populated content of the edit dialog.
type EditForm struct {
	TaskID      int64
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
}

// EditFormFromTask seeds the edit dialog from a task. Legacy priorities are
// normalized so the selector shows a canonical option.
func EditFormFromTask(task models.Task) EditForm {
	return EditForm{
		TaskID:      task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    models.NormalizePriority(task.Priority),
		DueDate:     task.DueDate,
	}
}
