package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fentz26/planner/internal/board"
	"github.com/fentz26/planner/internal/models"
)

type fieldKind int

const (
	textField fieldKind = iota
	secretField
	choiceField
)

type choice struct {
	Value string
	Label string
}

type formField struct {
	name    string
	label   string
	kind    fieldKind
	input   textinput.Model
	options []choice
	picked  int
}

func (f *formField) value() string {
	if f.kind == choiceField {
		if f.picked < len(f.options) {
			return f.options[f.picked].Value
		}
		return ""
	}
	return f.input.Value()
}

// formModel edits the fields of one dialog. Values are written back to the
// dialog manager before every submit.
type formModel struct {
	dialog board.DialogID
	title  string
	fields []*formField
	focus  int
}

var priorityChoices = []choice{
	{Value: "", Label: "select..."},
	{Value: string(models.PriorityLow), Label: "Low"},
	{Value: string(models.PriorityMedium), Label: "Medium"},
	{Value: string(models.PriorityHigh), Label: "High"},
}

var statusChoices = []choice{
	{Value: string(models.TaskStatusToDo), Label: string(models.TaskStatusToDo)},
	{Value: string(models.TaskStatusInProgress), Label: string(models.TaskStatusInProgress)},
	{Value: string(models.TaskStatusCompleted), Label: string(models.TaskStatusCompleted)},
}

var formTitles = map[board.DialogID]string{
	board.DialogSignIn:    "Sign in",
	board.DialogSignUp:    "Sign up",
	board.DialogNewTask:   "New task",
	board.DialogEditTask:  "Edit task",
	board.DialogAdminAuth: "Admin password required",
	board.DialogUnlock:    "App locked",
}

// newForm builds the form for dialog d. assignees feeds the new-task
// assignee selector.
func newForm(d board.Dialog, assignees []board.UserOption) *formModel {
	f := &formModel{dialog: d.ID, title: formTitles[d.ID]}
	add := func(name, label string, kind fieldKind, options []choice) {
		ff := &formField{name: name, label: label, kind: kind}
		current := d.Fields[name]
		if kind == choiceField {
			ff.options = append([]choice(nil), options...)
			ff.picked = -1
			for i, o := range ff.options {
				if o.Value == current {
					ff.picked = i
				}
			}
			if ff.picked < 0 {
				if current != "" {
					ff.options = append(ff.options, choice{Value: current, Label: current})
					ff.picked = len(ff.options) - 1
				} else {
					ff.picked = 0
				}
			}
		} else {
			ti := textinput.New()
			ti.CharLimit = 256
			ti.Width = 40
			ti.SetValue(current)
			if kind == secretField {
				ti.EchoMode = textinput.EchoPassword
				ti.EchoCharacter = '•'
			}
			ff.input = ti
		}
		f.fields = append(f.fields, ff)
	}

	switch d.ID {
	case board.DialogSignIn:
		add(board.FieldFullName, "Full name", textField, nil)
		add(board.FieldPassword, "Password", secretField, nil)
	case board.DialogSignUp:
		add(board.FieldFullName, "Full name", textField, nil)
		add(board.FieldPassword, "Password", secretField, nil)
		add(board.FieldConfirmPassword, "Confirm password", secretField, nil)
	case board.DialogNewTask:
		add(board.FieldTitle, "Title", textField, nil)
		add(board.FieldDescription, "Description", textField, nil)
		add(board.FieldPriority, "Priority", choiceField, priorityChoices)
		add(board.FieldDueDate, "Due date (YYYY-MM-DD)", textField, nil)
		opts := make([]choice, 0, len(assignees))
		for _, u := range assignees {
			opts = append(opts, choice{Value: u.Value, Label: u.Label})
		}
		if len(opts) == 0 {
			opts = append(opts, choice{Value: "", Label: board.SelfLabel})
		}
		add(board.FieldAssignTo, "Assign to", choiceField, opts)
	case board.DialogEditTask:
		add(board.FieldTitle, "Title", textField, nil)
		add(board.FieldDescription, "Description", textField, nil)
		add(board.FieldStatus, "Status", choiceField, statusChoices)
		add(board.FieldPriority, "Priority", choiceField, priorityChoices[1:])
		add(board.FieldDueDate, "Due date (YYYY-MM-DD)", textField, nil)
	case board.DialogAdminAuth:
		add(board.FieldAdminPassword, "Admin password", secretField, nil)
	case board.DialogUnlock:
		add(board.FieldAppPassword, "App password", secretField, nil)
	}
	f.setFocus(0)
	return f
}

func (f *formModel) setFocus(i int) tea.Cmd {
	if len(f.fields) == 0 {
		return nil
	}
	i = (i + len(f.fields)) % len(f.fields)
	f.focus = i
	var cmd tea.Cmd
	for j, ff := range f.fields {
		if ff.kind == choiceField {
			continue
		}
		if j == i {
			cmd = ff.input.Focus()
		} else {
			ff.input.Blur()
		}
	}
	return cmd
}

// Values returns the current field values keyed by field name.
func (f *formModel) Values() map[string]string {
	out := make(map[string]string, len(f.fields))
	for _, ff := range f.fields {
		out[ff.name] = ff.value()
	}
	return out
}

// formResult tells the app what a key did to the form.
type formResult int

const (
	formEditing formResult = iota
	formSubmit
	formCancel
)

func (f *formModel) Update(msg tea.Msg) (formResult, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		cur := f.fields[f.focus]
		switch key.String() {
		case "esc":
			return formCancel, nil
		case "enter":
			return formSubmit, nil
		case "tab", "down":
			return formEditing, f.setFocus(f.focus + 1)
		case "shift+tab", "up":
			return formEditing, f.setFocus(f.focus - 1)
		case "left", "right":
			if cur.kind == choiceField {
				step := 1
				if key.String() == "left" {
					step = -1
				}
				n := len(cur.options)
				cur.picked = (cur.picked + step + n) % n
				return formEditing, nil
			}
		}
		if cur.kind == choiceField {
			return formEditing, nil
		}
	}

	cur := f.fields[f.focus]
	if cur.kind == choiceField {
		return formEditing, nil
	}
	var cmd tea.Cmd
	cur.input, cmd = cur.input.Update(msg)
	return formEditing, cmd
}

func (f *formModel) View(st styles, errText string) string {
	var b strings.Builder
	b.WriteString(st.title.Render(f.title) + "\n\n")
	for i, ff := range f.fields {
		label := st.label.Render(ff.label)
		if i == f.focus {
			label = st.selected.Render(" " + ff.label + " ")
		}
		b.WriteString(label + "\n")
		if ff.kind == choiceField {
			b.WriteString("  ‹ " + ff.options[ff.picked].Label + " ›\n")
		} else {
			b.WriteString("  " + ff.input.View() + "\n")
		}
	}
	if errText != "" {
		b.WriteString("\n" + st.errText.Render(errText) + "\n")
	}
	b.WriteString("\n" + st.help.Render(f.help()))
	return st.dialog.Render(b.String())
}

func (f *formModel) help() string {
	h := "tab: next field  ←/→: change choice  enter: submit  esc: cancel"
	if f.dialog == board.DialogSignIn {
		h += "  ctrl+u: sign up"
	}
	return h
}
