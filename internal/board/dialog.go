package board

import "sync"

// DialogID names an overlay form.
type DialogID string

const (
	DialogSignIn    DialogID = "signin"
	DialogSignUp    DialogID = "signup"
	DialogNewTask   DialogID = "newtask"
	DialogEditTask  DialogID = "edittask"
	DialogUsers     DialogID = "users"
	DialogAdminAuth DialogID = "adminauth"
	DialogUnlock    DialogID = "unlock"
)

// Form field names shared by the dialogs.
const (
	FieldFullName        = "fullName"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldTaskID          = "taskId"
	FieldTitle           = "title"
	FieldDescription     = "description"
	FieldStatus          = "status"
	FieldPriority        = "priority"
	FieldDueDate         = "dueDate"
	FieldAssignTo        = "assignTo"
	FieldAdminPassword   = "adminPassword"
	FieldAppPassword     = "appPassword"
)

// Dismissal records how a dialog was closed.
type Dismissal int

const (
	DismissControl Dismissal = iota
	DismissBackdrop
	DismissSubmit
)

// Dialog is a snapshot of one overlay.
type Dialog struct {
	ID     DialogID
	Open   bool
	Error  string
	Fields map[string]string
	form   bool
}

// HasForm reports whether the dialog carries a form and an error slot.
func (d Dialog) HasForm() bool { return d.form }

// DialogManager tracks the open/close lifecycle of stacked overlays.
// It does not enforce mutual exclusion; callers close one dialog before
// opening the next when workflows chain.
type DialogManager struct {
	mu           sync.Mutex
	dialogs      map[DialogID]*Dialog
	stack        []DialogID
	scrollLocked bool
}

// NewDialogManager registers every dialog the board uses.
func NewDialogManager() *DialogManager {
	m := &DialogManager{dialogs: make(map[DialogID]*Dialog)}
	m.Register(DialogSignIn, true)
	m.Register(DialogSignUp, true)
	m.Register(DialogNewTask, true)
	m.Register(DialogEditTask, true)
	m.Register(DialogUsers, false)
	m.Register(DialogAdminAuth, true)
	m.Register(DialogUnlock, true)
	return m
}

// Register adds a dialog. Registering an existing id resets it.
func (m *DialogManager) Register(id DialogID, form bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialogs[id] = &Dialog{ID: id, form: form, Fields: map[string]string{}}
}

// Open shows a dialog, makes it the active input target and suppresses background scroll.
func (m *DialogManager) Open(id DialogID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dialogs[id]
	if !ok {
		return
	}
	if d.form {
		d.Error = ""
	}
	d.Open = true
	m.removeFromStack(id)
	m.stack = append(m.stack, id)
	m.scrollLocked = true
}

// Close hides a dialog. Background scroll is restored however it was dismissed.
func (m *DialogManager) Close(id DialogID, _ Dismissal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.dialogs[id]; ok {
		d.Open = false
	}
	m.removeFromStack(id)
	m.scrollLocked = false
}

// Active returns the dialog receiving input, if any.
func (m *DialogManager) Active() (DialogID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.stack) == 0 {
		return "", false
	}
	return m.stack[len(m.stack)-1], true
}

// IsOpen reports whether id is visible.
func (m *DialogManager) IsOpen(id DialogID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dialogs[id]
	return ok && d.Open
}

// ScrollLocked reports whether background scroll is suppressed.
func (m *DialogManager) ScrollLocked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scrollLocked
}

// Get returns a copy of the dialog state.
func (m *DialogManager) Get(id DialogID) Dialog {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.dialogs[id]
	if !ok {
		return Dialog{ID: id, Fields: map[string]string{}}
	}
	out := *d
	out.Fields = make(map[string]string, len(d.Fields))
	for k, v := range d.Fields {
		out.Fields[k] = v
	}
	return out
}

// SetError writes the dialog's inline error slot.
func (m *DialogManager) SetError(id DialogID, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.dialogs[id]; ok {
		d.Error = msg
	}
}

// Error returns the dialog's inline error.
func (m *DialogManager) Error(id DialogID) string {
	return m.Get(id).Error
}

// Field returns one form value.
func (m *DialogManager) Field(id DialogID, name string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.dialogs[id]; ok {
		return d.Fields[name]
	}
	return ""
}

// SetField writes one form value.
func (m *DialogManager) SetField(id DialogID, name, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.dialogs[id]; ok {
		d.Fields[name] = value
	}
}

// ResetForm clears every form value and the error slot.
func (m *DialogManager) ResetForm(id DialogID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d, ok := m.dialogs[id]; ok {
		d.Fields = map[string]string{}
		d.Error = ""
	}
}

func (m *DialogManager) removeFromStack(id DialogID) {
	out := m.stack[:0]
	for _, s := range m.stack {
		if s != id {
			out = append(out, s)
		}
	}
	m.stack = out
}
