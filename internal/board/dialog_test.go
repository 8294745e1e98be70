package board

import "testing"

func TestDialog_OpenCloseRestoresScroll(t *testing.T) {
	for _, how := range []Dismissal{DismissControl, DismissBackdrop, DismissSubmit} {
		m := NewDialogManager()
		m.Open(DialogNewTask)
		if !m.ScrollLocked() {
			t.Fatal("Expected scroll locked after open")
		}
		m.Close(DialogNewTask, how)
		if m.ScrollLocked() {
			t.Errorf("Expected scroll restored after dismissal %d", how)
		}
		if m.IsOpen(DialogNewTask) {
			t.Errorf("Expected dialog closed after dismissal %d", how)
		}
	}
}

func TestDialog_OpenClearsError(t *testing.T) {
	m := NewDialogManager()
	m.Open(DialogSignIn)
	m.SetError(DialogSignIn, "bad password")
	m.Close(DialogSignIn, DismissControl)

	m.Open(DialogSignIn)
	if got := m.Error(DialogSignIn); got != "" {
		t.Errorf("Expected empty error slot on open, got %q", got)
	}
}

func TestDialog_ActiveIsMostRecent(t *testing.T) {
	m := NewDialogManager()
	if _, ok := m.Active(); ok {
		t.Fatal("Expected no active dialog")
	}
	m.Open(DialogUsers)
	m.Open(DialogAdminAuth)
	if id, _ := m.Active(); id != DialogAdminAuth {
		t.Errorf("Expected admin auth active, got %s", id)
	}
	m.Close(DialogAdminAuth, DismissBackdrop)
	if id, _ := m.Active(); id != DialogUsers {
		t.Errorf("Expected users active, got %s", id)
	}
}

func TestDialog_ResetFormAndFields(t *testing.T) {
	m := NewDialogManager()
	m.SetField(DialogNewTask, FieldTitle, "Write docs")
	m.SetError(DialogNewTask, "oops")

	snap := m.Get(DialogNewTask)
	snap.Fields[FieldTitle] = "mutated"
	if got := m.Field(DialogNewTask, FieldTitle); got != "Write docs" {
		t.Errorf("Expected snapshot to be a copy, field now %q", got)
	}

	m.ResetForm(DialogNewTask)
	if m.Field(DialogNewTask, FieldTitle) != "" || m.Error(DialogNewTask) != "" {
		t.Error("Expected form reset")
	}
	if !snap.HasForm() {
		t.Error("Expected new task dialog to carry a form")
	}
	if m.Get(DialogUsers).HasForm() {
		t.Error("Expected users dialog to carry no form")
	}
}
