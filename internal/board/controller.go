package board

import (
	"context"
	"strconv"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/fentz26/planner/internal/models"
)

// Fallback messages for dialog error slots and notices.
const (
	MsgSignInFailed  = "Sign-in failed"
	MsgSignUpFailed  = "Registration failed"
	MsgSignedUp      = "Registration complete. Sign in now."
	MsgCreateFailed  = "Error creating task"
	MsgUpdateFailed  = "Error updating task"
	MsgStatusFailed  = "Error updating status"
	MsgDeleteFailed  = "Error deleting task"
	MsgRemoveFailed  = "Error deleting user"
	MsgConfirmDelete = "Delete this task?"
	MsgUnlockFailed  = "Could not unlock the app"
)

// NoticeLevel classifies a board-wide notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a transient message not tied to a dialog.
type Notice struct {
	Level NoticeLevel
	Text  string
}

// Controller wires the board components together and runs the dialog
// workflows that span more than one of them.
type Controller struct {
	Session *SessionController
	Dialogs *DialogManager
	Board   *Board
	Threads *CommentThreads
	Admin   *AdminFlow
	Menu    *StatusMenu

	logger *log.Logger

	mu            sync.Mutex
	confirmDelete int64
	notice        Notice
}

// New builds a controller over a.
func New(a API, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.StandardLogger()
	}
	c := &Controller{
		Dialogs: NewDialogManager(),
		Board:   NewBoard(a, logger),
		Threads: NewCommentThreads(a, logger),
		Admin:   NewAdminFlow(a, logger),
		Menu:    &StatusMenu{},
		logger:  logger,
	}
	c.Board.OnLoad(c.Threads.Seed)
	c.Session = NewSessionController(a, logger, c.sessionEstablished, c.sessionCleared)
	return c
}

// Start probes for an existing session, loading the board when there is one.
func (c *Controller) Start(ctx context.Context) models.Session {
	return c.Session.Probe(ctx)
}

func (c *Controller) sessionEstablished(ctx context.Context) {
	// Load failures are kept on the board snapshot.
	_ = c.Board.Load(ctx)
}

func (c *Controller) sessionCleared() {
	c.Board.Clear()
	c.Threads.Reset()
	c.Admin.Reset()
	c.Menu.Close()
	c.mu.Lock()
	c.confirmDelete = 0
	c.mu.Unlock()
}

// Viewer returns the current identity.
func (c *Controller) Viewer() models.Session { return c.Session.Current() }

// Cards renders one lane for the current viewer, using the freshest cached threads.
func (c *Controller) Cards(status models.TaskStatus) []CardView {
	viewer := c.Viewer()
	lane := c.Board.Snapshot().Lane(status)
	out := make([]CardView, 0, len(lane.Tasks))
	for _, t := range lane.Tasks {
		if thread, ok := c.Threads.Thread(t.ID); ok {
			t.Comments = thread
		}
		out = append(out, Render(t, viewer))
	}
	return out
}

// --- notices ---

// Notice returns the current notice.
func (c *Controller) Notice() Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notice
}

// ClearNotice dismisses the current notice.
func (c *Controller) ClearNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = Notice{}
}

func (c *Controller) setNotice(level NoticeLevel, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = Notice{Level: level, Text: text}
}

// --- session dialogs ---

// OpenUnlock shows the app password prompt.
func (c *Controller) OpenUnlock() {
	c.Dialogs.ResetForm(DialogUnlock)
	c.Dialogs.Open(DialogUnlock)
}

// SubmitUnlock passes the app lock with the prompt's password and probes
// for a session behind it.
func (c *Controller) SubmitUnlock(ctx context.Context) error {
	pw := c.Dialogs.Field(DialogUnlock, FieldAppPassword)
	if err := c.Session.Unlock(ctx, pw); err != nil {
		c.Dialogs.SetError(DialogUnlock, Message(err, MsgUnlockFailed))
		return err
	}
	c.Dialogs.ResetForm(DialogUnlock)
	c.Dialogs.Close(DialogUnlock, DismissSubmit)
	return nil
}

// OpenSignIn shows the sign-in dialog.
func (c *Controller) OpenSignIn() {
	c.Dialogs.Open(DialogSignIn)
}

// SwitchToSignUp closes sign-in and opens a fresh sign-up form.
func (c *Controller) SwitchToSignUp() {
	c.Dialogs.Close(DialogSignIn, DismissControl)
	c.Dialogs.ResetForm(DialogSignUp)
	c.Dialogs.Open(DialogSignUp)
}

// SubmitSignIn signs in with the sign-in dialog's fields.
func (c *Controller) SubmitSignIn(ctx context.Context) error {
	name := c.Dialogs.Field(DialogSignIn, FieldFullName)
	pw := c.Dialogs.Field(DialogSignIn, FieldPassword)
	if _, err := c.Session.SignIn(ctx, name, pw); err != nil {
		c.Dialogs.SetError(DialogSignIn, Message(err, MsgSignInFailed))
		return err
	}
	c.Dialogs.ResetForm(DialogSignIn)
	c.Dialogs.Close(DialogSignIn, DismissSubmit)
	return nil
}

// SubmitSignUp registers with the sign-up dialog's fields and, on success,
// hands over to the sign-in dialog.
func (c *Controller) SubmitSignUp(ctx context.Context) error {
	name := c.Dialogs.Field(DialogSignUp, FieldFullName)
	pw := c.Dialogs.Field(DialogSignUp, FieldPassword)
	confirm := c.Dialogs.Field(DialogSignUp, FieldConfirmPassword)
	if err := c.Session.SignUp(ctx, name, pw, confirm); err != nil {
		c.Dialogs.SetError(DialogSignUp, Message(err, MsgSignUpFailed))
		return err
	}
	c.Dialogs.Close(DialogSignUp, DismissSubmit)
	c.Dialogs.ResetForm(DialogSignUp)
	c.setNotice(NoticeInfo, MsgSignedUp)
	c.Dialogs.ResetForm(DialogSignIn)
	c.Dialogs.SetField(DialogSignIn, FieldFullName, name)
	c.Dialogs.Open(DialogSignIn)
	return nil
}

// SignOut ends the session and clears the board.
func (c *Controller) SignOut(ctx context.Context) {
	c.Session.SignOut(ctx)
}

// --- task dialogs ---

// OpenNewTask shows the new-task dialog with status defaulted to To Do.
// The assignee list is fetched separately through Admin.ListUsers.
func (c *Controller) OpenNewTask() {
	if c.Dialogs.Field(DialogNewTask, FieldStatus) == "" {
		c.Dialogs.SetField(DialogNewTask, FieldStatus, string(models.TaskStatusToDo))
	}
	c.Dialogs.Open(DialogNewTask)
}

// SubmitNewTask creates a task from the new-task dialog.
func (c *Controller) SubmitNewTask(ctx context.Context) (models.Task, error) {
	d := c.Dialogs.Get(DialogNewTask)
	task, err := c.Board.Create(ctx, CreateForm{
		Title:       d.Fields[FieldTitle],
		Description: d.Fields[FieldDescription],
		Status:      d.Fields[FieldStatus],
		Priority:    d.Fields[FieldPriority],
		DueDate:     d.Fields[FieldDueDate],
		AssignTo:    d.Fields[FieldAssignTo],
	})
	if err != nil {
		c.Dialogs.SetError(DialogNewTask, Message(err, MsgCreateFailed))
		return models.Task{}, err
	}
	c.Threads.Put(task.ID, task.Comments)
	c.Dialogs.ResetForm(DialogNewTask)
	c.Dialogs.Close(DialogNewTask, DismissSubmit)
	return task, nil
}

// OpenEdit pre-populates and shows the edit dialog for taskID.
func (c *Controller) OpenEdit(taskID int64) error {
	task, ok := c.Board.Task(taskID)
	if !ok {
		return ErrTaskNotFound
	}
	form := EditFormFromTask(task)
	c.Dialogs.ResetForm(DialogEditTask)
	c.Dialogs.SetField(DialogEditTask, FieldTaskID, strconv.FormatInt(form.TaskID, 10))
	c.Dialogs.SetField(DialogEditTask, FieldTitle, form.Title)
	c.Dialogs.SetField(DialogEditTask, FieldDescription, form.Description)
	c.Dialogs.SetField(DialogEditTask, FieldStatus, form.Status)
	c.Dialogs.SetField(DialogEditTask, FieldPriority, form.Priority)
	c.Dialogs.SetField(DialogEditTask, FieldDueDate, form.DueDate)
	c.Dialogs.Open(DialogEditTask)
	return nil
}

// SubmitEdit saves the edit dialog.
func (c *Controller) SubmitEdit(ctx context.Context) error {
	d := c.Dialogs.Get(DialogEditTask)
	id, err := strconv.ParseInt(d.Fields[FieldTaskID], 10, 64)
	if err != nil {
		c.Dialogs.SetError(DialogEditTask, MsgUpdateFailed)
		return ErrTaskNotFound
	}
	err = c.Board.Update(ctx, EditForm{
		TaskID:      id,
		Title:       d.Fields[FieldTitle],
		Description: d.Fields[FieldDescription],
		Status:      d.Fields[FieldStatus],
		Priority:    d.Fields[FieldPriority],
		DueDate:     d.Fields[FieldDueDate],
	})
	if err != nil {
		c.Dialogs.SetError(DialogEditTask, Message(err, MsgUpdateFailed))
		return err
	}
	c.Dialogs.Close(DialogEditTask, DismissSubmit)
	return nil
}

// --- card actions ---

// Complete marks taskID completed.
func (c *Controller) Complete(ctx context.Context, taskID int64) error {
	if err := c.Board.Complete(ctx, taskID); err != nil {
		c.setNotice(NoticeError, Message(err, MsgStatusFailed))
		return err
	}
	return nil
}

// OpenStatusMenu shows the status menu under taskID's status control.
func (c *Controller) OpenStatusMenu(taskID int64) {
	c.Menu.Open(Anchor{TaskID: taskID})
}

// SelectStatus applies menu option i to the task the menu was opened for.
func (c *Controller) SelectStatus(ctx context.Context, i int) error {
	anchor, status, ok := c.Menu.Select(i)
	if !ok {
		return nil
	}
	if err := c.Board.SetStatus(ctx, anchor.TaskID, status); err != nil {
		c.setNotice(NoticeError, Message(err, MsgStatusFailed))
		return err
	}
	return nil
}

// RequestDeleteTask asks for confirmation before removing taskID.
func (c *Controller) RequestDeleteTask(taskID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmDelete = taskID
}

// PendingDelete returns the task awaiting confirmation, or 0.
func (c *Controller) PendingDelete() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirmDelete
}

// CancelDeleteTask drops the confirmation prompt.
func (c *Controller) CancelDeleteTask() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.confirmDelete = 0
}

// ConfirmDeleteTask removes the task awaiting confirmation and then reloads.
func (c *Controller) ConfirmDeleteTask(ctx context.Context) error {
	c.mu.Lock()
	id := c.confirmDelete
	c.confirmDelete = 0
	c.mu.Unlock()
	if id == 0 {
		return ErrNoPendingConfirm
	}
	if err := c.Board.Delete(ctx, id); err != nil {
		c.setNotice(NoticeError, Message(err, MsgDeleteFailed))
		return err
	}
	c.Threads.Drop(id)
	_ = c.Board.Load(ctx)
	return nil
}

// ToggleComments expands or collapses taskID's composer.
func (c *Controller) ToggleComments(taskID int64) bool {
	return c.Threads.Toggle(taskID)
}

// SetCommentDraft edits taskID's composer text.
func (c *Controller) SetCommentDraft(taskID int64, text string) {
	c.Threads.SetDraft(taskID, text)
}

// Commentable reports whether taskID takes new comments. Tasks missing from
// the board are left to the server.
func (c *Controller) Commentable(taskID int64) bool {
	t, ok := c.Board.Task(taskID)
	if !ok {
		return true
	}
	return Render(t, c.Viewer()).Has(ActionSendComment)
}

// SendComment appends the composer draft to taskID's thread.
func (c *Controller) SendComment(ctx context.Context, taskID int64) error {
	if !c.Commentable(taskID) {
		return ErrTaskReadOnly
	}
	_, err := c.Threads.Append(ctx, taskID, c.Threads.Composer(taskID).Draft)
	return err
}

// --- user administration ---

// OpenUsers shows the directory dialog. The list is fetched through Admin.ListUsers.
func (c *Controller) OpenUsers() {
	c.Dialogs.Open(DialogUsers)
}

// RemoveUser selects userID for removal and asks for the admin password.
func (c *Controller) RemoveUser(userID int64) {
	c.Admin.RequestDelete(userID)
	c.Dialogs.ResetForm(DialogAdminAuth)
	c.Dialogs.Open(DialogAdminAuth)
}

// SubmitAdminAuth removes the pending user with the password from the credential dialog.
func (c *Controller) SubmitAdminAuth(ctx context.Context) error {
	pw := c.Dialogs.Field(DialogAdminAuth, FieldAdminPassword)
	if err := c.Admin.ConfirmDelete(ctx, c.Admin.Pending(), pw); err != nil {
		c.Dialogs.SetError(DialogAdminAuth, Message(err, MsgRemoveFailed))
		return err
	}
	c.Dialogs.ResetForm(DialogAdminAuth)
	c.Dialogs.Close(DialogAdminAuth, DismissSubmit)
	return nil
}

// Dismiss closes dialog id without submitting it.
func (c *Controller) Dismiss(id DialogID, how Dismissal) {
	c.Dialogs.Close(id, how)
}
