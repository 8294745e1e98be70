// Package tui provides the interactive terminal board.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/fentz26/planner/internal/board"
	"github.com/fentz26/planner/internal/models"
)

const msgNotAllowed = "That action is not available for this task"

// Options configures the board UI.
type Options struct {
	// Theme is "dark" or "light".
	Theme string
	// Timeout bounds one action together with the reload that follows it.
	Timeout time.Duration
	Logger  *log.Logger
}

// App is the main TUI application model.
type App struct {
	ctl     *board.Controller
	styles  styles
	timeout time.Duration
	logger  *log.Logger

	width  int
	height int

	lane   int
	cursor map[models.TaskStatus]int

	form        *formModel
	userCursor  int
	composer    textinput.Model
	composing   int64
	cmdbar      *CmdBarModel
	suggestions *Suggestions

	inflight int
	flash    string
}

// Messages returned by the commands wrapping controller calls.
type (
	startedMsg struct{ session models.Session }
	doneMsg    struct {
		action string
		err    error
	}
	usersMsg struct{ err error }
)

// New creates the board UI over ctl.
func New(ctl *board.Controller, opts Options) *App {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.StandardLogger()
	}

	ti := textinput.New()
	ti.Placeholder = "Write a comment"
	ti.CharLimit = 1000
	ti.Prompt = "› "

	return &App{
		ctl:         ctl,
		styles:      newStyles(ThemeNamed(opts.Theme)),
		timeout:     opts.Timeout,
		logger:      opts.Logger,
		cursor:      make(map[models.TaskStatus]int),
		composer:    ti,
		cmdbar:      NewCmdBarModel(),
		suggestions: NewSuggestions(),
	}
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	a.inflight++
	return tea.Batch(textinput.Blink, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		return startedMsg{session: a.ctl.Start(ctx)}
	})
}

// run executes fn off the UI goroutine and reports back with a doneMsg.
func (a *App) run(action string, fn func(ctx context.Context) error) tea.Cmd {
	a.inflight++
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		return doneMsg{action: action, err: fn(ctx)}
	}
}

func (a *App) fetchUsers() tea.Cmd {
	a.inflight++
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		_, err := a.ctl.Admin.ListUsers(ctx)
		return usersMsg{err: err}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.cmdbar.SetWidth(msg.Width - 6)
		a.composer.Width = msg.Width/3 - 8
		return a, nil

	case startedMsg:
		a.inflight--
		a.logger.WithField("authenticated", msg.session.Authenticated).Debug("session probed")
		a.clamp()
		return a, a.promptUnlock()

	case doneMsg:
		a.inflight--
		if msg.err != nil {
			a.logger.WithError(msg.err).WithField("action", msg.action).Debug("action failed")
			if _, open := a.ctl.Dialogs.Active(); !open && !errors.Is(msg.err, board.ErrBusy) {
				a.flash = board.Message(msg.err, "Action failed")
			}
		}
		a.clamp()
		if cmd := a.promptUnlock(); cmd != nil {
			return a, cmd
		}
		return a, a.syncForm()

	case usersMsg:
		a.inflight--
		if a.form != nil && a.form.dialog == board.DialogNewTask {
			a.storeForm()
			a.form = nil
		}
		return a, a.syncForm()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a, a.handleKey(msg)
	}

	switch {
	case a.form != nil:
		_, cmd := a.form.Update(msg)
		return a, cmd
	case a.cmdbar.Focused():
		return a, a.cmdbar.Update(msg)
	case a.composing != 0:
		var cmd tea.Cmd
		a.composer, cmd = a.composer.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case a.form != nil:
		return a.formKey(msg)
	case a.ctl.Dialogs.IsOpen(board.DialogUsers):
		return a.usersKey(msg)
	case a.ctl.PendingDelete() != 0:
		return a.confirmKey(msg)
	case a.menuOpen():
		return a.menuKey(msg)
	case a.cmdbar.Focused():
		return a.cmdbarKey(msg)
	case a.composing != 0:
		return a.composerKey(msg)
	}
	return a.boardKey(msg)
}

func (a *App) menuOpen() bool {
	_, open := a.ctl.Menu.IsOpen()
	return open
}

func (a *App) boardKey(msg tea.KeyMsg) tea.Cmd {
	a.flash = ""
	a.ctl.ClearNotice()
	aff := a.ctl.Session.Affordances()
	card, hasCard := a.selected()

	switch msg.String() {
	case "q":
		return tea.Quit
	case "left", "h":
		a.moveLane(-1)
	case "right", "l":
		a.moveLane(1)
	case "up", "k":
		a.moveCard(-1)
	case "down", "j":
		a.moveCard(1)
	case ":":
		return a.cmdbar.Focus()
	case "r":
		if a.ctl.Viewer().Authenticated {
			return a.run("reload", a.ctl.Board.Load)
		}
	case "L":
		if aff.Unlock {
			a.ctl.OpenUnlock()
			return a.syncForm()
		}
		if aff.SignIn {
			a.ctl.OpenSignIn()
			return a.syncForm()
		}
	case "S":
		if aff.SignIn {
			a.ctl.SwitchToSignUp()
			return a.syncForm()
		}
	case "O":
		if aff.SignOut {
			return a.signOut()
		}
	case "n":
		if aff.NewTask {
			return a.openNewTask()
		}
	case "u":
		if aff.ManageUsers {
			return a.openUsers()
		}
	case "e":
		if hasCard && card.Has(board.ActionEdit) {
			return a.openEdit(card.TaskID)
		}
	case "s", "enter":
		if hasCard && card.Has(board.ActionStatus) {
			a.ctl.OpenStatusMenu(card.TaskID)
		}
	case "c":
		if hasCard && card.Has(board.ActionComplete) {
			return a.complete(card.TaskID)
		}
	case "d", "delete":
		if hasCard && card.Has(board.ActionDelete) {
			a.ctl.RequestDeleteTask(card.TaskID)
		}
	case "m":
		if hasCard && card.Has(board.ActionToggleComments) {
			a.ctl.ToggleComments(card.TaskID)
		}
	case "i":
		if hasCard && card.Has(board.ActionSendComment) {
			return a.startComposing(card.TaskID)
		}
	}
	return nil
}

func (a *App) formKey(msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+u" && a.form.dialog == board.DialogSignIn {
		a.form = nil
		a.ctl.SwitchToSignUp()
		return a.syncForm()
	}
	res, cmd := a.form.Update(msg)
	switch res {
	case formCancel:
		// A dismissed admin prompt keeps its target for the next attempt.
		a.ctl.Dismiss(a.form.dialog, board.DismissControl)
		a.form = nil
		return a.syncForm()
	case formSubmit:
		return a.submitForm()
	}
	return cmd
}

func (a *App) submitForm() tea.Cmd {
	a.storeForm()
	id := a.form.dialog
	switch id {
	case board.DialogSignIn:
		return a.run("signin", a.ctl.SubmitSignIn)
	case board.DialogSignUp:
		return a.run("signup", a.ctl.SubmitSignUp)
	case board.DialogNewTask:
		return a.run("create", func(ctx context.Context) error {
			_, err := a.ctl.SubmitNewTask(ctx)
			return err
		})
	case board.DialogEditTask:
		return a.run("edit", a.ctl.SubmitEdit)
	case board.DialogAdminAuth:
		return a.run("remove-user", a.ctl.SubmitAdminAuth)
	case board.DialogUnlock:
		return a.run("unlock", a.ctl.SubmitUnlock)
	}
	return nil
}

// promptUnlock replaces whatever form is up with the app password prompt
// once the server reports its lock.
func (a *App) promptUnlock() tea.Cmd {
	if !a.ctl.Session.Locked() || a.ctl.Dialogs.IsOpen(board.DialogUnlock) {
		return nil
	}
	for _, id := range []board.DialogID{board.DialogSignIn, board.DialogSignUp} {
		if a.ctl.Dialogs.IsOpen(id) {
			a.ctl.Dismiss(id, board.DismissControl)
		}
	}
	a.form = nil
	a.ctl.OpenUnlock()
	return a.syncForm()
}

// storeForm writes the form values back to the dialog manager.
func (a *App) storeForm() {
	if a.form == nil {
		return
	}
	for name, v := range a.form.Values() {
		a.ctl.Dialogs.SetField(a.form.dialog, name, v)
	}
}

// syncForm keeps the form in step with the topmost dialog.
func (a *App) syncForm() tea.Cmd {
	active, open := a.ctl.Dialogs.Active()
	d := a.ctl.Dialogs.Get(active)
	if !open || !d.HasForm() {
		a.form = nil
		return nil
	}
	if a.form != nil && a.form.dialog == active {
		return nil
	}
	var assignees []board.UserOption
	if active == board.DialogNewTask {
		assignees = a.ctl.Admin.AssignableUsers(a.ctl.Viewer())
	}
	a.form = newForm(d, assignees)
	return textinput.Blink
}

func (a *App) openNewTask() tea.Cmd {
	a.ctl.OpenNewTask()
	return tea.Batch(a.syncForm(), a.fetchUsers())
}

func (a *App) openEdit(id int64) tea.Cmd {
	if err := a.ctl.OpenEdit(id); err != nil {
		a.flash = board.Message(err, board.MsgUpdateFailed)
		return nil
	}
	return a.syncForm()
}

func (a *App) openUsers() tea.Cmd {
	a.userCursor = 0
	a.ctl.OpenUsers()
	return a.fetchUsers()
}

func (a *App) complete(id int64) tea.Cmd {
	return a.run("complete", func(ctx context.Context) error {
		return a.ctl.Complete(ctx, id)
	})
}

func (a *App) signOut() tea.Cmd {
	a.stopComposing()
	return a.run("signout", func(ctx context.Context) error {
		a.ctl.SignOut(ctx)
		return nil
	})
}

func (a *App) usersKey(msg tea.KeyMsg) tea.Cmd {
	entries := a.ctl.Admin.Entries(a.ctl.Viewer())
	switch msg.String() {
	case "esc", "q":
		a.ctl.Dismiss(board.DialogUsers, board.DismissControl)
	case "up", "k":
		if a.userCursor > 0 {
			a.userCursor--
		}
	case "down", "j":
		if a.userCursor < len(entries)-1 {
			a.userCursor++
		}
	case "d", "x", "delete":
		if a.userCursor < len(entries) {
			a.ctl.RemoveUser(entries[a.userCursor].ID)
			return a.syncForm()
		}
	case "r":
		return a.fetchUsers()
	}
	return nil
}

func (a *App) confirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y", "enter":
		return a.run("delete", a.ctl.ConfirmDeleteTask)
	case "n", "N", "esc":
		a.ctl.CancelDeleteTask()
	}
	return nil
}

func (a *App) menuKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		a.ctl.Menu.Move(-1)
	case "down", "j":
		a.ctl.Menu.Move(1)
	case "enter":
		i := a.ctl.Menu.Cursor()
		return a.run("status", func(ctx context.Context) error {
			return a.ctl.SelectStatus(ctx, i)
		})
	case "esc", "q":
		a.ctl.Menu.Close()
	}
	return nil
}

func (a *App) composerKey(msg tea.KeyMsg) tea.Cmd {
	id := a.composing
	switch msg.String() {
	case "esc":
		a.stopComposing()
		return nil
	case "enter":
		a.ctl.SetCommentDraft(id, a.composer.Value())
		a.stopComposing()
		return a.run("comment", func(ctx context.Context) error {
			return a.ctl.SendComment(ctx, id)
		})
	}
	var cmd tea.Cmd
	a.composer, cmd = a.composer.Update(msg)
	a.ctl.SetCommentDraft(id, a.composer.Value())
	return cmd
}

func (a *App) startComposing(id int64) tea.Cmd {
	if !a.ctl.Threads.Composer(id).Expanded {
		a.ctl.ToggleComments(id)
	}
	a.composing = id
	a.composer.SetValue(a.ctl.Threads.Composer(id).Draft)
	a.composer.CursorEnd()
	return a.composer.Focus()
}

func (a *App) stopComposing() {
	a.composing = 0
	a.composer.Blur()
	a.composer.SetValue("")
}

func (a *App) cmdbarKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.cmdbar.Blur()
		a.suggestions.Update("")
		return nil
	case "tab":
		if sel := a.suggestions.Selected(); sel != nil {
			a.cmdbar.SetValue(sel.Text + " ")
			a.suggestions.Update("")
		}
		return nil
	case "up":
		a.suggestions.Prev()
		return nil
	case "down":
		a.suggestions.Next()
		return nil
	case "enter":
		line := a.cmdbar.Submit()
		a.suggestions.Update("")
		return a.execute(line)
	}
	cmd := a.cmdbar.Update(msg)
	a.suggestions.Update(a.cmdbar.Value())
	if strings.HasPrefix(a.cmdbar.Value(), "@") {
		a.suggestions.SetTasks(a.taskRefs())
	}
	return cmd
}

func (a *App) taskRefs() []TaskRef {
	var refs []TaskRef
	snap := a.ctl.Board.Snapshot()
	for _, status := range board.Lanes {
		for _, t := range snap.Lane(status).Tasks {
			refs = append(refs, TaskRef{ID: t.ID, Title: t.Title})
		}
	}
	return refs
}

// execute runs one command-bar line.
func (a *App) execute(line string) tea.Cmd {
	c, ok := parseCommand(line)
	if !ok {
		return nil
	}
	aff := a.ctl.Session.Affordances()

	if c.name == "goto" {
		if !a.focusTask(c.taskID) {
			a.flash = fmt.Sprintf("Task %d is not on the board", c.taskID)
		}
		return nil
	}

	switch c.name {
	case "quit", "q":
		return tea.Quit
	case "signin", "login":
		if aff.SignIn {
			a.ctl.OpenSignIn()
			return a.syncForm()
		}
		return nil
	case "signup":
		if aff.SignIn {
			a.ctl.SwitchToSignUp()
			return a.syncForm()
		}
		return nil
	case "signout", "logout":
		if aff.SignOut {
			return a.signOut()
		}
		return nil
	case "reload":
		return a.run("reload", a.ctl.Board.Load)
	case "new", "add":
		if !aff.NewTask {
			return nil
		}
		cmd := a.openNewTask()
		if c.arg != "" {
			a.ctl.Dialogs.SetField(board.DialogNewTask, board.FieldTitle, c.arg)
			a.form = nil
			cmd = tea.Batch(cmd, a.syncForm())
		}
		return cmd
	case "users":
		if aff.ManageUsers {
			return a.openUsers()
		}
		return nil
	}

	card, ok := a.target(c.taskID)
	if !ok {
		a.flash = "No task selected"
		return nil
	}
	switch c.name {
	case "edit":
		if card.Has(board.ActionEdit) {
			return a.openEdit(card.TaskID)
		}
	case "status":
		if !card.Has(board.ActionStatus) {
			break
		}
		status, ok := statusArg(c.arg)
		if !ok {
			a.ctl.OpenStatusMenu(card.TaskID)
			return nil
		}
		id := card.TaskID
		return a.run("status", func(ctx context.Context) error {
			return a.ctl.Board.SetStatus(ctx, id, status)
		})
	case "done", "complete":
		if card.Has(board.ActionComplete) {
			return a.complete(card.TaskID)
		}
	case "delete", "rm":
		if card.Has(board.ActionDelete) {
			a.ctl.RequestDeleteTask(card.TaskID)
			return nil
		}
	case "comments":
		if card.Has(board.ActionToggleComments) {
			a.ctl.ToggleComments(card.TaskID)
			return nil
		}
	case "comment":
		if !card.Has(board.ActionSendComment) {
			break
		}
		if c.arg == "" {
			return a.startComposing(card.TaskID)
		}
		id := card.TaskID
		if !a.ctl.Threads.Composer(id).Expanded {
			a.ctl.ToggleComments(id)
		}
		a.ctl.SetCommentDraft(id, c.arg)
		return a.run("comment", func(ctx context.Context) error {
			return a.ctl.SendComment(ctx, id)
		})
	default:
		a.flash = fmt.Sprintf("Unknown command %q", c.name)
		return nil
	}
	a.flash = msgNotAllowed
	return nil
}

func statusArg(arg string) (models.TaskStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "todo", "to do", "to-do":
		return models.TaskStatusToDo, true
	case "progress", "in progress", "in-progress", "doing":
		return models.TaskStatusInProgress, true
	case "done", "completed":
		return models.TaskStatusCompleted, true
	}
	return "", false
}

// target resolves the card a command applies to: the referenced task when
// id is set, otherwise the selected card.
func (a *App) target(id int64) (board.CardView, bool) {
	if id == 0 {
		return a.selected()
	}
	for _, status := range board.Lanes {
		for _, card := range a.ctl.Cards(status) {
			if card.TaskID == id {
				return card, true
			}
		}
	}
	return board.CardView{}, false
}

func (a *App) selected() (board.CardView, bool) {
	lanes := visibleLanes(a.ctl.Board.Snapshot())
	if a.lane >= len(lanes) {
		return board.CardView{}, false
	}
	status := lanes[a.lane]
	cards := a.ctl.Cards(status)
	i := a.cursor[status]
	if i < 0 || i >= len(cards) {
		return board.CardView{}, false
	}
	return cards[i], true
}

func (a *App) focusTask(id int64) bool {
	for i, status := range visibleLanes(a.ctl.Board.Snapshot()) {
		for j, card := range a.ctl.Cards(status) {
			if card.TaskID == id {
				a.lane = i
				a.cursor[status] = j
				return true
			}
		}
	}
	return false
}

func (a *App) moveLane(delta int) {
	n := len(visibleLanes(a.ctl.Board.Snapshot()))
	a.lane = (a.lane + delta + n) % n
}

func (a *App) moveCard(delta int) {
	lanes := visibleLanes(a.ctl.Board.Snapshot())
	if a.lane >= len(lanes) {
		return
	}
	status := lanes[a.lane]
	n := len(a.ctl.Cards(status))
	if n == 0 {
		return
	}
	i := a.cursor[status] + delta
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	a.cursor[status] = i
}

// clamp keeps the lane and card cursors inside the current board.
func (a *App) clamp() {
	lanes := visibleLanes(a.ctl.Board.Snapshot())
	if a.lane >= len(lanes) {
		a.lane = len(lanes) - 1
	}
	for _, status := range board.Lanes {
		n := len(a.ctl.Cards(status))
		if a.cursor[status] >= n {
			a.cursor[status] = n - 1
		}
		if a.cursor[status] < 0 {
			a.cursor[status] = 0
		}
	}
	if a.composing != 0 {
		if _, ok := a.ctl.Board.Task(a.composing); !ok {
			a.stopComposing()
		}
	}
}

// View implements tea.Model
func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(a.renderHeader() + "\n\n")

	footer := a.renderFooter()
	bodyHeight := a.height - 3 - lipgloss.Height(footer)
	if bodyHeight < 5 {
		bodyHeight = 5
	}

	var body string
	switch {
	case a.form != nil:
		errText := a.ctl.Dialogs.Error(a.form.dialog)
		body = lipgloss.Place(a.width, bodyHeight, lipgloss.Center, lipgloss.Center, a.form.View(a.styles, errText))
	case a.ctl.Dialogs.IsOpen(board.DialogUsers):
		body = lipgloss.Place(a.width, bodyHeight, lipgloss.Center, lipgloss.Center, a.renderUsers())
	default:
		body = a.renderBoard(a.width, bodyHeight)
	}
	b.WriteString(body + "\n")
	b.WriteString(footer)
	return b.String()
}

func (a *App) renderHeader() string {
	aff := a.ctl.Session.Affordances()
	header := a.styles.title.Render("PLANNER")
	if aff.DisplayName != "" {
		header += "  " + a.styles.okText.Render("● "+aff.DisplayName)
	} else if aff.Unlock {
		header += "  " + a.styles.muted.Render("○ locked")
	} else {
		header += "  " + a.styles.muted.Render("○ not signed in")
	}
	if a.inflight > 0 {
		header += "  " + a.styles.muted.Render("working...")
	}
	return header
}

func (a *App) renderFooter() string {
	var lines []string

	if id := a.ctl.PendingDelete(); id != 0 {
		lines = append(lines, a.styles.errText.Render(fmt.Sprintf("%s (#%d) y/n", board.MsgConfirmDelete, id)))
	}
	if a.menuOpen() {
		lines = append(lines, a.renderMenu())
	}

	notice := a.ctl.Notice()
	switch {
	case a.flash != "":
		lines = append(lines, a.styles.errText.Render(a.flash))
	case notice.Text != "" && notice.Level == board.NoticeError:
		lines = append(lines, a.styles.errText.Render(notice.Text))
	case notice.Text != "":
		lines = append(lines, a.styles.okText.Render(notice.Text))
	}

	if s := a.suggestions.Render(a.styles, a.width); s != "" {
		lines = append(lines, s)
	}
	lines = append(lines, a.cmdbar.View(a.styles))
	lines = append(lines, a.styles.statusBar.Width(a.width).Render(a.helpLine()))
	return strings.Join(lines, "\n")
}

func (a *App) renderMenu() string {
	var b strings.Builder
	b.WriteString(a.styles.laneHeader.Render("Move to") + "\n")
	cur := a.ctl.Menu.Cursor()
	for i, opt := range a.ctl.Menu.Options() {
		if i == cur {
			b.WriteString(a.styles.selected.Render("▶ "+opt.Label) + "\n")
		} else {
			b.WriteString("  " + opt.Label + "\n")
		}
	}
	return a.styles.dialog.Padding(0, 1).Render(strings.TrimRight(b.String(), "\n"))
}

func (a *App) renderUsers() string {
	var b strings.Builder
	b.WriteString(a.styles.title.Render("Users") + "\n\n")
	switch {
	case a.ctl.Admin.Loading():
		b.WriteString(a.styles.muted.Render("Loading users...") + "\n")
	case a.ctl.Admin.ListError() != "":
		b.WriteString(a.styles.errText.Render(a.ctl.Admin.ListError()) + "\n")
	default:
		entries := a.ctl.Admin.Entries(a.ctl.Viewer())
		if len(entries) == 0 {
			b.WriteString(a.styles.muted.Render("No users") + "\n")
		}
		pending := a.ctl.Admin.Pending()
		for i, e := range entries {
			label := e.Label
			if e.ID == pending {
				label += " (pending removal)"
			}
			if i == a.userCursor {
				b.WriteString(a.styles.selected.Render("▶ "+label) + "\n")
			} else {
				b.WriteString("  " + label + "\n")
			}
		}
	}
	b.WriteString("\n" + a.styles.help.Render("↑/↓: move  d: delete  r: refresh  esc: close"))
	return a.styles.dialog.Render(b.String())
}

func (a *App) helpLine() string {
	switch {
	case a.cmdbar.Focused():
		return "enter: run  tab: complete  esc: cancel"
	case a.composing != 0:
		return "enter: send  esc: keep draft"
	case a.menuOpen():
		return "↑/↓: choose  enter: move  esc: close"
	}
	aff := a.ctl.Session.Affordances()
	if aff.Unlock {
		return "L: unlock  q: quit"
	}
	if aff.SignIn {
		return "L: sign in  S: sign up  :: command  q: quit"
	}
	return "←/→ lane  ↑/↓ card  n new  e edit  s status  c complete  d delete  m comments  i comment  u users  r reload  O sign out  q quit"
}
