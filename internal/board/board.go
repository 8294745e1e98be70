package board

import (
	"context"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/fentz26/planner/internal/api"
	"github.com/fentz26/planner/internal/models"
)

// EmptyLanePlaceholder is shown in a lane with no cards.
const EmptyLanePlaceholder = "No tasks"

// Validation messages.
const (
	MsgTitleRequired    = "Task title is required"
	MsgPriorityRequired = "Select a priority"
	MsgStatusToDo       = "New tasks must start in To Do"
)

// Busy keys for controls that are not tied to a card.
const BusyCreate = "create"

// BusyKey names the in-flight flag for a card control.
func BusyKey(a Action, taskID int64) string {
	return fmt.Sprintf("%s:%d", a, taskID)
}

// Lanes are listed left to right.
var Lanes = []models.TaskStatus{
	models.TaskStatusToDo,
	models.TaskStatusInProgress,
	models.TaskStatusCompleted,
}

// Lane is one status column.
type Lane struct {
	Status      models.TaskStatus
	Tasks       []models.Task
	Placeholder bool
}

// Snapshot is a copy of the board for rendering.
type Snapshot struct {
	Lanes            map[models.TaskStatus]Lane
	CompletedVisible bool
	CompletedCount   int
	Loaded           bool
	LoadErr          error
}

// Lane returns the lane for status.
func (s Snapshot) Lane(status models.TaskStatus) Lane {
	return s.Lanes[status]
}

// CreateForm is the payload of the new-task dialog.
type CreateForm struct {
	Title       string
	Description string
	Status      string
	Priority    string
	DueDate     string
	AssignTo    string
}

// Board keeps the three lanes in sync with the server.
type Board struct {
	api    API
	logger *log.Logger

	mu         sync.Mutex
	lanes      map[models.TaskStatus]*Lane
	generation uint64
	busy       map[string]bool
	loaded     bool
	loadErr    error
	onLoad     func([]models.Task)
}

// NewBoard creates a board with every lane showing its placeholder.
func NewBoard(a API, logger *log.Logger) *Board {
	if logger == nil {
		logger = log.StandardLogger()
	}
	b := &Board{api: a, logger: logger, busy: make(map[string]bool)}
	b.reset()
	return b
}

// OnLoad registers fn to receive every task list that is applied to the lanes.
func (b *Board) OnLoad(fn func([]models.Task)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onLoad = fn
}

// Load fetches every task and repartitions the lanes. A response that
// arrives after a newer Load or Clear was issued is discarded.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	b.generation++
	gen := b.generation
	b.mu.Unlock()

	tasks, err := b.api.ListTasks(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if gen != b.generation {
		b.logger.WithField("generation", gen).Debug("discarding stale task list")
		return nil
	}
	if err != nil {
		b.loadErr = err
		b.logger.WithError(err).Warn("load tasks failed")
		return fmt.Errorf("load tasks: %w", err)
	}
	b.loadErr = nil
	b.loaded = true
	b.reset()
	for _, t := range tasks {
		b.insert(t)
	}
	if b.onLoad != nil {
		b.onLoad(tasks)
	}
	return nil
}

// Clear empties the lanes and invalidates in-flight loads.
func (b *Board) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.generation++
	b.loaded = false
	b.loadErr = nil
	b.reset()
}

// Snapshot returns a copy of the lanes.
func (b *Board) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := Snapshot{
		Lanes:   make(map[models.TaskStatus]Lane, len(b.lanes)),
		Loaded:  b.loaded,
		LoadErr: b.loadErr,
	}
	for status, l := range b.lanes {
		s.Lanes[status] = Lane{
			Status:      l.Status,
			Tasks:       append([]models.Task(nil), l.Tasks...),
			Placeholder: l.Placeholder,
		}
	}
	s.CompletedCount = len(b.lanes[models.TaskStatusCompleted].Tasks)
	s.CompletedVisible = s.CompletedCount > 0
	return s
}

// Task looks a task up by id.
func (b *Board) Task(id int64) (models.Task, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.find(id)
}

// find must be called with b.mu held.
func (b *Board) find(id int64) (models.Task, bool) {
	for _, l := range b.lanes {
		for _, t := range l.Tasks {
			if t.ID == id {
				return t, true
			}
		}
	}
	return models.Task{}, false
}

// Busy reports whether the control named by key has a request in flight.
func (b *Board) Busy(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.busy[key]
}

// Create validates form, posts it and inserts the returned task into its lane.
func (b *Board) Create(ctx context.Context, form CreateForm) (models.Task, error) {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return models.Task{}, invalid(FieldTitle, MsgTitleRequired)
	}
	if strings.TrimSpace(form.Priority) == "" {
		return models.Task{}, invalid(FieldPriority, MsgPriorityRequired)
	}
	status := strings.TrimSpace(form.Status)
	if status == "" {
		status = string(models.TaskStatusToDo)
	}
	if status != string(models.TaskStatusToDo) {
		return models.Task{}, invalid(FieldStatus, MsgStatusToDo)
	}

	if !b.acquire(BusyCreate) {
		return models.Task{}, ErrBusy
	}
	defer b.release(BusyCreate)

	task, err := b.api.CreateTask(ctx, api.CreateTaskRequest{
		Title:       title,
		Description: form.Description,
		Status:      status,
		Priority:    form.Priority,
		DueDate:     form.DueDate,
		AssignTo:    form.AssignTo,
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("create task: %w", err)
	}

	// A reload that finished while the request was out already holds the task.
	b.mu.Lock()
	if _, ok := b.find(task.ID); !ok {
		b.insert(task)
	}
	b.mu.Unlock()
	return task, nil
}

// Update saves the edit form and reloads the board.
func (b *Board) Update(ctx context.Context, form EditForm) error {
	title := strings.TrimSpace(form.Title)
	if title == "" {
		return invalid(FieldTitle, MsgTitleRequired)
	}

	key := BusyKey(ActionEdit, form.TaskID)
	if !b.acquire(key) {
		return ErrBusy
	}
	err := b.api.UpdateTask(ctx, form.TaskID, api.UpdateTaskRequest{
		Title:       &title,
		Description: &form.Description,
		Status:      &form.Status,
		Priority:    &form.Priority,
		DueDate:     &form.DueDate,
	})
	b.release(key)
	if err != nil {
		return fmt.Errorf("update task %d: %w", form.TaskID, err)
	}
	b.reload(ctx)
	return nil
}

// SetStatus moves a task to status and reloads the board.
func (b *Board) SetStatus(ctx context.Context, id int64, status models.TaskStatus) error {
	return b.setStatus(ctx, BusyKey(ActionStatus, id), id, status)
}

// Complete marks a task completed and reloads the board.
func (b *Board) Complete(ctx context.Context, id int64) error {
	return b.setStatus(ctx, BusyKey(ActionComplete, id), id, models.TaskStatusCompleted)
}

func (b *Board) setStatus(ctx context.Context, key string, id int64, status models.TaskStatus) error {
	if !b.acquire(key) {
		return ErrBusy
	}
	s := string(status)
	err := b.api.UpdateTask(ctx, id, api.UpdateTaskRequest{Status: &s})
	b.release(key)
	if err != nil {
		return fmt.Errorf("set status of task %d: %w", id, err)
	}
	b.reload(ctx)
	return nil
}

// Delete removes a task on the server and then from its lane, restoring the
// placeholder or hiding the completed section if the lane became empty.
func (b *Board) Delete(ctx context.Context, id int64) error {
	key := BusyKey(ActionDelete, id)
	if !b.acquire(key) {
		return ErrBusy
	}
	defer b.release(key)

	if err := b.api.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, l := range b.lanes {
		for i, t := range l.Tasks {
			if t.ID == id {
				l.Tasks = append(l.Tasks[:i], l.Tasks[i+1:]...)
				l.Placeholder = len(l.Tasks) == 0
				return nil
			}
		}
	}
	return nil
}

// reload refreshes the board after a successful mutation. The mutation has
// already succeeded, so a failed refresh is recorded on the board rather
// than reported to the caller.
func (b *Board) reload(ctx context.Context) {
	if err := b.Load(ctx); err != nil {
		b.logger.WithError(err).Debug("reload after mutation failed")
	}
}

func (b *Board) acquire(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.busy[key] {
		return false
	}
	b.busy[key] = true
	return true
}

func (b *Board) release(key string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.busy, key)
}

// reset must be called with b.mu held.
func (b *Board) reset() {
	b.lanes = make(map[models.TaskStatus]*Lane, len(Lanes))
	for _, s := range Lanes {
		b.lanes[s] = &Lane{Status: s, Placeholder: true}
	}
}

// insert must be called with b.mu held.
func (b *Board) insert(t models.Task) {
	l := b.lanes[t.Lane()]
	l.Tasks = append(l.Tasks, t)
	l.Placeholder = false
}
