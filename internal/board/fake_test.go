package board

import (
	"context"
	"sync"

	"github.com/fentz26/planner/internal/api"
	"github.com/fentz26/planner/internal/models"
)

// fakeAPI is an in-memory API with per-call error injection and counters.
type fakeAPI struct {
	mu sync.Mutex

	session  models.Session
	tasks    []models.Task
	comments map[int64][]models.Comment
	users    []models.DirectoryUser
	nextID   int64

	// Injected failures, keyed by method name.
	errs map[string]error
	// Calls counts invocations by method name.
	calls map[string]int

	// listGate, when set, blocks ListTasks until a value is received.
	listGate chan []models.Task
	// addGate, when set, blocks AddComment until closed.
	addGate chan struct{}

	lastUpdate    api.UpdateTaskRequest
	lastCreate    api.CreateTaskRequest
	lastDeleteID  int64
	lastAdminPass string

	// appPassword, when set, locks Session and SignIn until Unlock.
	appPassword string
	unlocked    bool
}

var errFakeLocked = &api.APIError{Status: 403, Message: "App locked. Enter the app password.", Locked: true}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		comments: make(map[int64][]models.Comment),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
		nextID:   100,
	}
}

func (f *fakeAPI) hit(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
	return f.errs[name]
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) fail(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[name] = err
}

func (f *fakeAPI) Session(ctx context.Context) (models.Session, error) {
	if err := f.hit("Session"); err != nil {
		return models.Session{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appPassword != "" && !f.unlocked {
		return models.Session{}, errFakeLocked
	}
	return f.session, nil
}

func (f *fakeAPI) SignIn(ctx context.Context, fullName, password string) (models.Session, error) {
	if err := f.hit("SignIn"); err != nil {
		return models.Session{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appPassword != "" && !f.unlocked {
		return models.Session{}, errFakeLocked
	}
	f.session = models.Session{Authenticated: true, UserID: 1, DisplayName: fullName}
	return f.session, nil
}

func (f *fakeAPI) SignUp(ctx context.Context, fullName, password, confirm string) error {
	return f.hit("SignUp")
}

func (f *fakeAPI) SignOut(ctx context.Context) error {
	return f.hit("SignOut")
}

func (f *fakeAPI) Unlock(ctx context.Context, password string) error {
	if err := f.hit("Unlock"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if password != f.appPassword {
		return &api.APIError{Status: 401, Message: "Wrong app password"}
	}
	f.unlocked = true
	return nil
}

func (f *fakeAPI) ListTasks(ctx context.Context) ([]models.Task, error) {
	f.mu.Lock()
	f.calls["ListTasks"]++
	err := f.errs["ListTasks"]
	gate := f.listGate
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if gate != nil {
		return <-gate, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Task(nil), f.tasks...), nil
}

func (f *fakeAPI) CreateTask(ctx context.Context, req api.CreateTaskRequest) (models.Task, error) {
	if err := f.hit("CreateTask"); err != nil {
		return models.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCreate = req
	f.nextID++
	t := models.Task{
		ID:        f.nextID,
		Title:     req.Title,
		Status:    req.Status,
		Priority:  req.Priority,
		DueDate:   req.DueDate,
		CreatedBy: 1,
		UserID:    1,
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeAPI) UpdateTask(ctx context.Context, id int64, req api.UpdateTaskRequest) error {
	if err := f.hit("UpdateTask"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdate = req
	for i := range f.tasks {
		if f.tasks[i].ID == id && req.Status != nil {
			f.tasks[i].Status = *req.Status
		}
	}
	return nil
}

func (f *fakeAPI) DeleteTask(ctx context.Context, id int64) error {
	if err := f.hit("DeleteTask"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastDeleteID = id
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeAPI) ListComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	if err := f.hit("ListComments"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Comment(nil), f.comments[taskID]...), nil
}

func (f *fakeAPI) AddComment(ctx context.Context, taskID int64, content string) error {
	f.mu.Lock()
	gate := f.addGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err := f.hit("AddComment"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[taskID] = append(f.comments[taskID], models.Comment{
		ID:       int64(len(f.comments[taskID]) + 1),
		UserName: "Ada Lovelace",
		Content:  content,
	})
	return nil
}

func (f *fakeAPI) ListUsers(ctx context.Context) ([]models.DirectoryUser, error) {
	if err := f.hit("ListUsers"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.DirectoryUser(nil), f.users...), nil
}

func (f *fakeAPI) DeleteUser(ctx context.Context, id int64, adminPassword string) error {
	f.mu.Lock()
	f.lastAdminPass = adminPassword
	f.mu.Unlock()
	if err := f.hit("DeleteUser"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.users {
		if f.users[i].ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			break
		}
	}
	return nil
}

func task(id int64, status string, createdBy int64) models.Task {
	return models.Task{
		ID:        id,
		Title:     "Task",
		Status:    status,
		Priority:  "Medium",
		CreatedBy: createdBy,
		UserID:    createdBy,
	}
}
