package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/fentz26/planner/internal/api"
	"github.com/fentz26/planner/internal/models"
	"github.com/fentz26/planner/internal/store"
)

const testAdminPassword = "admin-secret"

func newTestServer(t *testing.T, cfg Config) *httptest.Server {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	logger, _ := test.NewNullLogger()
	s, err := New(st, cfg, logger)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T, ts *httptest.Server) *api.Client {
	t.Helper()
	logger, _ := test.NewNullLogger()
	c, err := api.NewClient(ts.URL, api.WithLogger(logger))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

// register signs fullName up and returns a client signed in as them.
func register(t *testing.T, ts *httptest.Server, fullName string) (*api.Client, models.Session) {
	t.Helper()
	ctx := context.Background()
	c := newClient(t, ts)
	if err := c.SignUp(ctx, fullName, "secret1", "secret1"); err != nil {
		t.Fatalf("SignUp(%q) failed: %v", fullName, err)
	}
	sess, err := c.SignIn(ctx, fullName, "secret1")
	if err != nil {
		t.Fatalf("SignIn(%q) failed: %v", fullName, err)
	}
	return c, sess
}

func wantAPIError(t *testing.T, err error, status int, msg string) {
	t.Helper()
	var apiErr *api.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected APIError %d, got %v", status, err)
	}
	if apiErr.Status != status {
		t.Errorf("Expected status %d, got %d (%s)", status, apiErr.Status, apiErr.Message)
	}
	if msg != "" && apiErr.Message != msg {
		t.Errorf("Expected message %q, got %q", msg, apiErr.Message)
	}
}

func strp(s string) *string { return &s }

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, Config{})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !health.OK || health.DB != "ok" || health.Time == "" {
		t.Errorf("Unexpected health %+v", health)
	}
	if cc := resp.Header.Get("Cache-Control"); cc == "" {
		t.Error("Expected no-cache headers on every response")
	}

	ok, err := newClient(t, ts).CheckHealth(context.Background())
	if err != nil || !ok {
		t.Errorf("CheckHealth = %v, %v", ok, err)
	}
}

func TestUnknownRoute_JSONError(t *testing.T) {
	ts := newTestServer(t, Config{})
	resp, err := http.Get(ts.URL + "/api/nope")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Expected JSON error body: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound || body.Error == "" {
		t.Errorf("Unexpected response %d %+v", resp.StatusCode, body)
	}
}

func TestSignUp_Validation(t *testing.T) {
	ts := newTestServer(t, Config{})
	c := newClient(t, ts)
	ctx := context.Background()

	cases := []struct {
		name, pw, confirm, msg string
	}{
		{"  ", "secret1", "secret1", msgNameRequired},
		{"Ada Lovelace", "secret1", "", msgAllFieldsRequired},
		{"Ada Lovelace", "secret1", "secret2", msgPasswordMismatch},
		{"Ada Lovelace", "short", "short", msgPasswordTooShort},
	}
	for _, tc := range cases {
		err := c.SignUp(ctx, tc.name, tc.pw, tc.confirm)
		wantAPIError(t, err, http.StatusBadRequest, tc.msg)
	}

	if err := c.SignUp(ctx, "Ada Lovelace", "secret1", "secret1"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	wantAPIError(t, c.SignUp(ctx, "Ada Lovelace", "secret1", "secret1"), http.StatusConflict, msgUserExists)
}

func TestSignInSessionSignOut(t *testing.T) {
	ts := newTestServer(t, Config{})
	ctx := context.Background()
	c := newClient(t, ts)

	sess, err := c.Session(ctx)
	if err != nil || sess.Authenticated {
		t.Fatalf("Expected anonymous session, got %+v, %v", sess, err)
	}

	if err := c.SignUp(ctx, "Mary Ann Evans", "secret1", "secret1"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	_, err = c.SignIn(ctx, "Mary Ann Evans", "nope")
	wantAPIError(t, err, http.StatusUnauthorized, msgBadCredentials)
	_, err = c.SignIn(ctx, "Mary Ann Evans", "")
	wantAPIError(t, err, http.StatusBadRequest, msgPasswordRequired)

	sess, err = c.SignIn(ctx, "Mary Ann Evans", "secret1")
	if err != nil {
		t.Fatalf("SignIn failed: %v", err)
	}
	if sess.DisplayName != "Mary Ann Evans" || sess.UserID == 0 {
		t.Errorf("Unexpected session %+v", sess)
	}
	token := c.SessionToken()
	if token == "" {
		t.Fatal("Expected session cookie")
	}

	probe, err := c.Session(ctx)
	if err != nil || !probe.Authenticated || probe.UserID != sess.UserID {
		t.Errorf("Probe = %+v, %v", probe, err)
	}

	if err := c.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	probe, _ = c.Session(ctx)
	if probe.Authenticated {
		t.Error("Expected anonymous after sign-out")
	}

	// A signed-out token stays dead even if replayed.
	replay := newClient(t, ts)
	replay.SetSessionToken(token)
	probe, _ = replay.Session(ctx)
	if probe.Authenticated {
		t.Error("Expected revoked token to be rejected")
	}
}

func TestSessionToken_ForgedRejected(t *testing.T) {
	ts := newTestServer(t, Config{Secret: "one"})
	other := newTestServer(t, Config{Secret: "two"})
	ctx := context.Background()

	c, _ := register(t, other, "Ada Lovelace")
	forged := newClient(t, ts)
	forged.SetSessionToken(c.SessionToken())
	sess, err := forged.Session(ctx)
	if err != nil || sess.Authenticated {
		t.Errorf("Expected token from another secret rejected, got %+v, %v", sess, err)
	}
}

func TestAnonymousAccess(t *testing.T) {
	ts := newTestServer(t, Config{})
	c := newClient(t, ts)
	ctx := context.Background()

	tasks, err := c.ListTasks(ctx)
	if err != nil || len(tasks) != 0 {
		t.Errorf("ListTasks = %v, %v", tasks, err)
	}
	users, err := c.ListUsers(ctx)
	if err != nil || len(users) != 0 {
		t.Errorf("ListUsers = %v, %v", users, err)
	}
	_, err = c.CreateTask(ctx, api.CreateTaskRequest{Title: "x", Status: "To Do", Priority: "Low"})
	wantAPIError(t, err, http.StatusUnauthorized, msgAuthRequired)
	_, err = c.ListComments(ctx, 1)
	wantAPIError(t, err, http.StatusUnauthorized, msgAuthRequired)
}

func TestCreateTask_Validation(t *testing.T) {
	ts := newTestServer(t, Config{})
	c, _ := register(t, ts, "Ada Lovelace")
	ctx := context.Background()

	_, err := c.CreateTask(ctx, api.CreateTaskRequest{Title: " ", Status: "To Do", Priority: "Low"})
	wantAPIError(t, err, http.StatusBadRequest, msgTitleRequired)
	_, err = c.CreateTask(ctx, api.CreateTaskRequest{Title: "x", Status: "Completed", Priority: "Low"})
	wantAPIError(t, err, http.StatusBadRequest, msgInvalidStatus)
	_, err = c.CreateTask(ctx, api.CreateTaskRequest{Title: "x", Status: "To Do", Priority: "Urgent"})
	wantAPIError(t, err, http.StatusBadRequest, msgInvalidPriority)

	task, err := c.CreateTask(ctx, api.CreateTaskRequest{Title: "legacy", Status: "todo", Priority: "Alta"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Status != string(models.TaskStatusToDo) || task.Priority != "Alta" {
		t.Errorf("Unexpected task %+v", task)
	}
}

func TestTaskLifecycle_Permissions(t *testing.T) {
	ts := newTestServer(t, Config{})
	ctx := context.Background()
	ada, adaSess := register(t, ts, "Ada Lovelace")
	grace, graceSess := register(t, ts, "Grace Hopper")
	alan, _ := register(t, ts, "Alan Turing")

	task, err := ada.CreateTask(ctx, api.CreateTaskRequest{
		Title:    " Review notes ",
		Status:   "To Do",
		Priority: "High",
		DueDate:  "2024-06-01",
		AssignTo: strconv.FormatInt(graceSess.UserID, 10),
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Title != "Review notes" || task.UserID != graceSess.UserID || task.CreatedBy != adaSess.UserID {
		t.Errorf("Unexpected task %+v", task)
	}
	if task.AssignedToName != "Grace Hopper" {
		t.Errorf("Expected assignee name, got %q", task.AssignedToName)
	}

	tasks, err := grace.ListTasks(ctx)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("Assignee ListTasks = %v, %v", tasks, err)
	}
	if others, _ := alan.ListTasks(ctx); len(others) != 0 {
		t.Errorf("Unrelated user sees %d tasks", len(others))
	}

	if err := grace.UpdateTask(ctx, task.ID, api.UpdateTaskRequest{Status: strp("In Progress")}); err != nil {
		t.Fatalf("Assignee status update failed: %v", err)
	}
	err = grace.UpdateTask(ctx, task.ID, api.UpdateTaskRequest{Title: strp("Hijack")})
	wantAPIError(t, err, http.StatusForbidden, msgCreatorOnlyEdit)
	err = alan.UpdateTask(ctx, task.ID, api.UpdateTaskRequest{Status: strp("Completed")})
	wantAPIError(t, err, http.StatusForbidden, msgForbidden)
	err = ada.UpdateTask(ctx, 9999, api.UpdateTaskRequest{Status: strp("Completed")})
	wantAPIError(t, err, http.StatusNotFound, msgTaskNotFound)

	if err := ada.UpdateTask(ctx, task.ID, api.UpdateTaskRequest{
		Title:       strp("Review all notes"),
		Description: strp(""),
		Priority:    strp("Low"),
		DueDate:     strp(""),
	}); err != nil {
		t.Fatalf("Creator update failed: %v", err)
	}
	tasks, _ = ada.ListTasks(ctx)
	got := tasks[0]
	if got.Title != "Review all notes" || got.Status != "In Progress" || got.Priority != "Low" || got.DueDate != "" {
		t.Errorf("Unexpected task after updates %+v", got)
	}

	err = grace.DeleteTask(ctx, task.ID)
	wantAPIError(t, err, http.StatusForbidden, msgCreatorOnlyDelete)
	if err := ada.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	err = ada.DeleteTask(ctx, task.ID)
	wantAPIError(t, err, http.StatusNotFound, msgTaskNotFound)
}

func TestCreateTask_DefaultsAssigneeToCreator(t *testing.T) {
	ts := newTestServer(t, Config{})
	c, sess := register(t, ts, "Ada Lovelace")
	task, err := c.CreateTask(context.Background(), api.CreateTaskRequest{
		Title: "solo", Status: "To Do", Priority: "Medium", AssignTo: "not-a-number",
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.UserID != sess.UserID {
		t.Errorf("Expected assignee to default to creator, got %d", task.UserID)
	}
}

func TestComments(t *testing.T) {
	ts := newTestServer(t, Config{})
	ctx := context.Background()
	ada, _ := register(t, ts, "Ada Lovelace")
	alan, _ := register(t, ts, "Alan Turing")
	task, err := ada.CreateTask(ctx, api.CreateTaskRequest{Title: "t", Status: "To Do", Priority: "Low"})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	wantAPIError(t, ada.AddComment(ctx, task.ID, "   "), http.StatusBadRequest, msgContentRequired)
	wantAPIError(t, alan.AddComment(ctx, task.ID, "hi"), http.StatusNotFound, msgTaskHidden)
	_, err = alan.ListComments(ctx, task.ID)
	wantAPIError(t, err, http.StatusNotFound, msgTaskHidden)

	for _, text := range []string{"first", " second "} {
		if err := ada.AddComment(ctx, task.ID, text); err != nil {
			t.Fatalf("AddComment failed: %v", err)
		}
	}
	thread, err := ada.ListComments(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(thread) != 2 || thread[0].Content != "first" || thread[1].Content != "second" {
		t.Errorf("Unexpected thread %+v", thread)
	}
	if thread[0].UserName != "Ada Lovelace" || thread[0].CreatedAt == "" {
		t.Errorf("Unexpected comment %+v", thread[0])
	}

	tasks, _ := ada.ListTasks(ctx)
	if len(tasks) != 1 || len(tasks[0].Comments) != 2 {
		t.Errorf("Expected comments attached to listed task, got %+v", tasks)
	}
}

func TestDeleteUser(t *testing.T) {
	ts := newTestServer(t, Config{AdminPassword: testAdminPassword})
	ctx := context.Background()
	ada, _ := register(t, ts, "Ada Lovelace")
	_, grace := register(t, ts, "Grace Hopper")

	users, err := ada.ListUsers(ctx)
	if err != nil || len(users) != 2 {
		t.Fatalf("ListUsers = %v, %v", users, err)
	}

	wantAPIError(t, ada.DeleteUser(ctx, grace.UserID, "guess"), http.StatusForbidden, msgAdminPassword)
	if err := ada.DeleteUser(ctx, grace.UserID, testAdminPassword); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	wantAPIError(t, ada.DeleteUser(ctx, grace.UserID, testAdminPassword), http.StatusNotFound, msgUserNotFound)

	anon := newClient(t, ts)
	wantAPIError(t, anon.DeleteUser(ctx, 1, testAdminPassword), http.StatusUnauthorized, msgAuthRequired)
}

func TestDeleteUser_DisabledWithoutAdminPassword(t *testing.T) {
	ts := newTestServer(t, Config{})
	ctx := context.Background()
	ada, sess := register(t, ts, "Ada Lovelace")
	wantAPIError(t, ada.DeleteUser(ctx, sess.UserID, ""), http.StatusForbidden, msgAdminPassword)
}

func TestNew_GeneratesSecret(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer st.Close()

	logger, hook := test.NewNullLogger()
	s, err := New(st, Config{Listen: DefaultListen}, logger)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if len(s.sessions.secret) != 32 {
		t.Errorf("Expected random 32-byte secret, got %d bytes", len(s.sessions.secret))
	}
	if len(hook.AllEntries()) < 2 {
		t.Errorf("Expected warnings for missing secret and admin password, got %d entries", len(hook.AllEntries()))
	}
}

func TestAppLock(t *testing.T) {
	ts := newTestServer(t, Config{AppPassword: "open sesame"})
	ctx := context.Background()
	c := newClient(t, ts)

	if _, err := c.Session(ctx); !api.IsLocked(err) {
		t.Fatalf("Expected locked session probe, got %v", err)
	}
	if err := c.SignUp(ctx, "Ada Lovelace", "secret1", "secret1"); !api.IsLocked(err) {
		t.Fatalf("Expected locked sign-up, got %v", err)
	}
	if ok, err := c.CheckHealth(ctx); err != nil || !ok {
		t.Errorf("Expected health check outside the lock, got %v, %v", ok, err)
	}

	wantAPIError(t, c.Unlock(ctx, "nope"), http.StatusUnauthorized, msgWrongAppPassword)
	if err := c.Unlock(ctx, "open sesame"); err != nil {
		t.Fatalf("Unlock failed: %v", err)
	}
	if err := c.SignUp(ctx, "Ada Lovelace", "secret1", "secret1"); err != nil {
		t.Fatalf("SignUp after unlock failed: %v", err)
	}
	if _, err := c.SignIn(ctx, "Ada Lovelace", "secret1"); err != nil {
		t.Fatalf("SignIn after unlock failed: %v", err)
	}
	if _, err := c.ListTasks(ctx); err != nil {
		t.Fatalf("ListTasks after unlock failed: %v", err)
	}

	pass := c.UnlockToken()
	if err := c.SignOut(ctx); err != nil {
		t.Fatalf("SignOut failed: %v", err)
	}
	if _, err := c.Session(ctx); !api.IsLocked(err) {
		t.Errorf("Expected sign-out to lock the app again, got %v", err)
	}
	c.SetUnlockToken(pass)
	if _, err := c.Session(ctx); !api.IsLocked(err) {
		t.Errorf("Expected a revoked pass to be refused, got %v", err)
	}
}

func TestAppLock_DisabledWithoutPassword(t *testing.T) {
	ts := newTestServer(t, Config{})
	c := newClient(t, ts)
	ctx := context.Background()

	if err := c.Unlock(ctx, "anything"); err != nil {
		t.Errorf("Expected unlock to be a no-op, got %v", err)
	}
	if _, err := c.Session(ctx); err != nil {
		t.Errorf("Expected open server, got %v", err)
	}
}
