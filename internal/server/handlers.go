package server

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/fentz26/planner/internal/models"
	"github.com/fentz26/planner/internal/store"
)

const minPasswordLen = 6

var (
	createStatuses = map[string]bool{"To Do": true, "ToDo": true, "todo": true}
	priorities     = map[string]bool{
		"Bassa": true, "Media": true, "Alta": true,
		"Low": true, "Medium": true, "High": true,
	}
)

// readJSON decodes the request body into v. A missing or malformed body
// leaves v at its zero value; handlers validate the result.
func (s *Server) readJSON(c echo.Context, v any) {
	if err := (&echo.DefaultBinder{}).BindBody(c, v); err != nil {
		s.log.WithError(err).WithField("path", c.Path()).Debug("ignoring request body")
	}
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// --- Session ---

type signUpRequest struct {
	FullName        string `json:"fullName"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (s *Server) signUp(c echo.Context) error {
	var req signUpRequest
	s.readJSON(c, &req)
	name := strings.TrimSpace(req.FullName)

	switch {
	case name == "":
		return fail(c, http.StatusBadRequest, msgNameRequired)
	case req.Password == "" || req.ConfirmPassword == "":
		return fail(c, http.StatusBadRequest, msgAllFieldsRequired)
	case req.Password != req.ConfirmPassword:
		return fail(c, http.StatusBadRequest, msgPasswordMismatch)
	case len(req.Password) < minPasswordLen:
		return fail(c, http.StatusBadRequest, msgPasswordTooShort)
	}

	u, err := s.store.CreateUser(c.Request().Context(), name, req.Password)
	if errors.Is(err, store.ErrUserExists) {
		return fail(c, http.StatusConflict, msgUserExists)
	}
	if err != nil {
		return err
	}
	s.log.WithField("user_id", u.ID).Info("user registered")
	return c.JSON(http.StatusCreated, messageResponse{Message: "Registration complete"})
}

type signInRequest struct {
	FullName  string `json:"fullName"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Password  string `json:"password"`
}

type signInResponse struct {
	Message string `json:"message"`
	User    string `json:"user"`
	UserID  int64  `json:"user_id"`
}

func (s *Server) signIn(c echo.Context) error {
	var req signInRequest
	s.readJSON(c, &req)
	if req.Password == "" {
		return fail(c, http.StatusBadRequest, msgPasswordRequired)
	}

	name := strings.TrimSpace(req.FullName)
	if name == "" {
		first, last := strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)
		if first == "" || last == "" {
			return fail(c, http.StatusBadRequest, msgNameRequired)
		}
		name = first + " " + last
	}

	u, err := s.store.Authenticate(c.Request().Context(), name, req.Password)
	if errors.Is(err, store.ErrUserNotFound) {
		return fail(c, http.StatusUnauthorized, msgBadCredentials)
	}
	if err != nil {
		return err
	}

	token, exp, err := s.sessions.issue(u)
	if err != nil {
		return err
	}
	c.SetCookie(s.sessions.cookie(token, exp))
	return c.JSON(http.StatusOK, signInResponse{Message: "Signed in", User: u.FullName(), UserID: u.ID})
}

// signOut ends the session. With the app lock on, it also locks the app again.
func (s *Server) signOut(c echo.Context) error {
	if v, ok := viewerFrom(c); ok {
		s.sessions.revoke(v)
	}
	c.SetCookie(expiredCookie(models.SessionCookieName))
	if s.cfg.AppPassword != "" {
		if ck, err := c.Cookie(models.UnlockCookieName); err == nil {
			if pass, err := s.sessions.parseUnlock(ck.Value); err == nil {
				s.sessions.revoke(pass)
			}
		}
		c.SetCookie(expiredCookie(models.UnlockCookieName))
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Signed out"})
}

type unlockRequest struct {
	Password string `json:"password"`
}

func (s *Server) unlock(c echo.Context) error {
	if s.cfg.AppPassword == "" {
		return c.JSON(http.StatusOK, messageResponse{Message: "App unlocked"})
	}
	var req unlockRequest
	s.readJSON(c, &req)
	if subtle.ConstantTimeCompare([]byte(req.Password), []byte(s.cfg.AppPassword)) != 1 {
		return fail(c, http.StatusUnauthorized, msgWrongAppPassword)
	}
	token, exp, err := s.sessions.issueUnlock()
	if err != nil {
		return err
	}
	c.SetCookie(namedCookie(models.UnlockCookieName, token, exp))
	s.log.WithField("remote", c.RealIP()).Info("app unlocked")
	return c.JSON(http.StatusOK, messageResponse{Message: "App unlocked"})
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user,omitempty"`
	UserID        int64  `json:"user_id,omitempty"`
}

func (s *Server) session(c echo.Context) error {
	v, ok := viewerFrom(c)
	if !ok {
		return c.JSON(http.StatusOK, sessionResponse{})
	}
	return c.JSON(http.StatusOK, sessionResponse{Authenticated: true, User: v.Name, UserID: v.UserID})
}

// --- Users ---

type usersResponse struct {
	Users []models.DirectoryUser `json:"users"`
}

func (s *Server) listUsers(c echo.Context) error {
	if _, ok := viewerFrom(c); !ok {
		return c.JSON(http.StatusOK, usersResponse{Users: []models.DirectoryUser{}})
	}
	users, err := s.store.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, usersResponse{Users: users})
}

type deleteUserRequest struct {
	Password string `json:"password"`
}

func (s *Server) deleteUser(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusNotFound, msgUserNotFound)
	}
	var req deleteUserRequest
	s.readJSON(c, &req)
	if !s.adminPasswordMatches(req.Password) {
		return fail(c, http.StatusForbidden, msgAdminPassword)
	}

	err := s.store.DeleteUser(c.Request().Context(), id)
	if errors.Is(err, store.ErrUserNotFound) {
		return fail(c, http.StatusNotFound, msgUserNotFound)
	}
	if err != nil {
		return err
	}
	v, _ := viewerFrom(c)
	s.log.WithFields(log.Fields{"user_id": id, "by": v.UserID}).Info("user deleted")
	return c.JSON(http.StatusOK, messageResponse{Message: "User deleted"})
}

func (s *Server) adminPasswordMatches(pw string) bool {
	if s.cfg.AdminPassword == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pw), []byte(s.cfg.AdminPassword)) == 1
}

// --- Tasks ---

type tasksResponse struct {
	Tasks []models.Task `json:"tasks"`
}

type taskResponse struct {
	Message string      `json:"message,omitempty"`
	Task    models.Task `json:"task"`
}

func (s *Server) listTasks(c echo.Context) error {
	v, ok := viewerFrom(c)
	if !ok {
		return c.JSON(http.StatusOK, tasksResponse{Tasks: []models.Task{}})
	}
	tasks, err := s.store.ListVisibleTasks(c.Request().Context(), v.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasksResponse{Tasks: tasks})
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
	AssignTo    any    `json:"assignTo"`
}

func (s *Server) createTask(c echo.Context) error {
	v, _ := viewerFrom(c)
	var req createTaskRequest
	s.readJSON(c, &req)

	title := strings.TrimSpace(req.Title)
	priority := strings.TrimSpace(req.Priority)
	switch {
	case title == "":
		return fail(c, http.StatusBadRequest, msgTitleRequired)
	case !createStatuses[strings.TrimSpace(req.Status)]:
		return fail(c, http.StatusBadRequest, msgInvalidStatus)
	case !priorities[priority]:
		return fail(c, http.StatusBadRequest, msgInvalidPriority)
	}

	task, err := s.store.CreateTask(c.Request().Context(), store.NewTask{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Priority:    priority,
		DueDate:     strings.TrimSpace(req.DueDate),
		AssigneeID:  assignee(req.AssignTo, v.UserID),
		CreatorID:   v.UserID,
	})
	if err != nil {
		return err
	}
	s.log.WithFields(log.Fields{"task_id": task.ID, "user_id": v.UserID}).Info("task created")
	return c.JSON(http.StatusCreated, taskResponse{Task: task})
}

// assignee resolves the assignTo field, which clients send either as a
// number or as a numeric string. Anything unusable assigns the creator.
func assignee(raw any, self int64) int64 {
	switch val := raw.(type) {
	case float64:
		if val > 0 {
			return int64(val)
		}
	case string:
		if id, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil && id > 0 {
			return id
		}
	}
	return self
}

type updateTaskRequest struct {
	Status      *string `json:"status"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"`
}

func (s *Server) updateTask(c echo.Context) error {
	v, _ := viewerFrom(c)
	id, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusNotFound, msgTaskNotFound)
	}
	ctx := c.Request().Context()

	creator, assigned, err := s.store.TaskRoles(ctx, id, v.UserID)
	if errors.Is(err, store.ErrTaskNotFound) {
		return fail(c, http.StatusNotFound, msgTaskNotFound)
	}
	if err != nil {
		return err
	}
	if !creator && !assigned {
		return fail(c, http.StatusForbidden, msgForbidden)
	}

	var req updateTaskRequest
	s.readJSON(c, &req)
	patch := store.TaskPatch{
		Status:      req.Status,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
	if patch.TouchesDetails() && !creator {
		return fail(c, http.StatusForbidden, msgCreatorOnlyEdit)
	}
	if patch.Empty() {
		return c.JSON(http.StatusOK, messageResponse{Message: "No changes"})
	}

	if err := s.store.UpdateTask(ctx, id, patch); err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			return fail(c, http.StatusNotFound, msgTaskNotFound)
		}
		return err
	}
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return fmt.Errorf("reload task %d: %w", id, err)
	}
	if task.Comments, err = s.store.ListComments(ctx, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, taskResponse{Message: "Task updated", Task: task})
}

func (s *Server) deleteTask(c echo.Context) error {
	v, _ := viewerFrom(c)
	id, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusNotFound, msgTaskNotFound)
	}

	err := s.store.DeleteTask(c.Request().Context(), id, v.UserID)
	switch {
	case errors.Is(err, store.ErrNotCreator):
		return fail(c, http.StatusForbidden, msgCreatorOnlyDelete)
	case errors.Is(err, store.ErrTaskNotFound):
		return fail(c, http.StatusNotFound, msgTaskNotFound)
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Task deleted"})
}

// --- Comments ---

type commentsResponse struct {
	Comments []models.Comment `json:"comments"`
}

type addCommentRequest struct {
	Content string `json:"content"`
}

func (s *Server) listComments(c echo.Context) error {
	v, _ := viewerFrom(c)
	id, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusNotFound, msgTaskHidden)
	}
	ctx := c.Request().Context()

	visible, err := s.store.CanSeeTask(ctx, id, v.UserID)
	if err != nil {
		return err
	}
	if !visible {
		return fail(c, http.StatusNotFound, msgTaskHidden)
	}
	comments, err := s.store.ListComments(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, commentsResponse{Comments: comments})
}

func (s *Server) addComment(c echo.Context) error {
	v, _ := viewerFrom(c)
	id, ok := pathID(c)
	if !ok {
		return fail(c, http.StatusNotFound, msgTaskHidden)
	}
	var req addCommentRequest
	s.readJSON(c, &req)
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return fail(c, http.StatusBadRequest, msgContentRequired)
	}

	ctx := c.Request().Context()
	visible, err := s.store.CanSeeTask(ctx, id, v.UserID)
	if err != nil {
		return err
	}
	if !visible {
		return fail(c, http.StatusNotFound, msgTaskHidden)
	}
	if err := s.store.AddComment(ctx, id, v.UserID, content); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: "Comment added"})
}
