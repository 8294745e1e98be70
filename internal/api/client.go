// Package api is the HTTP client for the Planner task board API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/fentz26/planner/internal/models"
)

// DefaultClientTimeout is the default timeout for API requests.
const DefaultClientTimeout = 10 * time.Second

// Client wraps HTTP calls to the Planner API.
type Client struct {
	baseURL    string
	base       *url.URL
	httpClient *http.Client
	logger     *log.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithTimeout overrides DefaultClientTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger routes client diagnostics to logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewClient creates a new API client with timeout and a cookie jar for the session.
func NewClient(addr string, opts ...Option) (*Client, error) {
	baseURL := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse api address: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: baseURL,
		base:    base,
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
			Jar:     jar,
		},
		logger: log.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the normalized API address.
func (c *Client) BaseURL() string { return c.baseURL }

// SessionToken returns the session cookie value currently held, if any.
func (c *Client) SessionToken() string { return c.cookie(models.SessionCookieName) }

// SetSessionToken installs a previously saved session cookie.
func (c *Client) SetSessionToken(token string) { c.setCookie(models.SessionCookieName, token) }

// UnlockToken returns the app lock pass currently held, if any.
func (c *Client) UnlockToken() string { return c.cookie(models.UnlockCookieName) }

// SetUnlockToken installs a previously saved app lock pass.
func (c *Client) SetUnlockToken(token string) { c.setCookie(models.UnlockCookieName, token) }

func (c *Client) cookie(name string) string {
	for _, ck := range c.httpClient.Jar.Cookies(c.base) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

func (c *Client) setCookie(name, token string) {
	if token == "" {
		return
	}
	c.httpClient.Jar.SetCookies(c.base, []*http.Cookie{{
		Name:  name,
		Value: token,
		Path:  "/",
	}})
}

// ClearSession drops the session cookie.
func (c *Client) ClearSession() {
	c.httpClient.Jar.SetCookies(c.base, []*http.Cookie{{
		Name:   models.SessionCookieName,
		Path:   "/",
		MaxAge: -1,
	}})
}

// --- Session ---

type unlockRequest struct {
	Password string `json:"password"`
}

// Unlock passes the server's app lock. The pass is kept in the cookie jar.
func (c *Client) Unlock(ctx context.Context, password string) error {
	return c.do(ctx, http.MethodPost, "/api/unlock", unlockRequest{Password: password}, nil)
}

type sessionResponse struct {
	Authenticated bool   `json:"authenticated"`
	UserID        int64  `json:"user_id"`
	User          string `json:"user"`
}

// Session probes the server for the current session.
func (c *Client) Session(ctx context.Context) (models.Session, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodGet, "/api/session", nil, &resp); err != nil {
		return models.Session{}, err
	}
	if !resp.Authenticated {
		return models.Session{}, nil
	}
	return models.Session{Authenticated: true, UserID: resp.UserID, DisplayName: resp.User}, nil
}

type signInRequest struct {
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

// SignIn authenticates with a full name and password.
func (c *Client) SignIn(ctx context.Context, fullName, password string) (models.Session, error) {
	var resp sessionResponse
	if err := c.do(ctx, http.MethodPost, "/api/signin", signInRequest{FullName: fullName, Password: password}, &resp); err != nil {
		return models.Session{}, err
	}
	return models.Session{Authenticated: true, UserID: resp.UserID, DisplayName: resp.User}, nil
}

type signUpRequest struct {
	FullName        string `json:"fullName"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// SignUp registers a new user.
func (c *Client) SignUp(ctx context.Context, fullName, password, confirm string) error {
	return c.do(ctx, http.MethodPost, "/api/signup", signUpRequest{
		FullName:        fullName,
		Password:        password,
		ConfirmPassword: confirm,
	}, nil)
}

// SignOut ends the server session and drops the local cookie.
func (c *Client) SignOut(ctx context.Context) error {
	defer c.ClearSession()
	return c.do(ctx, http.MethodPost, "/api/signout", nil, nil)
}

// --- Tasks ---

// CreateTaskRequest is the body of POST /api/tasks.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate"`
	AssignTo    string `json:"assignTo"`
}

// UpdateTaskRequest is the partial body of PUT /api/tasks/{id}. Nil fields are left untouched.
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

type tasksResponse struct {
	Tasks []models.Task `json:"tasks"`
}

type taskResponse struct {
	Task models.Task `json:"task"`
}

// ListTasks fetches every task visible to the session.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var resp tasksResponse
	// The timestamp defeats intermediary caches; the board must always be authoritative.
	path := fmt.Sprintf("/api/tasks?t=%d", time.Now().UnixMilli())
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// CreateTask creates a new task and returns the stored entity.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (models.Task, error) {
	var resp taskResponse
	if err := c.do(ctx, http.MethodPost, "/api/tasks", req, &resp); err != nil {
		return models.Task{}, err
	}
	return resp.Task, nil
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, id int64, req UpdateTaskRequest) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/api/tasks/%d", id), req, nil)
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/tasks/%d", id), nil, nil)
}

// --- Comments ---

type commentsResponse struct {
	Comments []models.Comment `json:"comments"`
}

type addCommentRequest struct {
	Content string `json:"content"`
}

// ListComments fetches a task's thread in server order.
func (c *Client) ListComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	var resp commentsResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/tasks/%d/comments", taskID), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

// AddComment appends a comment to a task.
func (c *Client) AddComment(ctx context.Context, taskID int64, content string) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/tasks/%d/comments", taskID), addCommentRequest{Content: content}, nil)
}

// --- Users ---

type usersResponse struct {
	Users []models.DirectoryUser `json:"users"`
}

type deleteUserRequest struct {
	Password string `json:"password"`
}

// ListUsers fetches the user directory.
func (c *Client) ListUsers(ctx context.Context) ([]models.DirectoryUser, error) {
	var resp usersResponse
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// DeleteUser removes a directory user; the server checks the admin password.
func (c *Client) DeleteUser(ctx context.Context, id int64, adminPassword string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), deleteUserRequest{Password: adminPassword}, nil)
}

// CheckHealth checks if the server is reachable and healthy.
func (c *Client) CheckHealth(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/healthz", nil)
	if err != nil {
		return false, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, &NetworkError{Op: "GET /healthz", Err: err}
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

type errorBody struct {
	Error  string `json:"error"`
	Locked bool   `json:"locked"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, dest any) error {
	op := method + " " + strings.SplitN(path, "?", 2)[0]

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.networkError(op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.networkError(op, err)
	}

	if resp.StatusCode >= 400 {
		var eb errorBody
		if err := json.Unmarshal(data, &eb); err != nil {
			return c.networkError(op, fmt.Errorf("%w: status %d: %s", ErrMalformedResponse, resp.StatusCode, truncate(string(data), 120)))
		}
		return &APIError{Status: resp.StatusCode, Message: eb.Error, Locked: eb.Locked}
	}

	if dest == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return c.networkError(op, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	return nil
}

func (c *Client) networkError(op string, err error) error {
	c.logger.WithFields(log.Fields{"op": op, "api": c.baseURL}).WithError(err).Warn("api request failed")
	return &NetworkError{Op: op, Err: err}
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
