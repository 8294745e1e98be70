package server

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Sentinel errors for session handling.
var (
	ErrNoSession      = errors.New("no session")
	ErrSessionRevoked = errors.New("session revoked")
)

// Messages returned in {"error": "..."} bodies.
const (
	msgAuthRequired      = "Authentication required"
	msgNameRequired      = "Full name is required"
	msgAllFieldsRequired = "All fields are required"
	msgPasswordMismatch  = "Passwords do not match"
	msgPasswordTooShort  = "Password must be at least 6 characters"
	msgUserExists        = "User already exists"
	msgPasswordRequired  = "Password is required"
	msgBadCredentials    = "Invalid credentials"
	msgAdminPassword     = "Wrong admin password"
	msgUserNotFound      = "User not found"
	msgTitleRequired     = "Task title is required"
	msgInvalidStatus     = "Invalid status (use 'To Do')"
	msgInvalidPriority   = "Invalid priority"
	msgTaskNotFound      = "Task not found"
	msgForbidden         = "Insufficient permissions"
	msgCreatorOnlyEdit   = "Only the creator can edit task details"
	msgCreatorOnlyDelete = "Only the creator can delete the task"
	msgTaskHidden        = "Task not found or access denied"
	msgContentRequired   = "Content is required"
	msgInternal          = "Internal server error"
	msgAppLocked         = "App locked. Enter the app password."
	msgWrongAppPassword  = "Wrong app password"
)

type errorResponse struct {
	Error  string `json:"error"`
	Locked bool   `json:"locked,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorResponse{Error: msg})
}

// errorHandler renders every error, including echo's own, as {"error": "..."}.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	msg := msgInternal
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(status)
		}
	} else {
		s.log.WithError(err).WithField("path", c.Path()).Error("request failed")
	}
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = fail(c, status, msg)
	}
	if err != nil {
		s.log.WithError(err).Warn("write error response")
	}
}
