package board

import (
	"errors"

	"github.com/fentz26/planner/internal/api"
)

// Sentinel errors for board operations.
var (
	ErrBusy              = errors.New("request already in flight")
	ErrTaskNotFound      = errors.New("task not found")
	ErrNoPendingDeletion = errors.New("no user selected for removal")
	ErrNoPendingConfirm  = errors.New("nothing to confirm")
	ErrTaskReadOnly      = errors.New("task is completed")
)

// ValidationError is detected on the client and never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// IsValidation reports whether err was raised before any request was sent.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Generic user-facing messages.
const (
	MsgNetwork  = "Network error"
	MsgBusy     = "Please wait, request in progress"
	MsgReadOnly = "Completed tasks are read-only"
)

// Message turns err into the text shown in a dialog's error slot.
// Validation and server messages are shown verbatim, transport failures
// get a generic message, anything else gets fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var v *ValidationError
	if errors.As(err, &v) {
		return v.Message
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	if api.IsNetworkError(err) {
		return MsgNetwork
	}
	if errors.Is(err, ErrBusy) {
		return MsgBusy
	}
	if errors.Is(err, ErrTaskReadOnly) {
		return MsgReadOnly
	}
	return fallback
}
