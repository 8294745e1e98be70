package board

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/fentz26/planner/internal/models"
)

// MsgUsersFailed replaces the directory list when it cannot be fetched.
const MsgUsersFailed = "Error loading users"

// SelfLabel is the assignee option that assigns a task to the viewer.
const SelfLabel = "Me"

// UserEntry is one row of the user directory.
type UserEntry struct {
	ID    int64
	Label string
	Self  bool
}

// UserOption is one entry of the assignee selector. An empty Value means the viewer.
type UserOption struct {
	Value string
	Label string
}

// AdminFlow drives the user directory and the password-confirmed removal of users.
type AdminFlow struct {
	api    API
	logger *log.Logger

	mu      sync.Mutex
	users   []models.DirectoryUser
	listErr string
	pending int64
	loading bool
}

// NewAdminFlow creates an empty directory.
func NewAdminFlow(a API, logger *log.Logger) *AdminFlow {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &AdminFlow{api: a, logger: logger}
}

// ListUsers fetches the directory. On failure the list is replaced by an error message.
func (f *AdminFlow) ListUsers(ctx context.Context) ([]models.DirectoryUser, error) {
	f.mu.Lock()
	f.loading = true
	f.mu.Unlock()

	users, err := f.api.ListUsers(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	if err != nil {
		f.logger.WithError(err).Error("load users failed")
		f.users = nil
		f.listErr = MsgUsersFailed
		return nil, fmt.Errorf("list users: %w", err)
	}
	f.users = append([]models.DirectoryUser(nil), users...)
	f.listErr = ""
	return users, nil
}

// Users returns the cached directory.
func (f *AdminFlow) Users() []models.DirectoryUser {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.DirectoryUser(nil), f.users...)
}

// ListError returns the message shown instead of the list, if any.
func (f *AdminFlow) ListError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listErr
}

// Loading reports whether a directory fetch is in flight.
func (f *AdminFlow) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Entries returns the directory rows with the viewer tagged.
func (f *AdminFlow) Entries(viewer models.Session) []UserEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]UserEntry, 0, len(f.users))
	for _, u := range f.users {
		e := UserEntry{ID: u.ID, Label: u.Name}
		if viewer.Authenticated && u.ID == viewer.UserID {
			e.Self = true
			e.Label = u.Name + " (Me)"
		}
		out = append(out, e)
	}
	return out
}

// AssignableUsers lists the assignee choices: the viewer first as "Me",
// then every other directory user.
func (f *AdminFlow) AssignableUsers(viewer models.Session) []UserOption {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []UserOption{{Value: "", Label: SelfLabel}}
	for _, u := range f.users {
		if viewer.Authenticated && u.ID == viewer.UserID {
			continue
		}
		out = append(out, UserOption{Value: fmt.Sprint(u.ID), Label: u.Name})
	}
	return out
}

// RequestDelete records userID as the removal target. No request is sent.
func (f *AdminFlow) RequestDelete(userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = userID
}

// Pending returns the user awaiting removal, or 0.
func (f *AdminFlow) Pending() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pending
}

// CancelDelete forgets the removal target.
func (f *AdminFlow) CancelDelete() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = 0
}

// ConfirmDelete removes userID using the admin password. On success the
// pending target is cleared and the directory refreshed. On failure the
// target is kept so the password can be retried.
func (f *AdminFlow) ConfirmDelete(ctx context.Context, userID int64, adminPassword string) error {
	if userID == 0 {
		return ErrNoPendingDeletion
	}
	if err := f.api.DeleteUser(ctx, userID, adminPassword); err != nil {
		f.logger.WithField("user_id", userID).WithError(err).Warn("delete user failed")
		return fmt.Errorf("delete user %d: %w", userID, err)
	}

	f.mu.Lock()
	if f.pending == userID {
		f.pending = 0
	}
	f.mu.Unlock()

	if _, err := f.ListUsers(ctx); err != nil {
		f.logger.WithError(err).Debug("refresh directory after delete failed")
	}
	return nil
}

// Reset forgets the directory and any pending removal.
func (f *AdminFlow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users = nil
	f.listErr = ""
	f.pending = 0
}
