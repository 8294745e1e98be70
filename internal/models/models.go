// Package models defines the core domain types for Planner.
package models

import "strings"

// TaskStatus represents the lane a task lives in.
type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "To Do"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

// ParseStatus maps a wire status onto one of the three lanes.
// Anything that is neither completed nor in progress lands in To Do.
func ParseStatus(s string) TaskStatus {
	switch strings.TrimSpace(s) {
	case "Completed", "completed":
		return TaskStatusCompleted
	case "In Progress":
		return TaskStatusInProgress
	default:
		return TaskStatusToDo
	}
}

// Priority is the canonical priority set used by the edit form.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// legacyPriorities maps the localized labels older tasks were stored with.
var legacyPriorities = map[string]Priority{
	"Bassa": PriorityLow,
	"Media": PriorityMedium,
	"Alta":  PriorityHigh,
}

// NormalizePriority converts a legacy localized label into the canonical set.
// Values that are not legacy labels are returned unchanged.
func NormalizePriority(p string) string {
	if canon, ok := legacyPriorities[p]; ok {
		return string(canon)
	}
	return p
}

// Task is a card on the shared board.
type Task struct {
	ID             int64     `json:"id" db:"id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	Status         string    `json:"status" db:"status"`
	Priority       string    `json:"priority" db:"priority"`
	DueDate        string    `json:"due_date" db:"due_date"`
	CreatedBy      int64     `json:"created_by" db:"created_by"`
	UserID         int64     `json:"user_id" db:"user_id"`
	AssignedToName string    `json:"assigned_to_name" db:"assigned_to_name"`
	CreatedAt      string    `json:"created_at" db:"created_at"`
	Comments       []Comment `json:"comments"`
}

// Lane returns the lane the task belongs to.
func (t Task) Lane() TaskStatus {
	return ParseStatus(t.Status)
}

// Comment is a single entry in a task's thread.
type Comment struct {
	ID        int64  `json:"id" db:"id"`
	TaskID    int64  `json:"-" db:"task_id"`
	UserName  string `json:"user_name" db:"user_name"`
	Content   string `json:"content" db:"content"`
	CreatedAt string `json:"created_at" db:"created_at"`
}

// Session describes the authenticated viewer.
type Session struct {
	Authenticated bool   `json:"authenticated"`
	UserID        int64  `json:"user_id"`
	DisplayName   string `json:"user"`
}

// DirectoryUser is an entry in the user directory.
type DirectoryUser struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// SessionCookieName is the cookie carrying the signed session between client and server.
const SessionCookieName = "planner_session"

// UnlockCookieName carries the app lock pass when the server requires one.
const UnlockCookieName = "planner_unlock"

// User is a registered account as stored by the server.
type User struct {
	ID           int64  `db:"id"`
	FirstName    string `db:"first_name"`
	LastName     string `db:"last_name"`
	PasswordHash string `db:"password_hash"`
}

// FullName is the "First Last" display and sign-in name.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}
