// Package board is the controller core of the task board: session state,
// dialogs, card rendering, comment threads, lane synchronization and user
// administration. It has no terminal or HTTP code of its own.
package board

import (
	"context"

	"github.com/fentz26/planner/internal/api"
	"github.com/fentz26/planner/internal/models"
)

// API is the remote task board. *api.Client satisfies it.
type API interface {
	Session(ctx context.Context) (models.Session, error)
	SignIn(ctx context.Context, fullName, password string) (models.Session, error)
	SignUp(ctx context.Context, fullName, password, confirm string) error
	SignOut(ctx context.Context) error
	Unlock(ctx context.Context, password string) error

	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, req api.CreateTaskRequest) (models.Task, error)
	UpdateTask(ctx context.Context, id int64, req api.UpdateTaskRequest) error
	DeleteTask(ctx context.Context, id int64) error

	ListComments(ctx context.Context, taskID int64) ([]models.Comment, error)
	AddComment(ctx context.Context, taskID int64, content string) error

	ListUsers(ctx context.Context) ([]models.DirectoryUser, error)
	DeleteUser(ctx context.Context, id int64, adminPassword string) error
}

var _ API = (*api.Client)(nil)
