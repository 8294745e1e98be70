package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/fentz26/planner/internal/models"
)

const taskColumns = `
	t.id,
	t.title,
	COALESCE(t.description, '') AS description,
	COALESCE(t.status, 'To Do') AS status,
	COALESCE(t.priority, '') AS priority,
	COALESCE(t.due_date, '') AS due_date,
	COALESCE(t.created_by, 0) AS created_by,
	COALESCE(t.user_id, 0) AS user_id,
	COALESCE(u.first_name || ' ' || u.last_name, '') AS assigned_to_name,
	COALESCE(CAST(t.created_at AS TEXT), '') AS created_at
FROM tasks t
LEFT JOIN users u ON t.user_id = u.id`

const commentColumns = `
	c.id,
	c.task_id,
	c.content,
	COALESCE(CAST(c.created_at AS TEXT), '') AS created_at,
	u.first_name || ' ' || u.last_name AS user_name
FROM comments c
JOIN users u ON c.user_id = u.id`

// NewTask is the input of CreateTask.
type NewTask struct {
	Title       string
	Description string
	Priority    string
	DueDate     string
	AssigneeID  int64
	CreatorID   int64
}

// TaskPatch is a partial update. Nil fields are left untouched; an empty
// status, title or priority is ignored as well.
type TaskPatch struct {
	Status      *string
	Title       *string
	Description *string
	Priority    *string
	DueDate     *string
}

// TouchesDetails reports whether the patch changes anything besides status.
func (p TaskPatch) TouchesDetails() bool {
	return p.Title != nil || p.Description != nil || p.Priority != nil || p.DueDate != nil
}

// Empty reports whether UpdateTask would change nothing.
func (p TaskPatch) Empty() bool {
	return blank(p.Status) && (p.Title == nil || strings.TrimSpace(*p.Title) == "") &&
		p.Description == nil && blank(p.Priority) && p.DueDate == nil
}

func blank(s *string) bool {
	return s == nil || *s == ""
}

// ListVisibleTasks returns the tasks userID created or is assigned to,
// newest first, each with its comments oldest first.
func (s *Store) ListVisibleTasks(ctx context.Context, userID int64) ([]models.Task, error) {
	q := s.db.Rebind(`SELECT` + taskColumns + `
		WHERE t.user_id = ? OR t.created_by = ?
		ORDER BY t.created_at DESC, t.id DESC`)

	tasks := []models.Task{}
	if err := s.db.SelectContext(ctx, &tasks, q, userID, userID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	ids := make([]int64, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	cq, args, err := sqlx.In(`SELECT`+commentColumns+`
		WHERE c.task_id IN (?)
		ORDER BY c.created_at ASC, c.id ASC`, ids)
	if err != nil {
		return nil, fmt.Errorf("build comments query: %w", err)
	}
	var comments []models.Comment
	if err := s.db.SelectContext(ctx, &comments, s.db.Rebind(cq), args...); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	byTask := make(map[int64][]models.Comment, len(tasks))
	for _, c := range comments {
		byTask[c.TaskID] = append(byTask[c.TaskID], c)
	}
	for i := range tasks {
		tasks[i].Comments = byTask[tasks[i].ID]
		if tasks[i].Comments == nil {
			tasks[i].Comments = []models.Comment{}
		}
	}
	return tasks, nil
}

// GetTask returns one task without comments.
func (s *Store) GetTask(ctx context.Context, id int64) (models.Task, error) {
	q := s.db.Rebind(`SELECT` + taskColumns + ` WHERE t.id = ?`)
	var t models.Task
	if err := s.db.GetContext(ctx, &t, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, ErrTaskNotFound
		}
		return models.Task{}, fmt.Errorf("get task: %w", err)
	}
	t.Comments = []models.Comment{}
	return t, nil
}

// CreateTask inserts a task in To Do.
func (s *Store) CreateTask(ctx context.Context, in NewTask) (models.Task, error) {
	q := s.db.Rebind(`INSERT INTO tasks (title, description, status, priority, due_date, user_id, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	var id int64
	err := s.db.QueryRowxContext(ctx, q,
		in.Title, in.Description, string(models.TaskStatusToDo), in.Priority, in.DueDate, in.AssigneeID, in.CreatorID,
	).Scan(&id)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return s.GetTask(ctx, id)
}

// TaskRoles reports whether userID created or is assigned to task id.
func (s *Store) TaskRoles(ctx context.Context, id, userID int64) (creator, assignee bool, err error) {
	var row struct {
		CreatedBy int64 `db:"created_by"`
		UserID    int64 `db:"user_id"`
	}
	q := s.db.Rebind(`SELECT COALESCE(created_by, 0) AS created_by, COALESCE(user_id, 0) AS user_id FROM tasks WHERE id = ?`)
	if err := s.db.GetContext(ctx, &row, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, false, ErrTaskNotFound
		}
		return false, false, fmt.Errorf("get task roles: %w", err)
	}
	return row.CreatedBy == userID, row.UserID == userID, nil
}

// UpdateTask applies patch. It does not check permissions.
func (s *Store) UpdateTask(ctx context.Context, id int64, patch TaskPatch) error {
	if patch.Empty() {
		return nil
	}
	var sets []string
	var args []any
	if !blank(patch.Status) {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) != "" {
		sets = append(sets, "title = ?")
		args = append(args, strings.TrimSpace(*patch.Title))
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, strings.TrimSpace(*patch.Description))
	}
	if !blank(patch.Priority) {
		sets = append(sets, "priority = ?")
		args = append(args, *patch.Priority)
	}
	if patch.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, *patch.DueDate)
	}

	args = append(args, id)
	q := s.db.Rebind("UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = ?")
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteTask removes task id when creatorID created it.
func (s *Store) DeleteTask(ctx context.Context, id, creatorID int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM tasks WHERE id = ? AND created_by = ?`), id, creatorID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if aff, _ := res.RowsAffected(); aff > 0 {
		return nil
	}
	if _, err := s.GetTask(ctx, id); err != nil {
		return err
	}
	return ErrNotCreator
}

// CanSeeTask reports whether userID created or is assigned to task id.
func (s *Store) CanSeeTask(ctx context.Context, id, userID int64) (bool, error) {
	creator, assignee, err := s.TaskRoles(ctx, id, userID)
	if errors.Is(err, ErrTaskNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return creator || assignee, nil
}

// ListComments returns a task's thread oldest first.
func (s *Store) ListComments(ctx context.Context, taskID int64) ([]models.Comment, error) {
	q := s.db.Rebind(`SELECT` + commentColumns + `
		WHERE c.task_id = ?
		ORDER BY c.created_at ASC, c.id ASC`)
	out := []models.Comment{}
	if err := s.db.SelectContext(ctx, &out, q, taskID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

// AddComment appends content to a task's thread.
func (s *Store) AddComment(ctx context.Context, taskID, userID int64, content string) error {
	q := s.db.Rebind(`INSERT INTO comments (task_id, user_id, content) VALUES (?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, q, taskID, userID, content); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}
