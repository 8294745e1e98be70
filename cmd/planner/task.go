package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/fentz26/planner/internal/board"
	"github.com/fentz26/planner/internal/models"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the tasks you created or are assigned",
	RunE:  runTaskList,
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new task",
	RunE:  runTaskAdd,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task you created",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var taskStatusCmd = &cobra.Command{
	Use:   "status [task-id] [todo|progress|done]",
	Short: "Move a task to another lane",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskStatus,
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskComplete,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task you created",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

var taskCommentsCmd = &cobra.Command{
	Use:   "comments [task-id]",
	Short: "Show a task's comments",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskComments,
}

var taskCommentCmd = &cobra.Command{
	Use:   "comment [task-id] [text]",
	Short: "Comment on a task",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTaskComment,
}

var (
	taskTitle    string
	taskDesc     string
	taskPriority string
	taskDue      string
	taskAssignee string
	taskStatus   string
	assumeYes    bool
)

func init() {
	taskCmd.AddCommand(taskListCmd, taskAddCmd, taskEditCmd, taskStatusCmd, taskCompleteCmd,
		taskDeleteCmd, taskCommentsCmd, taskCommentCmd)

	taskAddCmd.Flags().StringVar(&taskTitle, "title", "", "Task title (required)")
	taskAddCmd.Flags().StringVar(&taskDesc, "desc", "", "Task description")
	taskAddCmd.Flags().StringVar(&taskPriority, "priority", "", "Low, Medium or High (required)")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due date, YYYY-MM-DD")
	taskAddCmd.Flags().StringVar(&taskAssignee, "assign", "", "Assignee user id (default: yourself)")
	taskAddCmd.MarkFlagRequired("title")

	taskEditCmd.Flags().StringVar(&taskTitle, "title", "", "New title")
	taskEditCmd.Flags().StringVar(&taskDesc, "desc", "", "New description")
	taskEditCmd.Flags().StringVar(&taskPriority, "priority", "", "New priority")
	taskEditCmd.Flags().StringVar(&taskDue, "due", "", "New due date, YYYY-MM-DD")
	taskEditCmd.Flags().StringVar(&taskStatus, "status", "", "New status")

	taskDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(s, "@"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

// parseLane accepts the lane names and a few shorthands.
func parseLane(s string) (models.TaskStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "to do", "to-do":
		return models.TaskStatusToDo, nil
	case "progress", "in progress", "in-progress", "doing":
		return models.TaskStatusInProgress, nil
	case "done", "completed":
		return models.TaskStatusCompleted, nil
	}
	return "", fmt.Errorf("unknown status %q, use todo, progress or done", s)
}

func runTaskList(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()
	if err := s.start(ctx); err != nil {
		return err
	}

	snap := s.ctl.Board.Snapshot()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, status := range board.Lanes {
		cards := s.ctl.Cards(status)
		if status == models.TaskStatusCompleted && !snap.CompletedVisible {
			continue
		}
		fmt.Fprintf(w, "%s (%d)\n", status, len(cards))
		if len(cards) == 0 {
			fmt.Fprintf(w, "  %s\n", board.EmptyLanePlaceholder)
			continue
		}
		for _, c := range cards {
			label := c.Priority.Label
			if c.Compact {
				label = c.Marker
			}
			assignee := ""
			if c.AssignedToOther && c.Assignee != "" {
				assignee = "→ " + c.Assignee
			}
			fmt.Fprintf(w, "  #%d\t%s\t%s\t%s\t%s\t💬 %d\n",
				c.TaskID, label, truncate(c.Title, 40), c.DueDate, assignee, len(c.Comments))
		}
	}
	return w.Flush()
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()
	if err := s.start(ctx); err != nil {
		return err
	}

	task, err := s.ctl.Board.Create(ctx, board.CreateForm{
		Title:       taskTitle,
		Description: taskDesc,
		Status:      string(models.TaskStatusToDo),
		Priority:    models.NormalizePriority(taskPriority),
		DueDate:     taskDue,
		AssignTo:    taskAssignee,
	})
	if err != nil {
		return userError(err, board.MsgCreateFailed)
	}
	fmt.Printf("Created task #%d: %s\n", task.ID, task.Title)
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()
	if err := s.start(ctx); err != nil {
		return err
	}

	task, ok := s.ctl.Board.Task(id)
	if !ok {
		return userError(board.ErrTaskNotFound, board.MsgUpdateFailed)
	}
	form := board.EditFormFromTask(task)
	flags := cmd.Flags()
	if flags.Changed("title") {
		form.Title = taskTitle
	}
	if flags.Changed("desc") {
		form.Description = taskDesc
	}
	if flags.Changed("priority") {
		form.Priority = models.NormalizePriority(taskPriority)
	}
	if flags.Changed("due") {
		form.DueDate = taskDue
	}
	if flags.Changed("status") {
		status, err := parseLane(taskStatus)
		if err != nil {
			return err
		}
		form.Status = string(status)
	}

	if err := s.ctl.Board.Update(ctx, form); err != nil {
		return userError(err, board.MsgUpdateFailed)
	}
	fmt.Printf("Updated task #%d\n", id)
	return nil
}

func runTaskStatus(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}
	status, err := parseLane(args[1])
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()
	if err := s.start(ctx); err != nil {
		return err
	}

	if err := s.ctl.Board.SetStatus(ctx, id, status); err != nil {
		return userError(err, board.MsgStatusFailed)
	}
	fmt.Printf("Task #%d moved to %s\n", id, status)
	return nil
}

func runTaskComplete(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()
	if err := s.start(ctx); err != nil {
		return err
	}

	if err := s.ctl.Complete(ctx, id); err != nil {
		return userError(err, board.MsgStatusFailed)
	}
	fmt.Printf("Task #%d completed\n", id)
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()
	if err := s.start(ctx); err != nil {
		return err
	}

	s.ctl.RequestDeleteTask(id)
	if !assumeYes && !confirm(fmt.Sprintf("%s (#%d)", board.MsgConfirmDelete, id)) {
		s.ctl.CancelDeleteTask()
		fmt.Println("Cancelled")
		return nil
	}
	if err := s.ctl.ConfirmDeleteTask(ctx); err != nil {
		return userError(err, board.MsgDeleteFailed)
	}
	fmt.Printf("Deleted task #%d\n", id)
	return nil
}

func runTaskComments(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()
	if !s.ctl.Start(ctx).Authenticated {
		return s.signedOutError()
	}

	comments, err := s.ctl.Threads.List(ctx, id)
	if err != nil {
		return userError(err, "Could not load comments")
	}
	if len(comments) == 0 {
		fmt.Println("No comments")
		return nil
	}
	for _, c := range comments {
		fmt.Printf("%s  %s\n  %s\n", c.UserName, board.FormatDateTime(c.CreatedAt), c.Content)
	}
	return nil
}

func runTaskComment(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext()
	defer cancel()
	if !s.ctl.Start(ctx).Authenticated {
		return s.signedOutError()
	}

	text := strings.TrimSpace(strings.Join(args[1:], " "))
	if text == "" {
		return fmt.Errorf("comment text is required")
	}
	if !s.ctl.Commentable(id) {
		return userError(board.ErrTaskReadOnly, board.MsgCommentFailed)
	}
	comments, err := s.ctl.Threads.Append(ctx, id, text)
	if err != nil {
		return userError(err, board.MsgCommentFailed)
	}
	fmt.Printf("Comment added, %d on task #%d\n", len(comments), id)
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
