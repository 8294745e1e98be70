package board

import (
	"context"
	"fmt"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/fentz26/planner/internal/models"
)

// MsgCommentFailed is shown in the composer when an append fails.
const MsgCommentFailed = "Could not add comment"

// Composer is the per-card comment input.
type Composer struct {
	Expanded bool
	Draft    string
	Sending  bool
	Error    string
}

// CommentThreads holds the comment thread and composer of every card.
type CommentThreads struct {
	api    API
	logger *log.Logger

	mu        sync.Mutex
	threads   map[int64][]models.Comment
	composers map[int64]*Composer
}

// NewCommentThreads creates an empty thread store.
func NewCommentThreads(a API, logger *log.Logger) *CommentThreads {
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &CommentThreads{
		api:       a,
		logger:    logger,
		threads:   make(map[int64][]models.Comment),
		composers: make(map[int64]*Composer),
	}
}

// Seed replaces every thread with the comments delivered by a board load.
// Composer drafts survive for tasks that are still present.
func (c *CommentThreads) Seed(tasks []models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[int64]bool, len(tasks))
	c.threads = make(map[int64][]models.Comment, len(tasks))
	for _, t := range tasks {
		seen[t.ID] = true
		c.threads[t.ID] = append([]models.Comment(nil), t.Comments...)
	}
	for id := range c.composers {
		if !seen[id] {
			delete(c.composers, id)
		}
	}
}

// Put records one task's thread, used when a single task is inserted locally.
func (c *CommentThreads) Put(taskID int64, comments []models.Comment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threads[taskID] = append([]models.Comment(nil), comments...)
}

// Drop forgets a task's thread and composer.
func (c *CommentThreads) Drop(taskID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.threads, taskID)
	delete(c.composers, taskID)
}

// Reset forgets everything.
func (c *CommentThreads) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.threads = make(map[int64][]models.Comment)
	c.composers = make(map[int64]*Composer)
}

// Thread returns the cached thread for taskID.
func (c *CommentThreads) Thread(taskID int64) ([]models.Comment, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.threads[taskID]
	return append([]models.Comment(nil), t...), ok
}

// Composer returns a copy of the composer state for taskID.
func (c *CommentThreads) Composer(taskID int64) Composer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cp, ok := c.composers[taskID]; ok {
		return *cp
	}
	return Composer{}
}

// Toggle expands or collapses the composer.
func (c *CommentThreads) Toggle(taskID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := c.composer(taskID)
	cp.Expanded = !cp.Expanded
	return cp.Expanded
}

// SetDraft replaces the composer text.
func (c *CommentThreads) SetDraft(taskID int64, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.composer(taskID).Draft = text
}

// List fetches the thread from the server and caches it.
func (c *CommentThreads) List(ctx context.Context, taskID int64) ([]models.Comment, error) {
	comments, err := c.api.ListComments(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments for task %d: %w", taskID, err)
	}
	c.Put(taskID, comments)
	return comments, nil
}

// Append posts content to the task's thread and returns the refreshed thread.
// Blank content is ignored without touching the network.
func (c *CommentThreads) Append(ctx context.Context, taskID int64, content string) ([]models.Comment, error) {
	content = strings.TrimSpace(content)

	c.mu.Lock()
	current := append([]models.Comment(nil), c.threads[taskID]...)
	if content == "" {
		c.mu.Unlock()
		return current, nil
	}
	cp := c.composer(taskID)
	if cp.Sending {
		c.mu.Unlock()
		return current, ErrBusy
	}
	cp.Sending = true
	cp.Error = ""
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.composer(taskID).Sending = false
		c.mu.Unlock()
	}()

	if err := c.api.AddComment(ctx, taskID, content); err != nil {
		c.logger.WithField("task_id", taskID).WithError(err).Warn("add comment failed")
		c.mu.Lock()
		cp := c.composer(taskID)
		cp.Expanded = true
		cp.Error = MsgCommentFailed
		c.mu.Unlock()
		return current, err
	}

	c.mu.Lock()
	cp = c.composer(taskID)
	cp.Draft = ""
	cp.Expanded = false
	c.mu.Unlock()

	comments, err := c.List(ctx, taskID)
	if err != nil {
		c.logger.WithField("task_id", taskID).WithError(err).Warn("refresh comments failed")
		return current, err
	}
	return comments, nil
}

// composer must be called with c.mu held.
func (c *CommentThreads) composer(taskID int64) *Composer {
	cp, ok := c.composers[taskID]
	if !ok {
		cp = &Composer{}
		c.composers[taskID] = cp
	}
	return cp
}
