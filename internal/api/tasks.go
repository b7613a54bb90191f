package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/husseinbouik/taskman/internal/models"
)

// TaskInput carries the writable task fields for create and update.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	ProjectID   *int64     `json:"projectId,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}

// ListTasks returns every task visible to the current session.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks); err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// GetTask retrieves a single task by ID.
func (c *Client) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tasks/%d", id), nil, &task); err != nil {
		return nil, fmt.Errorf("fetching task %d: %w", id, err)
	}
	return &task, nil
}

// CreateTask creates a task and returns the stored copy.
func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", input, &task); err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	return &task, nil
}

// UpdateTask replaces the writable fields of an existing task.
func (c *Client) UpdateTask(ctx context.Context, id int64, input TaskInput) (*models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/tasks/%d", id), input, &task); err != nil {
		return nil, fmt.Errorf("updating task %d: %w", id, err)
	}
	return &task, nil
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil); err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	return nil
}
