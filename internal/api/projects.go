package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/husseinbouik/taskman/internal/models"
)

// ProjectInput carries the writable project fields for create and update.
type ProjectInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ListProjects returns every project visible to the current session.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, http.MethodGet, "/projects", nil, &projects); err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	return projects, nil
}

// GetProject retrieves a single project by ID.
func (c *Client) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/projects/%d", id), nil, &project); err != nil {
		return nil, fmt.Errorf("fetching project %d: %w", id, err)
	}
	return &project, nil
}

// CreateProject creates a project and returns the stored copy.
func (c *Client) CreateProject(ctx context.Context, input ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodPost, "/projects", input, &project); err != nil {
		return nil, fmt.Errorf("creating project: %w", err)
	}
	return &project, nil
}

// UpdateProject replaces the writable fields of an existing project.
func (c *Client) UpdateProject(ctx context.Context, id int64, input ProjectInput) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/projects/%d", id), input, &project); err != nil {
		return nil, fmt.Errorf("updating project %d: %w", id, err)
	}
	return &project, nil
}

// DeleteProject removes a project.
func (c *Client) DeleteProject(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/projects/%d", id), nil, nil); err != nil {
		return fmt.Errorf("deleting project %d: %w", id, err)
	}
	return nil
}
