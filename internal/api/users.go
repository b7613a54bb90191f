package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/husseinbouik/taskman/internal/models"
)

// UserInput carries the writable user fields for update.
type UserInput struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// ListUsers returns all users.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &users); err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}

// GetUser retrieves a single user by ID.
func (c *Client) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%d", id), nil, &user); err != nil {
		return nil, fmt.Errorf("fetching user %d: %w", id, err)
	}
	return &user, nil
}

// UpdateUser replaces the writable fields of an existing user.
func (c *Client) UpdateUser(ctx context.Context, id int64, input UserInput) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/users/%d", id), input, &user); err != nil {
		return nil, fmt.Errorf("updating user %d: %w", id, err)
	}
	return &user, nil
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil); err != nil {
		return fmt.Errorf("deleting user %d: %w", id, err)
	}
	return nil
}
