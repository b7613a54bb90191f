package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/husseinbouik/taskman/internal/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token"`
	User    models.User `json:"user"`
}

// Register creates a new account. The call is unauthenticated.
func (c *Client) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	var resp struct {
		Message string      `json:"message"`
		User    models.User `json:"user"`
	}
	req := registerRequest{Username: username, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &resp.User, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (*models.Session, error) {
	var resp loginResponse
	req := loginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &models.Session{Token: resp.Token, User: resp.User}, nil
}

// Me returns the identity behind the current token.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}
	return &user, nil
}
