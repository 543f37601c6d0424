package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vidconv/vidconv/pkg/models"
)

// Me returns the authenticated user plus their videos (GET users/me).
func (c *Client) Me(ctx context.Context) (*models.MeResponse, error) {
	var out models.MeResponse
	if err := c.doJSON(ctx, http.MethodGet, "users/me", true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns all users (GET users). Admin only on the server side.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.doJSON(ctx, http.MethodGet, "users", true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetUser returns one user by database ID (GET users/:id).
func (c *Client) GetUser(ctx context.Context, id int64) (*models.User, error) {
	var out models.User
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("users/%d", id), true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateUserInput are the fields for creating an account.
type CreateUserInput struct {
	Username string          `json:"username"`
	Password string          `json:"password"`
	Role     models.UserRole `json:"role"`
	Active   bool            `json:"active"`
}

// CreateUser creates an account (POST users). Role must be admin or guest;
// new accounts default to active.
func (c *Client) CreateUser(ctx context.Context, in CreateUserInput) (string, error) {
	if in.Username == "" || in.Password == "" {
		return "", validationError("username and password are required")
	}
	if !in.Role.Valid() {
		return "", validationError("role must be admin or guest")
	}

	var out struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "users", true, in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// UpdateUser replaces a user's mutable fields (PUT users/:id). The password
// field carries the existing hash when unchanged.
func (c *Client) UpdateUser(ctx context.Context, user *models.User) (string, error) {
	if !user.Role.Valid() {
		return "", validationError("role must be admin or guest")
	}

	body := map[string]interface{}{
		"username": user.Username,
		"password": user.Password,
		"role":     user.Role,
		"active":   user.Active,
	}

	var out struct {
		Message string `json:"message"`
	}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("users/%d", user.ID), true, body, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// DeleteUser removes an account (DELETE users/:id). With force set the
// server also drops the user's videos.
func (c *Client) DeleteUser(ctx context.Context, id int64, force bool) error {
	path := fmt.Sprintf("users/%d?forceDelete=%t", id, force)
	return c.doJSON(ctx, http.MethodDelete, path, true, nil, nil)
}

// UserVideos returns the videos requested by one user (GET users/:id/videos).
func (c *Client) UserVideos(ctx context.Context, id int64) ([]models.Video, error) {
	var out []models.Video
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("users/%d/videos", id), true, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
