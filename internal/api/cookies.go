package api

import (
	"context"
	"net/http"

	"github.com/vidconv/vidconv/pkg/models"
)

// CookieStatus reports whether a cookies.txt file is present on the server
// and its metadata (GET cookies).
func (c *Client) CookieStatus(ctx context.Context) (*models.CookieStatus, error) {
	var out models.CookieStatus
	if err := c.doJSON(ctx, http.MethodGet, "cookies", true, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadCookies replaces the server's cookies.txt with the given file
// (multipart POST cookies).
func (c *Client) UploadCookies(ctx context.Context, path string) error {
	if path == "" {
		return validationError("cookie file path is required")
	}
	return c.doMultipart(ctx, "cookies", nil, "cookies", path, nil)
}

// DeleteCookies removes the server's cookies.txt (DELETE cookies).
func (c *Client) DeleteCookies(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodDelete, "cookies", true, nil, nil)
}
