package api

import (
	"context"
	"net/http"

	"github.com/vidconv/vidconv/pkg/models"
)

// Health probes the service's status endpoint (GET status, no auth). It
// never returns an error: a request that could not reach the server reports
// Active=false with the transport failure's message.
func (c *Client) Health(ctx context.Context) *models.HealthStatus {
	req, err := c.newRequest(ctx, http.MethodGet, "status", false, nil, "")
	if err != nil {
		return &models.HealthStatus{Active: false, Error: err.Error()}
	}

	resp, err := c.send(req)
	if err != nil {
		return &models.HealthStatus{Active: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &models.HealthStatus{Active: false, Error: decodeError(resp).Error()}
	}
	return &models.HealthStatus{Active: true}
}
