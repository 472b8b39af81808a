package api

import (
	"context"
	"net/http"
	"time"

	"github.com/manageday-dev/manageday/internal/models"
)

// Health probes the API health endpoint and measures the round trip.
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	var payload struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}

	start := time.Now()
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &payload); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	status := payload.Status
	if status == "" {
		status = "ok"
	}
	version := payload.Version
	if version == "" {
		version = "unknown"
	}

	return &models.HealthStatus{
		Status:         status,
		Version:        version,
		ResponseTimeMS: elapsed.Milliseconds(),
	}, nil
}
