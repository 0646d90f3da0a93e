package qbanksdk

import (
	"context"
	"net/http"
)

// GetLiveness checks if the service is alive.
func (c *Client) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/livez", "", nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness checks if the service and its dependencies are ready.
func (c *Client) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doJSON(ctx, http.MethodGet, "/readyz", "", nil, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetDebugToken echoes the claims the service extracted from the presented
// bearer token. Only available when the service runs in development mode.
func (c *Client) GetDebugToken(ctx context.Context, accessToken string) (*DebugTokenResponse, error) {
	var resp DebugTokenResponse
	if err := c.doJSON(ctx, http.MethodGet, "/debug/token", accessToken, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}
