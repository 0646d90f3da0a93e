package qbanksdk

import (
	"context"
	"net/http"
)

// GetAdminDashboard fetches the admin dashboard. Requires an admin token.
func (c *Client) GetAdminDashboard(ctx context.Context, accessToken string) (*DashboardResponse, error) {
	return c.getDashboard(ctx, "/admin/dashboard", accessToken)
}

// GetEvaluatorDashboard fetches the evaluator dashboard. Requires an
// evaluator or admin token.
func (c *Client) GetEvaluatorDashboard(ctx context.Context, accessToken string) (*DashboardResponse, error) {
	return c.getDashboard(ctx, "/evaluator/dashboard", accessToken)
}

// GetSharedDashboard fetches the dashboard available to every provisioned
// role.
func (c *Client) GetSharedDashboard(ctx context.Context, accessToken string) (*DashboardResponse, error) {
	return c.getDashboard(ctx, "/shared/dashboard", accessToken)
}

func (c *Client) getDashboard(ctx context.Context, path, accessToken string) (*DashboardResponse, error) {
	var resp DashboardResponse
	if err := c.doJSON(ctx, http.MethodGet, path, accessToken, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}
