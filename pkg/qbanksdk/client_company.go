package qbanksdk

import (
	"context"
	"net/http"
)

// RegisterCompany registers a new company and provisions the caller as its
// admin. This is a public endpoint; the caller's identity comes from the
// IDToken in the request body.
func (c *Client) RegisterCompany(
	ctx context.Context,
	req RegisterCompanyRequest,
) (*RegisterCompanyResponse, error) {
	var resp RegisterCompanyResponse
	if err := c.doJSON(ctx, http.MethodPost, "/company/register", "", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetProfile returns the authenticated user's account details.
func (c *Client) GetProfile(ctx context.Context, accessToken string) (*ProfileResponse, error) {
	var resp ProfileResponse
	if err := c.doJSON(ctx, http.MethodGet, "/company/profile", accessToken, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}
