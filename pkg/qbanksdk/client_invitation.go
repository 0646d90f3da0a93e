package qbanksdk

import (
	"context"
	"net/http"
	"net/url"
)

// CreateInvitation mints a single-use invitation token for an email address.
// Requires an evaluator or admin bearer token.
func (c *Client) CreateInvitation(
	ctx context.Context,
	accessToken string,
	req CreateInvitationRequest,
) (*CreateInvitationResponse, error) {
	var resp CreateInvitationResponse
	if err := c.doJSON(ctx, http.MethodPost, "/invitation/create", accessToken, req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// VerifyInvitation checks whether an invitation token is still active. This
// is a public endpoint. Invalid, expired and used tokens are all reported as
// a 404 *APIError.
func (c *Client) VerifyInvitation(ctx context.Context, token string) (*VerifyInvitationResponse, error) {
	var resp VerifyInvitationResponse
	path := "/invitation/verify/" + url.PathEscape(token)
	if err := c.doJSON(ctx, http.MethodGet, path, "", nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AcceptInvitation consumes an invitation and provisions the invitee's
// account. This is a public endpoint; the invitee's identity comes from the
// IDToken in the request body.
func (c *Client) AcceptInvitation(
	ctx context.Context,
	req AcceptInvitationRequest,
) (*AcceptInvitationResponse, error) {
	var resp AcceptInvitationResponse
	if err := c.doJSON(ctx, http.MethodPost, "/invitation/accept", "", req, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}
