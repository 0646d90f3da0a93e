/*
Package qbanksdk provides a client SDK for the question bank provisioning
service.

# Overview

The service delegates credential handling to an external identity provider, so
the SDK never sees passwords. Callers obtain an ID token from the provider and
pass it to the SDK where an operation needs one.

Create a Client to talk to the service:

	client := qbanksdk.NewClient("https://qbank.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Register a company; idToken identifies the registering admin
	resp, err := client.RegisterCompany(ctx, qbanksdk.RegisterCompanyRequest{
		CompanyName: "Acme",
		AdminEmail:  "admin@acme.example",
		IDToken:     idToken,
	})

# Authenticated Operations

Operations on provisioned accounts take the bearer token explicitly:

	profile, err := client.GetProfile(ctx, accessToken)
	inv, err := client.CreateInvitation(ctx, accessToken, qbanksdk.CreateInvitationRequest{
		Email: "eval@acme.example",
		Role:  "evaluator",
	})

# Invitation Flow

Invitations are minted by an admin or evaluator, verified publicly by token,
and accepted by the invitee with their own ID token:

	created, err := client.CreateInvitation(ctx, adminToken, createReq)
	info, err := client.VerifyInvitation(ctx, created.InvitationToken)
	accepted, err := client.AcceptInvitation(ctx, qbanksdk.AcceptInvitationRequest{
		Token:    created.InvitationToken,
		IDToken:  inviteeIDToken,
		FullName: "Jane Doe",
	})

# Error Handling

Non-2xx responses are returned as *APIError carrying the HTTP status code and
the server's message:

	_, err := client.VerifyInvitation(ctx, token)
	var apiErr *qbanksdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		// token is invalid, expired or already used
	}
*/
package qbanksdk
