package service

import "errors"

// Sentinel errors shared across services. Handlers map these onto HTTP
// status codes.
var (
	ErrInvalidIDToken      = errors.New("invalid id token")
	ErrClaimsPropagation   = errors.New("failed to store claims at identity provider")
	ErrInvalidRegistration = errors.New("invalid registration request")
	ErrCompanyNameTaken    = errors.New("company name already taken")
	ErrAccountExists       = errors.New("account already provisioned")

	ErrInvalidInvitationRequest = errors.New("invalid invitation request")
	ErrInvalidRole              = errors.New("invalid role")
	ErrInvalidEmail             = errors.New("invalid email address")
	ErrInvitationNotFound       = errors.New("invitation not found or expired")

	ErrUserNotFound = errors.New("user not found")
)
