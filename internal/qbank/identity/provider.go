// Package identity talks to the external identity provider. The provider
// owns credentials and token issuance; this service only verifies ID tokens
// and stores custom claims against provisioned subjects.
package identity

import (
	"context"
	"errors"
)

var (
	// ErrInvalidToken means the presented ID token failed verification.
	ErrInvalidToken = errors.New("identity: invalid id token")

	// ErrUpstream means the provider's management API could not be reached
	// or returned a failure.
	ErrUpstream = errors.New("identity: provider request failed")
)

// CustomClaims are the claims stored against a subject once provisioned.
// They surface in every subsequently issued token.
type CustomClaims struct {
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
}

// Provider is the identity provider surface the services need.
type Provider interface {
	// VerifyIDToken validates a provider-issued ID token and returns its
	// subject id.
	VerifyIDToken(ctx context.Context, idToken string) (string, error)

	// SetCustomClaims stores the role and company claims for a subject via
	// the provider's management API.
	SetCustomClaims(ctx context.Context, subject string, claims CustomClaims) error

	// Ping checks the provider is reachable.
	Ping(ctx context.Context) error
}
