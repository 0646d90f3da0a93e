package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed  = errors.New("jwtx: malformed token")
	ErrUnknownKID = errors.New("jwtx: unknown kid")
	ErrInvalid    = errors.New("jwtx: token verification failed")
)

// Claims are the claims carried by provider-issued ID tokens. Role and
// CompanyID are the custom claims the provider stores for a subject once it
// has been provisioned; unprovisioned subjects carry neither.
type Claims struct {
	jwt.RegisteredClaims

	// Role assigned during provisioning: admin, evaluator or candidate.
	Role string `json:"role,omitempty"`

	// CompanyID the subject belongs to.
	CompanyID string `json:"companyId,omitempty"`
}

// DecodeUnverified extracts the payload claims of a compact JWT without
// checking its signature. Callers must only use this on tokens that already
// passed signature verification upstream; the claims-augmentation middleware
// relies on that guarantee.
func DecodeUnverified(raw string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return Claims{}, ErrMalformed
	}
	return claims, nil
}
