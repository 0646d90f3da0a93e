package jwtx

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a compact JWT and returns its claims if it is legit.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Claims, error)
}

// JWKSVerifier verifies provider-issued tokens against the provider's
// published JWKS. Issuer and Audience are enforced when non-empty.
type JWKSVerifier struct {
	Keys     *KeySet
	Issuer   string
	Audience string

	// Leeway tolerates small clock skew when validating exp/nbf/iat.
	Leeway time.Duration
}

// Verify implements Verifier. All verification failures collapse into
// ErrInvalid so callers cannot distinguish a forged token from an expired
// one; the underlying cause is still wrapped for logging.
func (v *JWKSVerifier) Verify(ctx context.Context, raw string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.Leeway),
	}
	if v.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.Issuer))
	}
	if v.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.Audience))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKID
		}
		return v.Keys.Key(ctx, kid)
	}, opts...)
	if err != nil {
		return Claims{}, errors.Join(ErrInvalid, err)
	}

	return claims, nil
}
