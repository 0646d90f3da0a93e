package jwtx_test

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/qbankhq/qbank/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

type jwksFixture struct {
	key      *rsa.PrivateKey
	kid      string
	server   *httptest.Server
	verifier *jwtx.JWKSVerifier
}

func newJWKSFixture(t *testing.T, issuer, audience string) *jwksFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	const kid = "test-key-1"
	set := jose.JSONWebKeySet{Keys: []jose.JSONWebKey{{
		Key:       &key.PublicKey,
		KeyID:     kid,
		Algorithm: "RS256",
		Use:       "sig",
	}}}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(server.Close)

	return &jwksFixture{
		key:    key,
		kid:    kid,
		server: server,
		verifier: &jwtx.JWKSVerifier{
			Keys:     jwtx.NewKeySet(server.URL, time.Minute),
			Issuer:   issuer,
			Audience: audience,
		},
	}
}

func (f *jwksFixture) sign(t *testing.T, kid string, claims jwtx.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = kid
	raw, err := token.SignedString(f.key)
	require.NoError(t, err)
	return raw
}

func validClaims(issuer, audience string) jwtx.Claims {
	return jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "uid-42",
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:      "admin",
		CompanyID: "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV",
	}
}

func TestJWKSVerifier(t *testing.T) {
	const (
		issuer   = "https://id.example.test"
		audience = "qbank-api"
	)

	f := newJWKSFixture(t, issuer, audience)

	t.Run("accepts a valid token", func(t *testing.T) {
		raw := f.sign(t, f.kid, validClaims(issuer, audience))

		claims, err := f.verifier.Verify(t.Context(), raw)
		require.NoError(t, err)
		require.Equal(t, "uid-42", claims.Subject)
		require.Equal(t, "admin", claims.Role)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		claims := validClaims(issuer, audience)
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

		_, err := f.verifier.Verify(t.Context(), f.sign(t, f.kid, claims))
		require.ErrorIs(t, err, jwtx.ErrInvalid)
	})

	t.Run("rejects a wrong issuer", func(t *testing.T) {
		claims := validClaims("https://evil.example.test", audience)

		_, err := f.verifier.Verify(t.Context(), f.sign(t, f.kid, claims))
		require.ErrorIs(t, err, jwtx.ErrInvalid)
	})

	t.Run("rejects a wrong audience", func(t *testing.T) {
		claims := validClaims(issuer, "other-api")

		_, err := f.verifier.Verify(t.Context(), f.sign(t, f.kid, claims))
		require.ErrorIs(t, err, jwtx.ErrInvalid)
	})

	t.Run("rejects an unknown kid", func(t *testing.T) {
		raw := f.sign(t, "rotated-away", validClaims(issuer, audience))

		_, err := f.verifier.Verify(t.Context(), raw)
		require.ErrorIs(t, err, jwtx.ErrInvalid)
	})

	t.Run("rejects a token without expiry", func(t *testing.T) {
		claims := validClaims(issuer, audience)
		claims.ExpiresAt = nil

		_, err := f.verifier.Verify(t.Context(), f.sign(t, f.kid, claims))
		require.ErrorIs(t, err, jwtx.ErrInvalid)
	})
}
