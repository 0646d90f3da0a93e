package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/qbankhq/qbank/pkg/jwtx"
	"github.com/qbankhq/qbank/pkg/slogx"
)

// AuthnMiddleware performs generic bearer-token validation: signature,
// issuer, audience and expiry via the provider's JWKS. On success it stores
// the subject, the raw token and a base claim set in the request context.
// Custom claims (role, companyId) are NOT attached here; that is the
// claims-augmentation middleware's job.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := BearerToken(r)
			if raw == "" {
				writeBearerError(w, "missing bearer token")
				return
			}

			claims, err := v.Verify(ctx, raw)
			if err != nil {
				log.Warn("bearer token verification failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			ctx = contextWithPrincipal(ctx, claims.Subject, raw)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the bearer token from the Authorization header, or ""
// if none is present.
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}

func contextWithPrincipal(ctx context.Context, subject, rawToken string) context.Context {
	ctx = context.WithValue(ctx, CtxKeySubject, subject)
	ctx = context.WithValue(ctx, CtxKeyRawToken, rawToken)
	return ContextWithClaimSet(ctx, ClaimSet{{Type: ClaimTypeSubject, Value: subject}})
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
