package httpx

import (
	"net/http"

	"github.com/qbankhq/qbank/pkg/jwtx"
	"github.com/qbankhq/qbank/pkg/slogx"
)

// ClaimsAugmentation surfaces provider-stored custom claims that the generic
// bearer validation does not attach. It re-decodes the raw token payload —
// without re-verifying the signature, which AuthnMiddleware already checked —
// and attaches role and companyId claims to the request's claim set.
//
// This middleware never fails a request: a missing token, a malformed token
// or absent custom fields all pass through unchanged. Unprovisioned subjects
// legitimately carry no custom claims. Claims already present are never
// duplicated.
func ClaimsAugmentation() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := RawTokenFromContext(ctx)
			if raw == "" {
				raw = BearerToken(r)
			}
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := jwtx.DecodeUnverified(raw)
			if err != nil {
				// Swallowed on purpose: augmentation must never reject a
				// request the generic validator accepted.
				slogx.FromContext(ctx).Debug("claims augmentation skipped", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			cs := ClaimSetFromContext(ctx)
			augmented := false

			if claims.Role != "" && !cs.HasRole() {
				cs = append(cs, Claim{Type: ClaimTypeRole, Value: claims.Role})
				augmented = true
			}
			if claims.CompanyID != "" && !cs.Has(ClaimTypeCompanyID) {
				cs = append(cs, Claim{Type: ClaimTypeCompanyID, Value: claims.CompanyID})
				augmented = true
			}

			if augmented {
				r = r.WithContext(ContextWithClaimSet(ctx, cs))
			}
			next.ServeHTTP(w, r)
		})
	}
}
