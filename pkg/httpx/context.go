package httpx

import "context"

type ctxKey string

const (
	// CtxKeySubject holds the verified identity-provider subject id.
	CtxKeySubject ctxKey = "subject"

	// CtxKeyRawToken holds the raw bearer token as presented, so the
	// claims-augmentation middleware can re-decode its payload.
	CtxKeyRawToken ctxKey = "raw_token"

	// CtxKeyClaimSet holds the request's augmented ClaimSet.
	CtxKeyClaimSet ctxKey = "claim_set"
)

// Claim type names. RoleClaimAliases exist because tokens minted through
// older gateways map the role claim onto the WS-Fed claim URI instead of the
// short name; policies accept any of them.
const (
	ClaimTypeSubject   = "sub"
	ClaimTypeRole      = "role"
	ClaimTypeCompanyID = "companyId"
)

var RoleClaimAliases = []string{
	ClaimTypeRole,
	"roles",
	"http://schemas.microsoft.com/ws/2008/06/identity/claims/role",
}

// Claim is a single type/value pair attached to the request principal.
type Claim struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ClaimSet is the (possibly augmented) set of claims for the authenticated
// principal of the current request.
type ClaimSet []Claim

// Has reports whether a claim of the given type is present.
func (cs ClaimSet) Has(claimType string) bool {
	_, ok := cs.Value(claimType)
	return ok
}

// Value returns the first claim value of the given type.
func (cs ClaimSet) Value(claimType string) (string, bool) {
	for _, c := range cs {
		if c.Type == claimType {
			return c.Value, true
		}
	}
	return "", false
}

// Role returns the principal's role, accepting any of the known role claim
// aliases.
func (cs ClaimSet) Role() (string, bool) {
	for _, alias := range RoleClaimAliases {
		if v, ok := cs.Value(alias); ok {
			return v, true
		}
	}
	return "", false
}

// HasRole reports whether any role claim alias is present.
func (cs ClaimSet) HasRole() bool {
	_, ok := cs.Role()
	return ok
}

// SubjectFromContext returns the verified subject id, or "" when the request
// is unauthenticated.
func SubjectFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySubject).(string); ok {
		return v
	}
	return ""
}

// RawTokenFromContext returns the raw bearer token stored by the authn
// middleware.
func RawTokenFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRawToken).(string); ok {
		return v
	}
	return ""
}

// ClaimSetFromContext returns the request's claim set; nil when absent.
func ClaimSetFromContext(ctx context.Context) ClaimSet {
	if v, ok := ctx.Value(CtxKeyClaimSet).(ClaimSet); ok {
		return v
	}
	return nil
}

// ContextWithClaimSet replaces the claim set on the context.
func ContextWithClaimSet(ctx context.Context, cs ClaimSet) context.Context {
	return context.WithValue(ctx, CtxKeyClaimSet, cs)
}
