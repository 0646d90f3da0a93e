package httpx

import (
	"net/http"
	"slices"

	"github.com/qbankhq/qbank/pkg/slogx"
)

// Policy is a named boolean predicate over a request's claim set, used to
// gate route access.
type Policy struct {
	Name  string
	Allow func(ClaimSet) bool
}

// The three route policies. Role values form a closed enumeration; anything
// outside it fails every policy.
var (
	// AdminOnly admits principals whose role claim is "admin".
	AdminOnly = rolePolicy("AdminOnly", "admin")

	// EvaluatorOrAdmin admits evaluators and admins.
	EvaluatorOrAdmin = rolePolicy("EvaluatorOrAdmin", "admin", "evaluator")

	// AnyRole admits any provisioned principal.
	AnyRole = rolePolicy("AnyRole", "admin", "evaluator", "candidate")
)

func rolePolicy(name string, allowed ...string) Policy {
	return Policy{
		Name: name,
		Allow: func(cs ClaimSet) bool {
			role, ok := cs.Role()
			return ok && slices.Contains(allowed, role)
		},
	}
}

// RequirePolicy rejects requests whose augmented claim set does not satisfy
// the policy. Unauthenticated requests get 401, authenticated ones with
// insufficient claims get 403.
func RequirePolicy(p Policy) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if SubjectFromContext(ctx) == "" {
				writeBearerError(w, "authentication required")
				return
			}

			cs := ClaimSetFromContext(ctx)
			if !p.Allow(cs) {
				role, _ := cs.Role()
				slogx.FromContext(ctx).Warn("policy denied request",
					"policy", p.Name,
					"role", role,
				)
				WriteJSON(w, http.StatusForbidden, map[string]string{
					"message": "insufficient permissions",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
