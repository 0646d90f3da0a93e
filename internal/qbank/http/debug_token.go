package http

import (
	"net/http"

	"github.com/qbankhq/qbank/pkg/httpx"
	"github.com/qbankhq/qbank/pkg/qbanksdk"
)

// DebugTokenHandler godoc
//
//	@Summary		Token Debug Endpoint
//	@Description	Echo back the subject and claims extracted from the presented bearer token.
//	@Description	Registered only when the service runs in development mode.
//	@Tags			Debug
//	@Produce		json
//	@Success		200	{object}	qbanksdk.DebugTokenResponse	"subject, claims"
//	@Failure		401	{object}	qbanksdk.ErrorResponse		"success, message"
//	@Security		BearerAuth
//	@Router			/debug/token [get].
func DebugTokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims := map[string]string{}
		for _, c := range httpx.ClaimSetFromContext(ctx) {
			claims[c.Type] = c.Value
		}

		httpx.WriteJSON(w, http.StatusOK, qbanksdk.DebugTokenResponse{
			Subject: httpx.SubjectFromContext(ctx),
			Claims:  claims,
		})
	}
}
