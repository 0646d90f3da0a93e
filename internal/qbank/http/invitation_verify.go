package http

import (
	"errors"
	"net/http"

	"github.com/qbankhq/qbank/internal/qbank/service"
	"github.com/qbankhq/qbank/pkg/httpx"
	"github.com/qbankhq/qbank/pkg/qbanksdk"
	"github.com/qbankhq/qbank/pkg/slogx"
)

type InvitationVerifyHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		Invitation Verification Endpoint
//	@Description	Check whether an invitation token is still redeemable. Used, expired and
//	@Description	unknown tokens are indistinguishable; all return 404.
//	@Tags			Invitations
//	@Produce		json
//	@Param			token	path		string								true	"Invitation token"
//	@Success		200		{object}	qbanksdk.VerifyInvitationResponse	"valid, companyName, role, email"
//	@Failure		404		{object}	qbanksdk.ErrorResponse				"success, message"
//	@Router			/invitation/verify/{token} [get].
func (h *InvitationVerifyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	token := r.PathValue("token")

	inv, company, err := h.InvitationService.VerifyInvitation(ctx, token)
	if err != nil {
		if errors.Is(err, service.ErrInvitationNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, qbanksdk.ErrorResponse{
				Message: "invitation not found or expired",
			})
			return
		}
		log.Error("failed to verify invitation", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, qbanksdk.ErrorResponse{
			Message: "failed to verify invitation",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, qbanksdk.VerifyInvitationResponse{
		Valid:       true,
		CompanyName: company.Name,
		Role:        inv.Role.String(),
		Email:       inv.Email,
	})
}
