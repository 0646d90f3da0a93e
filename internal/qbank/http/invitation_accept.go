package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/qbankhq/qbank/internal/qbank/service"
	"github.com/qbankhq/qbank/pkg/httpx"
	"github.com/qbankhq/qbank/pkg/qbanksdk"
	"github.com/qbankhq/qbank/pkg/slogx"
)

type InvitationAcceptHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		Invitation Acceptance Endpoint
//	@Description	Consume an invitation token and provision the invitee's account with the
//	@Description	invited role. The invitee's identity comes from the ID token in the body.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		qbanksdk.AcceptInvitationRequest	true	"Accept request"
//	@Success		200		{object}	qbanksdk.AcceptInvitationResponse	"success, message, user"
//	@Failure		400		{object}	qbanksdk.ErrorResponse				"success, message"
//	@Failure		401		{object}	qbanksdk.ErrorResponse				"success, message"
//	@Failure		404		{object}	qbanksdk.ErrorResponse				"success, message"
//	@Failure		409		{object}	qbanksdk.ErrorResponse				"success, message"
//	@Router			/invitation/accept [post].
func (h *InvitationAcceptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req qbanksdk.AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, qbanksdk.ErrorResponse{
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.InvitationService.AcceptInvitation(ctx, req.Token, req.IDToken, req.FullName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInvitationRequest):
			httpx.WriteJSON(w, http.StatusBadRequest, qbanksdk.ErrorResponse{
				Message: "token and idToken are required",
			})
		case errors.Is(err, service.ErrInvitationNotFound):
			httpx.WriteJSON(w, http.StatusNotFound, qbanksdk.ErrorResponse{
				Message: "invitation not found or expired",
			})
		case errors.Is(err, service.ErrInvalidIDToken):
			httpx.WriteJSON(w, http.StatusUnauthorized, qbanksdk.ErrorResponse{
				Message: "id token could not be verified",
			})
		case errors.Is(err, service.ErrAccountExists):
			httpx.WriteJSON(w, http.StatusConflict, qbanksdk.ErrorResponse{
				Message: "account already provisioned",
			})
		case errors.Is(err, service.ErrClaimsPropagation):
			httpx.WriteJSON(w, http.StatusBadRequest, qbanksdk.ErrorResponse{
				Message: "identity provider unavailable, invitation was not consumed",
			})
		default:
			log.Error("failed to accept invitation", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, qbanksdk.ErrorResponse{
				Message: "failed to accept invitation",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, qbanksdk.AcceptInvitationResponse{
		Success: true,
		Message: "Invitation accepted successfully",
		User: qbanksdk.AcceptedUser{
			Role:      user.Role.String(),
			CompanyID: user.CompanyID,
		},
	})
}
