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

type InvitationCreateHandler struct {
	InvitationService *service.InvitationService
}

// ServeHTTP godoc
//
//	@Summary		Invitation Creation Endpoint
//	@Description	Mint a single-use invitation token for an email address. The invitation is
//	@Description	tied to the caller's company. Only evaluator and candidate roles can be invited.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			request	body		qbanksdk.CreateInvitationRequest	true	"Invitation request"
//	@Success		200		{object}	qbanksdk.CreateInvitationResponse	"success, invitationToken, message"
//	@Failure		400		{object}	qbanksdk.ErrorResponse				"success, message"
//	@Failure		401		{object}	qbanksdk.ErrorResponse				"success, message"
//	@Failure		403		{object}	qbanksdk.ErrorResponse				"success, message"
//	@Security		BearerAuth
//	@Router			/invitation/create [post].
func (h *InvitationCreateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req qbanksdk.CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, qbanksdk.ErrorResponse{
			Message: "invalid JSON body",
		})
		return
	}

	subject := httpx.SubjectFromContext(ctx)
	if subject == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, qbanksdk.ErrorResponse{
			Message: "authentication required",
		})
		return
	}

	token, _, err := h.InvitationService.CreateInvitation(ctx, subject, req.Email, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			httpx.WriteJSON(w, http.StatusBadRequest, qbanksdk.ErrorResponse{
				Message: "a valid email address is required",
			})
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteJSON(w, http.StatusBadRequest, qbanksdk.ErrorResponse{
				Message: "role must be evaluator or candidate",
			})
		case errors.Is(err, service.ErrUserNotFound):
			httpx.WriteJSON(w, http.StatusUnauthorized, qbanksdk.ErrorResponse{
				Message: "no provisioned account for this identity",
			})
		default:
			log.Error("failed to create invitation", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, qbanksdk.ErrorResponse{
				Message: "failed to create invitation",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, qbanksdk.CreateInvitationResponse{
		Success:         true,
		InvitationToken: token,
		Message:         "Invitation created successfully",
	})
}
