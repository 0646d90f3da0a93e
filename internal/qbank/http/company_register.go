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

type CompanyRegisterHandler struct {
	CompanyService *service.CompanyService
}

// ServeHTTP godoc
//
//	@Summary		Company Registration Endpoint
//	@Description	Register a new company and provision the registering user as its admin.
//	@Description	The caller's identity comes from the provider-issued ID token in the body.
//	@Tags			Company
//	@Accept			json
//	@Produce		json
//	@Param			request	body		qbanksdk.RegisterCompanyRequest		true	"Registration request"
//	@Success		200		{object}	qbanksdk.RegisterCompanyResponse	"success, companyId, message"
//	@Failure		400		{object}	qbanksdk.ErrorResponse				"success, message"
//	@Failure		401		{object}	qbanksdk.ErrorResponse				"success, message"
//	@Failure		409		{object}	qbanksdk.ErrorResponse				"success, message"
//	@Router			/company/register [post].
func (h *CompanyRegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req qbanksdk.RegisterCompanyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, qbanksdk.ErrorResponse{
			Message: "invalid JSON body",
		})
		return
	}

	company, _, err := h.CompanyService.RegisterCompany(
		ctx, req.CompanyName, req.Description, req.AdminEmail, req.FullName, req.IDToken,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRegistration):
			httpx.WriteJSON(w, http.StatusBadRequest, qbanksdk.ErrorResponse{
				Message: "company name is required and must be at most 255 characters",
			})
		case errors.Is(err, service.ErrInvalidEmail):
			httpx.WriteJSON(w, http.StatusBadRequest, qbanksdk.ErrorResponse{
				Message: "a valid email address is required",
			})
		case errors.Is(err, service.ErrInvalidIDToken):
			httpx.WriteJSON(w, http.StatusUnauthorized, qbanksdk.ErrorResponse{
				Message: "id token could not be verified",
			})
		case errors.Is(err, service.ErrCompanyNameTaken):
			httpx.WriteJSON(w, http.StatusConflict, qbanksdk.ErrorResponse{
				Message: "company name already taken",
			})
		case errors.Is(err, service.ErrAccountExists):
			httpx.WriteJSON(w, http.StatusConflict, qbanksdk.ErrorResponse{
				Message: "account already provisioned",
			})
		case errors.Is(err, service.ErrClaimsPropagation):
			httpx.WriteJSON(w, http.StatusBadRequest, qbanksdk.ErrorResponse{
				Message: "identity provider unavailable, registration was not completed",
			})
		default:
			log.Error("failed to register company", "err", err)
			httpx.WriteJSON(w, http.StatusInternalServerError, qbanksdk.ErrorResponse{
				Message: "failed to register company",
			})
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, qbanksdk.RegisterCompanyResponse{
		Success:   true,
		CompanyID: company.ID,
		Message:   "Company registered successfully",
	})
}
