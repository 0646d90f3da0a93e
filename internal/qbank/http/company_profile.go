package http

import (
	"errors"
	"net/http"

	"github.com/qbankhq/qbank/internal/qbank/service"
	"github.com/qbankhq/qbank/pkg/httpx"
	"github.com/qbankhq/qbank/pkg/qbanksdk"
	"github.com/qbankhq/qbank/pkg/slogx"
)

type CompanyProfileHandler struct {
	UserService *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		Profile Endpoint
//	@Description	Return the authenticated user's account details including their company name.
//	@Tags			Company
//	@Produce		json
//	@Success		200	{object}	qbanksdk.ProfileResponse	"user"
//	@Failure		401	{object}	qbanksdk.ErrorResponse		"success, message"
//	@Failure		404	{object}	qbanksdk.ErrorResponse		"success, message"
//	@Security		BearerAuth
//	@Router			/company/profile [get].
func (h *CompanyProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	subject := httpx.SubjectFromContext(ctx)
	if subject == "" {
		httpx.WriteJSON(w, http.StatusUnauthorized, qbanksdk.ErrorResponse{
			Message: "authentication required",
		})
		return
	}

	user, company, err := h.UserService.GetProfileBySubject(ctx, subject)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, qbanksdk.ErrorResponse{
				Message: "no provisioned account for this identity",
			})
			return
		}
		log.Error("failed to fetch profile", "err", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, qbanksdk.ErrorResponse{
			Message: "failed to fetch profile",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, qbanksdk.ProfileResponse{
		User: qbanksdk.ProfileUser{
			ID:          user.ID,
			Email:       user.Email,
			Role:        user.Role.String(),
			FullName:    user.FullName,
			CompanyName: company.Name,
		},
	})
}
