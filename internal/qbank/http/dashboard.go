package http

import (
	"net/http"

	"github.com/qbankhq/qbank/pkg/httpx"
	"github.com/qbankhq/qbank/pkg/qbanksdk"
)

// AdminDashboardHandler godoc
//
//	@Summary		Admin Dashboard Endpoint
//	@Description	Dashboard payload for admins only.
//	@Tags			Dashboards
//	@Produce		json
//	@Success		200	{object}	qbanksdk.DashboardResponse	"message, role, features"
//	@Failure		401	{object}	qbanksdk.ErrorResponse		"success, message"
//	@Failure		403	{object}	qbanksdk.ErrorResponse		"success, message"
//	@Security		BearerAuth
//	@Router			/admin/dashboard [get].
func AdminDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, _ := httpx.ClaimSetFromContext(r.Context()).Role()
		httpx.WriteJSON(w, http.StatusOK, qbanksdk.DashboardResponse{
			Message:  "Welcome to the admin dashboard",
			Role:     role,
			Features: []string{"User Management", "Company Settings", "Analytics"},
		})
	}
}

// EvaluatorDashboardHandler godoc
//
//	@Summary		Evaluator Dashboard Endpoint
//	@Description	Dashboard payload for evaluators and admins.
//	@Tags			Dashboards
//	@Produce		json
//	@Success		200	{object}	qbanksdk.DashboardResponse	"message, role, features"
//	@Failure		401	{object}	qbanksdk.ErrorResponse		"success, message"
//	@Failure		403	{object}	qbanksdk.ErrorResponse		"success, message"
//	@Security		BearerAuth
//	@Router			/evaluator/dashboard [get].
func EvaluatorDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, _ := httpx.ClaimSetFromContext(r.Context()).Role()
		httpx.WriteJSON(w, http.StatusOK, qbanksdk.DashboardResponse{
			Message:  "Welcome to the evaluator dashboard",
			Role:     role,
			Features: []string{"Create Questions", "Manage Evaluations", "View Reports"},
		})
	}
}

// SharedDashboardHandler godoc
//
//	@Summary		Shared Dashboard Endpoint
//	@Description	Dashboard payload available to every provisioned role.
//	@Tags			Dashboards
//	@Produce		json
//	@Success		200	{object}	qbanksdk.DashboardResponse	"message, role, features"
//	@Failure		401	{object}	qbanksdk.ErrorResponse		"success, message"
//	@Failure		403	{object}	qbanksdk.ErrorResponse		"success, message"
//	@Security		BearerAuth
//	@Router			/shared/dashboard [get].
func SharedDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		role, _ := httpx.ClaimSetFromContext(r.Context()).Role()
		httpx.WriteJSON(w, http.StatusOK, qbanksdk.DashboardResponse{
			Message:  "Welcome to Shared Dashboard - " + role,
			Role:     role,
			Features: []string{"Profile Management", "Notifications", "Help"},
		})
	}
}
