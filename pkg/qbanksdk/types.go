package qbanksdk

// ============================================================================
// Company Types
// ============================================================================

// RegisterCompanyRequest registers a new company with its founding admin.
// IDToken is the provider-issued ID token of the registering user.
type RegisterCompanyRequest struct {
	CompanyName string `json:"companyName"`
	Description string `json:"description,omitempty"`
	AdminEmail  string `json:"adminEmail"`
	IDToken     string `json:"idToken"`
	FullName    string `json:"fullName,omitempty"`
}

// RegisterCompanyResponse is returned after a successful registration.
type RegisterCompanyResponse struct {
	Success   bool   `json:"success"`
	CompanyID string `json:"companyId"`
	Message   string `json:"message"`
}

// ProfileUser is the user block inside a profile response.
type ProfileUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	FullName    string `json:"fullName"`
	CompanyName string `json:"companyName"`
}

// ProfileResponse describes the authenticated user's account.
type ProfileResponse struct {
	User ProfileUser `json:"user"`
}

// ============================================================================
// Invitation Types
// ============================================================================

// CreateInvitationRequest mints an invitation for an email address. Role must
// be "evaluator" or "candidate"; admins can only be created through company
// registration.
type CreateInvitationRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// CreateInvitationResponse carries the opaque single-use invitation token.
type CreateInvitationResponse struct {
	Success         bool   `json:"success"`
	InvitationToken string `json:"invitationToken"`
	Message         string `json:"message"`
}

// VerifyInvitationResponse describes a still-active invitation.
type VerifyInvitationResponse struct {
	Valid       bool   `json:"valid"`
	CompanyName string `json:"companyName"`
	Role        string `json:"role"`
	Email       string `json:"email"`
}

// AcceptInvitationRequest consumes an invitation. IDToken is the invitee's
// provider-issued ID token.
type AcceptInvitationRequest struct {
	Token    string `json:"token"`
	IDToken  string `json:"idToken"`
	FullName string `json:"fullName,omitempty"`
}

// AcceptedUser is the user block inside an accept response.
type AcceptedUser struct {
	Role      string `json:"role"`
	CompanyID string `json:"companyId"`
}

// AcceptInvitationResponse is returned after a successful accept.
type AcceptInvitationResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	User    AcceptedUser `json:"user"`
}

// ============================================================================
// Dashboard Types
// ============================================================================

// DashboardResponse is the role-gated dashboard payload.
type DashboardResponse struct {
	Message  string   `json:"message"`
	Role     string   `json:"role"`
	Features []string `json:"features"`
}

// ============================================================================
// Diagnostics Types
// ============================================================================

// DebugTokenResponse echoes back the claims the service extracted from the
// presented bearer token. Development aid only.
type DebugTokenResponse struct {
	Subject string            `json:"subject"`
	Claims  map[string]string `json:"claims"`
}

// HealthResponse is returned by the liveness and readiness endpoints.
type HealthResponse struct {
	Status  string            `json:"status"`
	Uptime  string            `json:"uptime,omitempty"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// ============================================================================
// Generic Response Types
// ============================================================================

// ErrorResponse is the service's generic failure envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MessageResponse is a bare message payload.
type MessageResponse struct {
	Message string `json:"message"`
}
