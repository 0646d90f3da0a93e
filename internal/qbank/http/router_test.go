package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qbankhq/qbank/internal/qbank/identity"
	"github.com/qbankhq/qbank/internal/qbank/metrics"
	"github.com/qbankhq/qbank/internal/qbank/service"
	"github.com/qbankhq/qbank/internal/qbank/store/drivers/sqlite"
	"github.com/qbankhq/qbank/pkg/jwtx"
	"github.com/qbankhq/qbank/pkg/qbanksdk"
)

// unverifiedVerifier accepts any structurally valid JWT. The tests mint their
// own HS256 tokens, so signature checks add nothing here.
type unverifiedVerifier struct{}

func (unverifiedVerifier) Verify(ctx context.Context, raw string) (jwtx.Claims, error) {
	return jwtx.DecodeUnverified(raw)
}

// stubProvider behaves like the identity provider: it records custom claims
// per subject so the test can mint follow-up tokens that carry them.
type stubProvider struct {
	verifier jwtx.Verifier

	mu     sync.Mutex
	claims map[string]identity.CustomClaims
}

func newStubProvider() *stubProvider {
	return &stubProvider{
		verifier: unverifiedVerifier{},
		claims:   map[string]identity.CustomClaims{},
	}
}

func (p *stubProvider) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	claims, err := p.verifier.Verify(ctx, idToken)
	if err != nil || claims.Subject == "" {
		return "", identity.ErrInvalidToken
	}
	return claims.Subject, nil
}

func (p *stubProvider) SetCustomClaims(ctx context.Context, subject string, claims identity.CustomClaims) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.claims[subject] = claims
	return nil
}

func (p *stubProvider) Ping(ctx context.Context) error { return nil }

// mintToken issues a token the way the provider would: with whatever custom
// claims are currently stored for the subject.
func (p *stubProvider) mintToken(t *testing.T, subject string) string {
	t.Helper()

	p.mu.Lock()
	custom := p.claims[subject]
	p.mu.Unlock()

	claims := jwtx.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role:      custom.Role,
		CompanyID: custom.CompanyID,
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func newTestServer(t *testing.T) (*qbanksdk.Client, *stubProvider) {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	idp := newStubProvider()
	collector := metrics.NewCollector(prometheus.NewRegistry())
	logger := slog.New(slog.DiscardHandler)

	router := NewRouter(unverifiedVerifier{}, "test", st, idp, collector, logger, true)
	router.CompanyService = &service.CompanyService{Store: st, Identity: idp, Metrics: collector}
	router.UserService = &service.UserService{Store: st}
	router.InvitationService = &service.InvitationService{Store: st, Identity: idp, Metrics: collector}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return qbanksdk.NewClient(srv.URL), idp
}

func apiStatus(t *testing.T, err error) int {
	t.Helper()

	var apiErr *qbanksdk.APIError
	require.True(t, errors.As(err, &apiErr), "expected *qbanksdk.APIError, got %v", err)
	return apiErr.StatusCode
}

func TestProvisioningFlow(t *testing.T) {
	client, idp := newTestServer(t)
	ctx := t.Context()

	// Health endpoints respond before any provisioning happens.
	health, err := client.GetLiveness(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", health.Status)

	ready, err := client.GetReadiness(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ok", ready.Checks["database"])
	assert.Equal(t, "ok", ready.Checks["identity"])

	// Ada registers Acme and becomes its admin.
	adaIDToken := idp.mintToken(t, "sub_ada")
	registered, err := client.RegisterCompany(ctx, qbanksdk.RegisterCompanyRequest{
		CompanyName: "Acme",
		Description: "Makers of question banks",
		AdminEmail:  "ada@acme.example",
		FullName:    "Ada Admin",
		IDToken:     adaIDToken,
	})
	require.NoError(t, err)
	assert.True(t, registered.Success)
	assert.NotEmpty(t, registered.CompanyID)

	// The provider now holds admin claims; tokens minted from here carry them.
	adaToken := idp.mintToken(t, "sub_ada")

	profile, err := client.GetProfile(ctx, adaToken)
	require.NoError(t, err)
	assert.Equal(t, "ada@acme.example", profile.User.Email)
	assert.Equal(t, "admin", profile.User.Role)
	assert.Equal(t, "Ada Admin", profile.User.FullName)
	assert.Equal(t, "Acme", profile.User.CompanyName)

	// Ada invites Bob as an evaluator.
	created, err := client.CreateInvitation(ctx, adaToken, qbanksdk.CreateInvitationRequest{
		Email: "bob@acme.example",
		Role:  "evaluator",
	})
	require.NoError(t, err)
	assert.Len(t, created.InvitationToken, 43)

	// Anyone can verify the pending invitation.
	verified, err := client.VerifyInvitation(ctx, created.InvitationToken)
	require.NoError(t, err)
	assert.True(t, verified.Valid)
	assert.Equal(t, "Acme", verified.CompanyName)
	assert.Equal(t, "evaluator", verified.Role)
	assert.Equal(t, "bob@acme.example", verified.Email)

	// Bob accepts with his own ID token.
	bobIDToken := idp.mintToken(t, "sub_bob")
	accepted, err := client.AcceptInvitation(ctx, qbanksdk.AcceptInvitationRequest{
		Token:    created.InvitationToken,
		IDToken:  bobIDToken,
		FullName: "Bob Builder",
	})
	require.NoError(t, err)
	assert.Equal(t, "evaluator", accepted.User.Role)
	assert.Equal(t, registered.CompanyID, accepted.User.CompanyID)

	// The token is spent.
	_, err = client.VerifyInvitation(ctx, created.InvitationToken)
	assert.Equal(t, http.StatusNotFound, apiStatus(t, err))

	_, err = client.AcceptInvitation(ctx, qbanksdk.AcceptInvitationRequest{
		Token:   created.InvitationToken,
		IDToken: idp.mintToken(t, "sub_eve"),
	})
	assert.Equal(t, http.StatusNotFound, apiStatus(t, err))

	// Dashboards: Bob is an evaluator, not an admin.
	bobToken := idp.mintToken(t, "sub_bob")

	_, err = client.GetAdminDashboard(ctx, bobToken)
	assert.Equal(t, http.StatusForbidden, apiStatus(t, err))

	evalDash, err := client.GetEvaluatorDashboard(ctx, bobToken)
	require.NoError(t, err)
	assert.Equal(t, "evaluator", evalDash.Role)
	assert.Contains(t, evalDash.Features, "Create Questions")

	sharedDash, err := client.GetSharedDashboard(ctx, bobToken)
	require.NoError(t, err)
	assert.Equal(t, "Welcome to Shared Dashboard - evaluator", sharedDash.Message)

	adminDash, err := client.GetAdminDashboard(ctx, adaToken)
	require.NoError(t, err)
	assert.Equal(t, "admin", adminDash.Role)
	assert.Contains(t, adminDash.Features, "User Management")

	// Development-mode claim echo.
	debug, err := client.GetDebugToken(ctx, adaToken)
	require.NoError(t, err)
	assert.Equal(t, "sub_ada", debug.Subject)
	assert.Equal(t, "admin", debug.Claims["role"])
	assert.Equal(t, registered.CompanyID, debug.Claims["companyId"])
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	client, _ := newTestServer(t)
	ctx := t.Context()

	_, err := client.GetProfile(ctx, "")
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))

	_, err = client.CreateInvitation(ctx, "", qbanksdk.CreateInvitationRequest{
		Email: "x@example.com",
		Role:  "evaluator",
	})
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))

	_, err = client.GetAdminDashboard(ctx, "")
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
}

func TestInvitationPolicyEnforcement(t *testing.T) {
	client, idp := newTestServer(t)
	ctx := t.Context()

	// Provision a company with an admin, then a candidate via invitation.
	_, err := client.RegisterCompany(ctx, qbanksdk.RegisterCompanyRequest{
		CompanyName: "Acme",
		AdminEmail:  "ada@acme.example",
		IDToken:     idp.mintToken(t, "sub_ada"),
	})
	require.NoError(t, err)
	adaToken := idp.mintToken(t, "sub_ada")

	created, err := client.CreateInvitation(ctx, adaToken, qbanksdk.CreateInvitationRequest{
		Email: "carl@acme.example",
		Role:  "candidate",
	})
	require.NoError(t, err)

	_, err = client.AcceptInvitation(ctx, qbanksdk.AcceptInvitationRequest{
		Token:   created.InvitationToken,
		IDToken: idp.mintToken(t, "sub_carl"),
	})
	require.NoError(t, err)

	// Candidates cannot mint invitations.
	carlToken := idp.mintToken(t, "sub_carl")
	_, err = client.CreateInvitation(ctx, carlToken, qbanksdk.CreateInvitationRequest{
		Email: "friend@acme.example",
		Role:  "candidate",
	})
	assert.Equal(t, http.StatusForbidden, apiStatus(t, err))

	// Nobody can invite an admin.
	_, err = client.CreateInvitation(ctx, adaToken, qbanksdk.CreateInvitationRequest{
		Email: "boss@acme.example",
		Role:  "admin",
	})
	assert.Equal(t, http.StatusBadRequest, apiStatus(t, err))

	// Candidates still reach the shared dashboard.
	shared, err := client.GetSharedDashboard(ctx, carlToken)
	require.NoError(t, err)
	assert.Equal(t, "candidate", shared.Role)
}

func TestRegisterCompanyConflicts(t *testing.T) {
	client, idp := newTestServer(t)
	ctx := t.Context()

	_, err := client.RegisterCompany(ctx, qbanksdk.RegisterCompanyRequest{
		CompanyName: "Acme",
		AdminEmail:  "ada@acme.example",
		IDToken:     idp.mintToken(t, "sub_ada"),
	})
	require.NoError(t, err)

	// Duplicate company name.
	_, err = client.RegisterCompany(ctx, qbanksdk.RegisterCompanyRequest{
		CompanyName: "Acme",
		AdminEmail:  "bea@other.example",
		IDToken:     idp.mintToken(t, "sub_bea"),
	})
	assert.Equal(t, http.StatusConflict, apiStatus(t, err))

	// Already-provisioned subject.
	_, err = client.RegisterCompany(ctx, qbanksdk.RegisterCompanyRequest{
		CompanyName: "Globex",
		AdminEmail:  "ada@globex.example",
		IDToken:     idp.mintToken(t, "sub_ada"),
	})
	assert.Equal(t, http.StatusConflict, apiStatus(t, err))

	// Garbage ID token.
	_, err = client.RegisterCompany(ctx, qbanksdk.RegisterCompanyRequest{
		CompanyName: "Initech",
		AdminEmail:  "carol@initech.example",
		IDToken:     "not-a-jwt",
	})
	assert.Equal(t, http.StatusUnauthorized, apiStatus(t, err))
}
