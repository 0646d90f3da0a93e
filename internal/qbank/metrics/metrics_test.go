package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordCompanyRegistered()
	c.RecordCompanyRegistered()
	c.RecordInvitationCreated("evaluator")
	c.RecordInvitationAccepted("evaluator")
	c.RecordClaimsPropagationFailure()

	assert.Equal(t, float64(2), testutil.ToFloat64(c.companies))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.invCreated.WithLabelValues("evaluator")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.invAccepted.WithLabelValues("evaluator")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.claimsFailure))
}

func TestMiddlewareRecordsPattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	mux := http.NewServeMux()
	mux.Handle("GET /invitation/verify/{token}", c.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})))

	req := httptest.NewRequest(http.MethodGet, "/invitation/verify/abc123", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	count := testutil.ToFloat64(c.httpRequests.WithLabelValues(http.MethodGet, "GET /invitation/verify/{token}", "404"))
	assert.Equal(t, float64(1), count)
}

func TestHandlerServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordCompanyRegistered()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "qbank_companies_registered_total 1")
}
