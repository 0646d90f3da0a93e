// Package metrics collects and exposes Prometheus metrics for the service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/qbankhq/qbank/pkg/httpx"
)

// Recorder is the metrics surface the service layer uses.
type Recorder interface {
	RecordCompanyRegistered()
	RecordInvitationCreated(role string)
	RecordInvitationAccepted(role string)
	RecordClaimsPropagationFailure()
}

// Collector implements Recorder backed by Prometheus.
type Collector struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	companies     prometheus.Counter
	invCreated    *prometheus.CounterVec
	invAccepted   *prometheus.CounterVec
	claimsFailure prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics on reg.
func NewCollector(reg *prometheus.Registry) *Collector {
	c := &Collector{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qbank_http_requests_total",
			Help: "HTTP requests by method, route pattern and status code",
		}, []string{"method", "pattern", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "qbank_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern",
			Buckets: prometheus.DefBuckets,
		}, []string{"pattern"}),
		companies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qbank_companies_registered_total",
			Help: "Companies successfully registered",
		}),
		invCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qbank_invitations_created_total",
			Help: "Invitations minted by role",
		}, []string{"role"}),
		invAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qbank_invitations_accepted_total",
			Help: "Invitations accepted by role",
		}, []string{"role"}),
		claimsFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qbank_claims_propagation_failures_total",
			Help: "Failed attempts to store custom claims at the identity provider",
		}),
	}

	reg.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.companies,
		c.invCreated,
		c.invAccepted,
		c.claimsFailure,
	)

	return c
}

// Gatherer exposes the underlying registry for the scrape handler.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// RecordCompanyRegistered counts a successful company registration.
func (c *Collector) RecordCompanyRegistered() {
	c.companies.Inc()
}

// RecordInvitationCreated counts a minted invitation.
func (c *Collector) RecordInvitationCreated(role string) {
	c.invCreated.WithLabelValues(role).Inc()
}

// RecordInvitationAccepted counts an accepted invitation.
func (c *Collector) RecordInvitationAccepted(role string) {
	c.invAccepted.WithLabelValues(role).Inc()
}

// RecordClaimsPropagationFailure counts a failed custom-claims write.
func (c *Collector) RecordClaimsPropagationFailure() {
	c.claimsFailure.Inc()
}

// Middleware records request counts and latency per route pattern. Uses
// r.Pattern so path parameters do not explode label cardinality.
func (c *Collector) Middleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			pattern := r.Pattern
			if pattern == "" {
				pattern = "unmatched"
			}
			c.httpRequests.WithLabelValues(r.Method, pattern, strconv.Itoa(sw.status)).Inc()
			c.httpDuration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Handler returns the Prometheus scrape handler.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
