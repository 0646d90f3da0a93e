package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/qbankhq/qbank/internal/qbank/identity"
	"github.com/qbankhq/qbank/internal/qbank/metrics"
	"github.com/qbankhq/qbank/internal/qbank/service"
	"github.com/qbankhq/qbank/internal/qbank/store"
	"github.com/qbankhq/qbank/pkg/httpx"
	"github.com/qbankhq/qbank/pkg/jwtx"
	"github.com/qbankhq/qbank/pkg/slogx"

	_ "github.com/qbankhq/qbank/api/qbank" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	devMode      bool

	store    store.Store
	identity identity.Provider
	metrics  *metrics.Collector

	CompanyService    *service.CompanyService
	UserService       *service.UserService
	InvitationService *service.InvitationService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	idp identity.Provider,
	collector *metrics.Collector,
	logger *slog.Logger,
	devMode bool,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		identity:     idp,
		metrics:      collector,
		logger:       logger,
		devMode:      devMode,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		collector.Middleware(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerCompany()
	r.registerInvitations()
	r.registerDashboards()
	r.registerSystem()

	if r.devMode {
		r.registerDebug()
	}

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Question Bank Provisioning API
//	@version		0.1.0
//	@description	Multi-tenant provisioning service for the question bank platform. Handles
//	@description	company registration, role invitations and claim propagation to the
//	@description	external identity provider. Credentials never touch this service.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Identity provider access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerCompany() {
	registerHandler := &CompanyRegisterHandler{CompanyService: r.CompanyService}
	profileHandler := &CompanyProfileHandler{UserService: r.UserService}

	// POST /company/register - public provisioning endpoint, strict by IP
	r.Mux.Handle("POST /company/register",
		httpx.Chain(registerHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /company/profile - authenticated read, lenient by subject
	r.Mux.Handle("GET /company/profile",
		httpx.Chain(profileHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.ClaimsAugmentation(),
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerInvitations() {
	createHandler := &InvitationCreateHandler{InvitationService: r.InvitationService}
	verifyHandler := &InvitationVerifyHandler{InvitationService: r.InvitationService}
	acceptHandler := &InvitationAcceptHandler{InvitationService: r.InvitationService}

	// POST /invitation/create - evaluators and admins only, moderate by subject
	r.Mux.Handle("POST /invitation/create",
		httpx.Chain(createHandler,
			httpx.AuthnMiddleware(r.verifier),
			httpx.ClaimsAugmentation(),
			httpx.RequirePolicy(httpx.EvaluatorOrAdmin),
			httpx.RateLimitBySubject(httpx.ModerateLimit),
		),
	)

	// GET /invitation/verify/{token} - public read, high limit
	r.Mux.Handle("GET /invitation/verify/{token}",
		httpx.Chain(verifyHandler,
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)

	// POST /invitation/accept - public provisioning endpoint, strict by IP
	r.Mux.Handle("POST /invitation/accept",
		httpx.Chain(acceptHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerDashboards() {
	secured := func(h http.Handler, policy httpx.Policy) http.Handler {
		return httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.ClaimsAugmentation(),
			httpx.RequirePolicy(policy),
			httpx.RateLimitBySubject(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /admin/dashboard", secured(AdminDashboardHandler(), httpx.AdminOnly))
	r.Mux.Handle("GET /evaluator/dashboard", secured(EvaluatorDashboardHandler(), httpx.EvaluatorOrAdmin))
	r.Mux.Handle("GET /shared/dashboard", secured(SharedDashboardHandler(), httpx.AnyRole))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.identity),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /metrics", metrics.Handler(r.metrics.Gatherer()))
}

func (r *Router) registerDebug() {
	// GET /debug/token - echoes extracted claims, development aid only
	r.Mux.Handle("GET /debug/token",
		httpx.Chain(DebugTokenHandler(),
			httpx.AuthnMiddleware(r.verifier),
			httpx.ClaimsAugmentation(),
			httpx.RateLimitBySubject(httpx.LenientLimit),
		),
	)
}
