package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	httpapi "github.com/qbankhq/qbank/internal/qbank/http"
	"github.com/qbankhq/qbank/internal/qbank/identity"
	"github.com/qbankhq/qbank/internal/qbank/metrics"
	"github.com/qbankhq/qbank/internal/qbank/service"
	"github.com/qbankhq/qbank/internal/qbank/store"
	"github.com/qbankhq/qbank/internal/qbank/store/drivers/sqlite"
	"github.com/qbankhq/qbank/pkg/jwtx"
	"github.com/qbankhq/qbank/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the provisioning service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	identity *identity.Client
	verifier *jwtx.JWKSVerifier
	metrics  *metrics.Collector

	// Services
	companyService      *service.CompanyService
	userService         *service.UserService
	invitationService   *service.InvitationService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "qbank",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initIdentity(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.metrics = metrics.NewCollector(prometheus.NewRegistry())

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("provisioning service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down provisioning service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("provisioning service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initIdentity initializes the identity provider client and the verifier used
// to check provider-issued bearer tokens.
func (app *Application) initIdentity() error {
	app.verifier = &jwtx.JWKSVerifier{
		Keys:     jwtx.NewKeySet(app.cfg.Identity.JWKSURL, app.cfg.Identity.JWKSRefresh),
		Issuer:   app.cfg.Identity.Issuer,
		Audience: app.cfg.Identity.Audience,
	}

	client, err := identity.NewClient(
		app.cfg.Identity.Endpoint,
		app.cfg.Identity.M2MAppID,
		app.cfg.Identity.M2MAppSecret,
		app.verifier,
	)
	if err != nil {
		return fmt.Errorf("failed to initialize identity client: %w", err)
	}
	app.identity = client

	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.companyService = &service.CompanyService{
		Store:    app.db,
		Identity: app.identity,
		Metrics:  app.metrics,
	}
	app.userService = &service.UserService{Store: app.db}
	app.invitationService = &service.InvitationService{
		Store:    app.db,
		Identity: app.identity,
		Metrics:  app.metrics,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.identity,
		app.metrics,
		app.logger,
		app.cfg.DevMode(),
	)

	// Wire services to router
	router.CompanyService = app.companyService
	router.UserService = app.userService
	router.InvitationService = app.invitationService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
