package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/domain"
	httpapi "github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/http"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/ovpn"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/service"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/store"
	"github.com/nathanprivate2901-devops/vpn-access-manager/internal/vpnaccess/store/drivers/sqlite"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/cryptox"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/jwtx"
	"github.com/nathanprivate2901-devops/vpn-access-manager/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the VPN access manager with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	external ovpn.Client
	verifier jwtx.Verifier

	// Services
	reconciler  *service.Reconciler
	scheduler   *service.Scheduler
	syncService *service.SyncService
	userService *service.UserService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "vpn-access-manager",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.AdminJWTSecret == "" {
		return nil, errors.New("ADMIN_JWT_SECRET must be set")
	}
	app.verifier = jwtx.HS256{
		Secret: []byte(cfg.AdminJWTSecret),
		Issuer: cfg.AdminJWTIssuer,
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.external = ovpn.NewSacliClient(ovpn.SacliConfig{
		DockerBin: cfg.DockerBin,
		Container: cfg.VPNContainer,
		SacliPath: cfg.SacliPath,
		Timeout:   cfg.SacliTimeout,
	})

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.cfg.SyncOnStartup {
		app.startupSync()
	}

	if app.cfg.SyncStartScheduler {
		app.scheduler.Start()
	}

	app.logger.Info("vpn access manager starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"container", app.cfg.VPNContainer,
	)

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

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down vpn access manager...")

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

	// Disarm the sync timer. An in-flight run finishes on its own.
	app.scheduler.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("vpn access manager stopped")
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

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.reconciler = &service.Reconciler{
		Store:    app.db,
		External: app.external,
	}

	app.scheduler = service.NewScheduler(
		app.reconciler,
		app.logger,
		app.cfg.SyncIntervalMinutes,
		app.cfg.SyncHistoryLimit,
	)
	app.scheduler.ScheduledOptions = domain.SyncOptions{
		DeleteOrphaned: app.cfg.SyncDeleteOrphaned,
	}

	app.syncService = &service.SyncService{
		Reconciler: app.reconciler,
		Scheduler:  app.scheduler,
	}
	app.userService = &service.UserService{
		Store:      app.db,
		Reconciler: app.reconciler,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.verifier,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.SyncService = app.syncService
	router.Scheduler = app.scheduler
	router.UserService = app.userService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// startupSync runs one reconciliation before the server accepts traffic. An
// unreachable VPN container is logged, not fatal: the scheduler retries.
func (app *Application) startupSync() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = slogx.WithContext(ctx, app.logger)

	run, err := app.scheduler.RunNow(ctx, domain.SyncOptions{
		DeleteOrphaned: app.cfg.SyncDeleteOrphaned,
	})
	if err != nil {
		app.logger.Error("startup sync failed", "error", err)
		return
	}

	app.logger.Info("startup sync complete",
		"created", len(run.Created),
		"updated", len(run.Updated),
		"deleted", len(run.Deleted),
		"skipped", len(run.Skipped),
		"errors", len(run.Errors),
	)
}
