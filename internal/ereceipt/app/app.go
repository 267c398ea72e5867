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

	httpapi "github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/http"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/service"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/internal/ereceipt/store/drivers/sqlite"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/jwtx"
	"github.com/osamaalamer2012-cmyk/ereceipt-db-only/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the e-receipt service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db   store.Store
	ring *jwtx.KeyRing

	tokenService     *service.TokenService
	rateLimitService *service.RateLimitService
	shortenerService *service.ShortenerService
	receiptService   *service.ReceiptService
	otpService       *service.OTPService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "ereceipt-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ring, err := buildKeyRing(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build signing key ring: %w", err)
	}
	app.ring = ring

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("ereceipt service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"active_kid", app.ring.ActiveKID(),
		"demo_mode", app.cfg.DemoMode,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down ereceipt service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("ereceipt service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		app.cfg.DatabaseFile,
	)
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

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Ring:     app.ring,
		Issuer:   app.cfg.Issuer,
		Audience: app.cfg.Audience,
		TTL:      app.cfg.TokenTTL,
		Leeway:   app.cfg.TokenLeeway,
	}

	app.rateLimitService = &service.RateLimitService{Store: app.db.RateLimits()}

	app.shortenerService = &service.ShortenerService{
		Store:   app.db.ShortLinks(),
		Limiter: app.rateLimitService,
		BaseURL: app.cfg.PublicBaseURL,
		CodeLen: app.cfg.CodeLength,
		AnonMax: app.cfg.AnonPerHour,
	}

	notifier := service.LogNotifier{}

	app.receiptService = &service.ReceiptService{
		Store:       app.db.Receipts(),
		Tokens:      app.tokenService,
		Shortener:   app.shortenerService,
		Notifier:    notifier,
		ViewBaseURL: app.cfg.ViewBaseURL,
		TTL:         app.cfg.ReceiptTTL,
		MaxUses:     app.cfg.ReceiptMaxUses,
	}

	app.otpService = &service.OTPService{
		Receipts: app.db.Receipts(),
		Codes:    app.db.OTPCodes(),
		Tokens:   app.tokenService,
		Limiter:  app.rateLimitService,
		Notifier: notifier,
		DemoMode: app.cfg.DemoMode,
	}
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.db, app.logger)

	router.ReceiptService = app.receiptService
	router.OTPService = app.otpService
	router.ShortenerService = app.shortenerService
	router.TokenService = app.tokenService
	router.AdminKey = app.cfg.AdminKey
	router.LinkTTL = app.cfg.LinkTTL
	router.LinkMaxUses = app.cfg.LinkMaxUses
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
