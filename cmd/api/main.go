package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hemverk/order-api/docs"
	"github.com/hemverk/order-api/internal/auth"
	"github.com/hemverk/order-api/internal/config"
	"github.com/hemverk/order-api/internal/database"
	"github.com/hemverk/order-api/internal/http/handler"
	"github.com/hemverk/order-api/internal/http/middleware"
	"github.com/hemverk/order-api/internal/http/router"
	"github.com/hemverk/order-api/internal/jobs"
	"github.com/hemverk/order-api/internal/ledger"
	"github.com/hemverk/order-api/internal/logger"
	"github.com/hemverk/order-api/internal/pricing"
	"github.com/hemverk/order-api/internal/repository"
	"github.com/hemverk/order-api/internal/service"
	"github.com/hemverk/order-api/internal/storage"
	"go.uber.org/zap"
)

// @title Hemverk Order API
// @version 1.0
// @description Order-to-cash API for home services: bookings, quotes, jobs and invoices with ROT/RUT pricing
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@hemverk.se

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key
// @description API Key for system operations
// @Security BearerAuth
// @Security ApiKeyAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "order-api-staging.hemverk.se"
	case "production":
		docs.SwaggerInfo.Host = "api.hemverk.se"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database with retry logic
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize document storage for rendered quote/invoice snapshots
	docStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// Initialize accounting ledger connection (optional, read-only).
	// Payment sync degrades gracefully without it.
	var ledgerClient *ledger.Client
	if cfg.Ledger.Enabled {
		ledgerClient, err = ledger.NewClient(&cfg.Ledger, log)
		if err != nil {
			log.Warn("Ledger connection failed, continuing without payment sync",
				zap.Error(err),
			)
		} else if ledgerClient != nil {
			log.Info("Ledger connected",
				zap.Int("query_timeout_seconds", cfg.Ledger.QueryTimeout),
			)
		}
	} else {
		log.Info("Ledger not configured, payment sync disabled")
	}

	// Initialize repositories
	bookingRepo := repository.NewBookingRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	addonRepo := repository.NewServiceAddonRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	jobRepo := repository.NewJobRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	numberSequenceRepo := repository.NewNumberSequenceRepository(db)

	// Pricing engine with the statutory ROT/RUT policy
	engine := pricing.NewEngine(nil)

	// Dispatcher with document archiving on send
	archive := service.NewDocumentArchive(docStorage, log)
	dispatcher := service.NewArchivingDispatcher(
		service.NewDispatcher(&cfg.Dispatch, log),
		archive,
		log,
	)

	tokens := auth.NewTokenManager(&cfg.Auth)

	// Initialize services
	bookingService := service.NewBookingService(bookingRepo, serviceRepo, addonRepo, customerRepo, activityRepo, engine, log)
	catalogService := service.NewCatalogService(serviceRepo, addonRepo, log)
	customerService := service.NewCustomerService(customerRepo, bookingRepo, log)
	quoteService := service.NewQuoteService(quoteRepo, bookingRepo, jobRepo, activityRepo, numberSequenceRepo, engine, dispatcher, cfg.Billing.QuoteValidityDays, log)
	jobService := service.NewJobService(jobRepo, staffRepo, activityRepo, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, quoteRepo, jobRepo, activityRepo, numberSequenceRepo, engine, dispatcher, &cfg.Billing, log)
	orderService := service.NewOrderService(bookingRepo, quoteRepo, jobRepo, invoiceRepo, log)
	staffService := service.NewStaffService(staffRepo, tokens, log)
	activityService := service.NewActivityService(activityRepo, log)

	// Initialize middleware
	authMiddleware := auth.NewMiddleware(cfg, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(staffService, log)
	bookingHandler := handler.NewBookingHandler(bookingService, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, log)
	jobHandler := handler.NewJobHandler(jobService, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, log)
	orderHandler := handler.NewOrderHandler(orderService, log)
	catalogHandler := handler.NewCatalogHandler(catalogService, log)
	customerHandler := handler.NewCustomerHandler(customerService, log)
	publicHandler := handler.NewPublicHandler(quoteService, invoiceService, log)
	activityHandler := handler.NewActivityHandler(activityService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		ledgerClient,
		authMiddleware,
		rateLimiter,
		authHandler,
		bookingHandler,
		quoteHandler,
		jobHandler,
		invoiceHandler,
		orderHandler,
		catalogHandler,
		customerHandler,
		publicHandler,
		activityHandler,
	)

	// Initialize and start scheduler for background jobs
	scheduler := jobs.NewScheduler(log)

	overdueJob := jobs.NewOverdueNotifierJob(invoiceService, quoteService, dispatcher, log, cfg.Server.RequestTimeoutDuration())
	if err := scheduler.AddJob(jobs.OverdueNotifierJobName, cfg.Jobs.OverdueNotifierCron, overdueJob.Run); err != nil {
		log.Error("Failed to register overdue notifier job", zap.Error(err))
	}

	if ledgerClient != nil && ledgerClient.IsEnabled() {
		syncJob := jobs.NewLedgerSyncJob(ledgerClient, invoiceService, log, cfg.Ledger.QueryTimeoutDuration())
		if err := scheduler.AddJob(jobs.LedgerSyncJobName, cfg.Jobs.LedgerSyncCron, syncJob.Run); err != nil {
			log.Error("Failed to register ledger sync job", zap.Error(err))
		}
	}

	scheduler.Start()
	log.Info("Scheduler started",
		zap.Strings("jobs", scheduler.GetJobNames()),
		zap.String("overdue_cron", cfg.Jobs.OverdueNotifierCron),
		zap.String("ledger_sync_cron", cfg.Jobs.LedgerSyncCron),
	)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler and wait for running jobs
		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		log.Info("Scheduler stopped")

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if ledgerClient != nil {
			if err := ledgerClient.Close(); err != nil {
				log.Warn("Error closing ledger connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
