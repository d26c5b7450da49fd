package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hemverk/order-api/internal/auth"
	"github.com/hemverk/order-api/internal/config"
	"github.com/hemverk/order-api/internal/database"
	"github.com/hemverk/order-api/internal/http/handler"
	"github.com/hemverk/order-api/internal/http/middleware"
	"github.com/hemverk/order-api/internal/ledger"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/hemverk/order-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg             *config.Config
	logger          *zap.Logger
	db              *gorm.DB
	ledgerClient    *ledger.Client
	authMiddleware  *auth.Middleware
	rateLimiter     *middleware.RateLimiter
	authHandler     *handler.AuthHandler
	bookingHandler  *handler.BookingHandler
	quoteHandler    *handler.QuoteHandler
	jobHandler      *handler.JobHandler
	invoiceHandler  *handler.InvoiceHandler
	orderHandler    *handler.OrderHandler
	catalogHandler  *handler.CatalogHandler
	customerHandler *handler.CustomerHandler
	publicHandler   *handler.PublicHandler
	activityHandler *handler.ActivityHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	ledgerClient *ledger.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	bookingHandler *handler.BookingHandler,
	quoteHandler *handler.QuoteHandler,
	jobHandler *handler.JobHandler,
	invoiceHandler *handler.InvoiceHandler,
	orderHandler *handler.OrderHandler,
	catalogHandler *handler.CatalogHandler,
	customerHandler *handler.CustomerHandler,
	publicHandler *handler.PublicHandler,
	activityHandler *handler.ActivityHandler,
) *Router {
	return &Router{
		cfg:             cfg,
		logger:          logger,
		db:              db,
		ledgerClient:    ledgerClient,
		authMiddleware:  authMiddleware,
		rateLimiter:     rateLimiter,
		authHandler:     authHandler,
		bookingHandler:  bookingHandler,
		quoteHandler:    quoteHandler,
		jobHandler:      jobHandler,
		invoiceHandler:  invoiceHandler,
		orderHandler:    orderHandler,
		catalogHandler:  catalogHandler,
		customerHandler: customerHandler,
		publicHandler:   publicHandler,
		activityHandler: activityHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// The ledger is optional and read-only, so an unhealthy ledger
		// degrades payment sync without failing readiness
		if rt.ledgerClient != nil && rt.ledgerClient.IsEnabled() {
			status := rt.ledgerClient.HealthCheck(r.Context())
			checks["ledger"] = map[string]interface{}{
				"status":     status.Status,
				"latency_ms": status.Latency.Milliseconds(),
				"error":      status.Error,
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth, rate limited per IP)
		r.Group(func(r chi.Router) {
			r.Use(rt.rateLimiter.LimitByIP)

			r.Post("/auth/login", rt.authHandler.Login)
			r.Get("/services", rt.catalogHandler.ListServices)
			r.Get("/services/{id}", rt.catalogHandler.GetService)
			r.Get("/services/{id}/addons", rt.catalogHandler.ListAddons)

			r.Route("/public", func(r chi.Router) {
				r.Post("/bookings", rt.bookingHandler.Create)
				r.Post("/price", rt.bookingHandler.ComputePrice)
				r.Get("/quotes/{number}/{token}", rt.publicHandler.GetQuote)
				r.Post("/quotes/{number}/{token}/accept", rt.publicHandler.AcceptQuote)
				r.Get("/invoices/{token}", rt.publicHandler.GetInvoice)
			})
		})

		// Protected routes, rate limited per staff member
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Staff administration
			r.Route("/staff", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Get("/", rt.authHandler.ListStaff)
				r.Post("/", rt.authHandler.CreateStaff)
				r.Put("/{id}", rt.authHandler.UpdateStaff)
			})

			// Bookings
			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", rt.bookingHandler.List)
				r.Get("/unseen-count", rt.bookingHandler.UnseenCount)
				r.Get("/recent", rt.bookingHandler.Recent)
				r.Get("/{id}", rt.bookingHandler.GetByID)
				r.Post("/{id}/seen", rt.bookingHandler.MarkSeen)
				r.Post("/{id}/confirm", rt.bookingHandler.Confirm)
				r.Post("/{id}/complete", rt.bookingHandler.Complete)
				r.Post("/{id}/cancel", rt.bookingHandler.Cancel)
				r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", rt.bookingHandler.Delete)
			})

			// Quotes
			r.Route("/quotes", func(r chi.Router) {
				r.Get("/", rt.quoteHandler.List)
				r.Post("/", rt.quoteHandler.Create)
				r.Get("/{id}", rt.quoteHandler.GetByID)
				r.Put("/{id}/line-items", rt.quoteHandler.UpdateLineItems)
				r.Put("/{id}/notes", rt.quoteHandler.UpdateNotes)
				r.Post("/{id}/send", rt.quoteHandler.Send)
				r.Post("/{id}/accept", rt.quoteHandler.Accept)
				r.Post("/{id}/reject", rt.quoteHandler.Reject)
			})

			// Jobs
			r.Route("/jobs", func(r chi.Router) {
				r.Get("/", rt.jobHandler.List)
				r.Get("/mine", rt.jobHandler.ListMine)
				r.Get("/{id}", rt.jobHandler.GetByID)
				r.Post("/{id}/assign", rt.jobHandler.Assign)
				r.Post("/{id}/timer/start", rt.jobHandler.StartTimer)
				r.Post("/{id}/timer/stop", rt.jobHandler.StopTimer)
				r.Post("/{id}/timer/pause", rt.jobHandler.PauseTimer)
				r.Post("/{id}/time", rt.jobHandler.AddManualTime)
				r.Post("/{id}/materials", rt.jobHandler.AddMaterial)
				r.Post("/{id}/expenses", rt.jobHandler.AddExpense)
				r.Post("/{id}/complete", rt.jobHandler.Complete)
			})

			// Invoices
			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", rt.invoiceHandler.List)
				r.Post("/from-quote", rt.invoiceHandler.CreateFromQuote)
				r.Post("/from-job", rt.invoiceHandler.CreateFromJob)
				r.Get("/{id}", rt.invoiceHandler.GetByID)
				r.Post("/{id}/send", rt.invoiceHandler.Send)
				r.Post("/{id}/paid", rt.invoiceHandler.MarkPaid)
				r.Post("/{id}/cancel", rt.invoiceHandler.Cancel)
				r.Put("/{id}/note", rt.invoiceHandler.UpdateAdminNote)
			})

			// Orders (assembled view across the chain)
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", rt.orderHandler.List)
				r.Get("/{id}", rt.orderHandler.Get)
			})

			// Catalog administration
			r.Group(func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Post("/services", rt.catalogHandler.CreateService)
				r.Put("/services/reorder", rt.catalogHandler.ReorderServices)
				r.Put("/services/{id}", rt.catalogHandler.UpdateService)
				r.Delete("/services/{id}", rt.catalogHandler.DeleteService)
				r.Post("/services/{id}/addons", rt.catalogHandler.CreateAddon)
				r.Put("/addons/{id}", rt.catalogHandler.UpdateAddon)
			})

			// Customers
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rt.customerHandler.List)
				r.Post("/", rt.customerHandler.Create)
				r.Get("/{id}", rt.customerHandler.GetByID)
				r.Put("/{id}", rt.customerHandler.Update)
				r.With(rt.authMiddleware.RequireAdmin).Delete("/{id}", rt.customerHandler.Delete)
				r.Get("/{id}/bookings", rt.customerHandler.Bookings)
			})

			// Activity history
			r.Get("/activity/{targetType}/{targetId}", rt.activityHandler.ListByTarget)
		})
	})

	return r
}
