package service

import (
	"context"
	"testing"

	"github.com/hemverk/order-api/internal/auth"
	"github.com/hemverk/order-api/internal/config"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/pricing"
	"github.com/hemverk/order-api/internal/repository"
	"github.com/hemverk/order-api/internal/testutil"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fixture wires the full service graph against an in-memory database
type fixture struct {
	db *gorm.DB

	bookingRepo *repository.BookingRepository
	quoteRepo   *repository.QuoteRepository
	jobRepo     *repository.JobRepository
	invoiceRepo *repository.InvoiceRepository
	staffRepo   *repository.StaffRepository

	bookings  *BookingService
	quotes    *QuoteService
	jobs      *JobService
	invoices  *InvoiceService
	catalog   *CatalogService
	customers *CustomerService
	staff     *StaffService
	orders    *OrderService
	activity  *ActivityService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	log := zap.NewNop()

	bookingRepo := repository.NewBookingRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	addonRepo := repository.NewServiceAddonRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	jobRepo := repository.NewJobRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	numberSeq := repository.NewNumberSequenceRepository(db)

	tokens := auth.NewTokenManager(&config.AuthConfig{
		JWTSecret:       "test-secret",
		Issuer:          "order-api-test",
		TokenTTLMinutes: 60,
	})
	engine := pricing.NewEngine(nil)
	dispatcher := NewLoggingDispatcher(log)
	billing := &config.BillingConfig{
		QuoteValidityDays: 30,
		InvoiceDueDays:    30,
		VATPercent:        25,
	}

	return &fixture{
		db:          db,
		bookingRepo: bookingRepo,
		quoteRepo:   quoteRepo,
		jobRepo:     jobRepo,
		invoiceRepo: invoiceRepo,
		staffRepo:   staffRepo,
		bookings:    NewBookingService(bookingRepo, serviceRepo, addonRepo, customerRepo, activityRepo, engine, log),
		quotes:      NewQuoteService(quoteRepo, bookingRepo, jobRepo, activityRepo, numberSeq, engine, dispatcher, billing.QuoteValidityDays, log),
		jobs:        NewJobService(jobRepo, staffRepo, activityRepo, log),
		invoices:    NewInvoiceService(invoiceRepo, quoteRepo, jobRepo, activityRepo, numberSeq, engine, dispatcher, billing, log),
		catalog:     NewCatalogService(serviceRepo, addonRepo, log),
		customers:   NewCustomerService(customerRepo, bookingRepo, log),
		staff:       NewStaffService(staffRepo, tokens, log),
		orders:      NewOrderService(bookingRepo, quoteRepo, jobRepo, invoiceRepo, log),
		activity:    NewActivityService(activityRepo, log),
	}
}

func adminContext() context.Context {
	return auth.WithStaffContext(context.Background(), &auth.StaffContext{
		StaffID:     "admin-1",
		DisplayName: "Admin Andersson",
		Email:       "admin@hemverk.se",
		Role:        domain.RoleAdmin,
	})
}

func workerContext(workerID string) context.Context {
	return auth.WithStaffContext(context.Background(), &auth.StaffContext{
		StaffID:     workerID,
		DisplayName: "Worker " + workerID,
		Email:       workerID + "@hemverk.se",
		Role:        domain.RoleWorker,
	})
}
