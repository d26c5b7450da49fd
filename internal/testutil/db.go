package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter int64

// SetupTestDB creates an in-memory SQLite database with the full schema
// migrated. Each call gets its own database, so tests can run in parallel
// without cleaning up after each other.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := atomic.AddInt64(&dbCounter, 1)
	dsn := fmt.Sprintf("file:order_test_%d?mode=memory&cache=shared", n)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory sqlite database")

	err = db.AutoMigrate(
		&domain.Customer{},
		&domain.Service{},
		&domain.ServiceAddon{},
		&domain.Booking{},
		&domain.BookingAddon{},
		&domain.Quote{},
		&domain.QuoteLineItem{},
		&domain.Job{},
		&domain.JobAssignment{},
		&domain.TimeLog{},
		&domain.MaterialLog{},
		&domain.ExpenseLog{},
		&domain.Invoice{},
		&domain.InvoiceLineItem{},
		&domain.NumberSequence{},
		&domain.Staff{},
		&domain.ActivityLog{},
	)
	require.NoError(t, err, "failed to migrate test schema")

	return db
}

// CreateTestCustomer creates a customer and returns it
func CreateTestCustomer(t *testing.T, db *gorm.DB, name string) *domain.Customer {
	t.Helper()

	customer := &domain.Customer{
		Name:  name,
		Type:  domain.CustomerTypePrivate,
		Email: fmt.Sprintf("%d@example.se", atomic.AddInt64(&dbCounter, 1)),
		Phone: "070-1234567",
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

// CreateTestService creates an active fixed-price service
func CreateTestService(t *testing.T, db *gorm.DB, title string, basePrice int64) *domain.Service {
	t.Helper()

	svc := &domain.Service{
		Category:    "bygg",
		Title:       title,
		BasePrice:   basePrice,
		PriceType:   domain.PriceTypeFixed,
		RotEligible: true,
		Location:    domain.ServiceLocationIndoor,
		LaborShare:  1.0,
		IsActive:    true,
	}
	require.NoError(t, db.Create(svc).Error)
	return svc
}

// CreateTestAddon creates an active addon under the given service
func CreateTestAddon(t *testing.T, db *gorm.DB, svc *domain.Service, title string, price int64) *domain.ServiceAddon {
	t.Helper()

	addon := &domain.ServiceAddon{
		ServiceID:   svc.ID,
		Title:       title,
		Price:       price,
		RotEligible: true,
		IsActive:    true,
	}
	require.NoError(t, db.Create(addon).Error)
	return addon
}

// CreateTestStaff creates an active staff member with the given role
func CreateTestStaff(t *testing.T, db *gorm.DB, id string, role domain.StaffRole) *domain.Staff {
	t.Helper()

	staff := &domain.Staff{
		ID:           id,
		Email:        fmt.Sprintf("%s@hemverk.se", id),
		DisplayName:  id,
		Role:         role,
		PasswordHash: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
		IsActive:     true,
	}
	require.NoError(t, db.Create(staff).Error)
	return staff
}

// CreateTestBooking creates a confirmed booking for the given service
func CreateTestBooking(t *testing.T, db *gorm.DB, svc *domain.Service) *domain.Booking {
	t.Helper()

	booking := &domain.Booking{
		ServiceID:    &svc.ID,
		ServiceTitle: svc.Title,
		ContactName:  "Anna Andersson",
		ContactEmail: "anna@example.se",
		ContactPhone: "070-7654321",
		Address:      "Storgatan 1",
		PostalCode:   "111 22",
		City:         "Stockholm",
		Mode:         domain.BookingModeStandard,
		PriceType:    svc.PriceType,
		BasePrice:    svc.BasePrice,
		FinalPrice:   svc.BasePrice,
		Status:       domain.BookingStatusNew,
		CreatedBy:    domain.CreatedByGuest,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}
