package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The schema must migrate model by model on sqlite. Dialect-specific column
// defaults belong in the SQL migrations, not in the gorm tags, or this breaks.
func TestSchemaMigratesPerModel(t *testing.T) {
	db := SetupTestDB(t)

	for _, model := range []interface{}{
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
	} {
		require.NoError(t, db.AutoMigrate(model), "model %T must migrate on sqlite", model)
	}
}

func TestCreateAssignsUUIDs(t *testing.T) {
	db := SetupTestDB(t)

	customer := CreateTestCustomer(t, db, "Anna Andersson")
	assert.NotEqual(t, uuid.Nil, customer.ID)

	svc := CreateTestService(t, db, "Fönsterputs", 1200)
	assert.NotEqual(t, uuid.Nil, svc.ID)

	addon := CreateTestAddon(t, db, svc, "Balkongdörrar", 200)
	assert.NotEqual(t, uuid.Nil, addon.ID)

	booking := CreateTestBooking(t, db, svc)
	assert.NotEqual(t, uuid.Nil, booking.ID)

	// Models without BaseModel assign their IDs through their own hooks.
	ba := &domain.BookingAddon{BookingID: booking.ID, AddonID: addon.ID, Title: addon.Title, UnitPrice: addon.Price, Quantity: 1}
	require.NoError(t, db.Create(ba).Error)
	assert.NotEqual(t, uuid.Nil, ba.ID)

	seq := &domain.NumberSequence{Kind: domain.SequenceKindQuote, Year: 2026, LastSequence: 1}
	require.NoError(t, db.Create(seq).Error)
	assert.NotEqual(t, uuid.Nil, seq.ID)
}
