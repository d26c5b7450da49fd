package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateStatusConditionalGuardsAgainstStaleReads(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	svc := testutil.CreateTestService(t, db, "Fönsterputs", 1200)
	booking := testutil.CreateTestBooking(t, db, svc)

	now := time.Now().UTC()

	// A write conditioned on a status the row no longer has touches nothing.
	affected, err := repo.UpdateStatusConditional(ctx, booking.ID, domain.BookingStatusConfirmed, map[string]interface{}{
		"status":     domain.BookingStatusCompleted,
		"updated_at": now,
	})
	require.NoError(t, err)
	assert.Zero(t, affected)

	reloaded, err := repo.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusNew, reloaded.Status)

	// The same write against the actual status lands exactly once.
	affected, err = repo.UpdateStatusConditional(ctx, booking.ID, domain.BookingStatusNew, map[string]interface{}{
		"status":     domain.BookingStatusConfirmed,
		"updated_at": now,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	// Replaying the transition after it already happened is a no-op, which is
	// what the services map to a concurrent-modification error.
	affected, err = repo.UpdateStatusConditional(ctx, booking.ID, domain.BookingStatusNew, map[string]interface{}{
		"status":     domain.BookingStatusConfirmed,
		"updated_at": now,
	})
	require.NoError(t, err)
	assert.Zero(t, affected)

	reloaded, err = repo.GetByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, reloaded.Status)
}
