package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedQuoteWithLine(t *testing.T, db *gorm.DB, status domain.QuoteStatus) *domain.Quote {
	t.Helper()

	svc := testutil.CreateTestService(t, db, "Trädgårdsarbete", 2000)
	booking := testutil.CreateTestBooking(t, db, svc)

	quote := &domain.Quote{
		BookingID:       booking.ID,
		Status:          status,
		SubtotalWorkSEK: 2000,
		TotalSEK:        2000,
		PublicToken:     "tok-" + booking.ID.String(),
		LineItems: []domain.QuoteLineItem{{
			Description:       svc.Title,
			Kind:              domain.LineItemKindWork,
			Quantity:          1,
			UnitPrice:         2000,
			Total:             2000,
			DeductionEligible: true,
		}},
	}
	require.NoError(t, db.Create(quote).Error)
	return quote
}

func TestReplaceLineItemsGuardsAgainstStaleStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewQuoteRepository(db)
	ctx := context.Background()

	quote := seedQuoteWithLine(t, db, domain.QuoteStatusAccepted)

	replacement := []domain.QuoteLineItem{{
		Description: "Trädgårdsarbete, utökat",
		Kind:        domain.LineItemKindWork,
		Quantity:    2,
		UnitPrice:   2000,
		Total:       4000,
	}}
	totals := map[string]interface{}{
		"subtotal_work_sek": int64(4000),
		"total_sek":         int64(4000),
		"updated_at":        time.Now().UTC(),
	}

	// The caller read the quote as sent, but the customer accepted it in the
	// meantime. Nothing may be written.
	affected, err := repo.ReplaceLineItems(ctx, quote.ID, domain.QuoteStatusSent, replacement, totals)
	require.NoError(t, err)
	assert.Zero(t, affected)

	reloaded, err := repo.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), reloaded.TotalSEK)
	require.Len(t, reloaded.LineItems, 1)
	assert.Equal(t, "Trädgårdsarbete", reloaded.LineItems[0].Description)

	// Against the actual status the swap lands atomically.
	affected, err = repo.ReplaceLineItems(ctx, quote.ID, domain.QuoteStatusAccepted, replacement, totals)
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	reloaded, err = repo.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4000), reloaded.TotalSEK)
	require.Len(t, reloaded.LineItems, 1)
	assert.Equal(t, "Trädgårdsarbete, utökat", reloaded.LineItems[0].Description)
}
