package service

import (
	"context"
	"testing"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingCreate_SnapshotsAddonPrices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	addon := testutil.CreateTestAddon(t, f.db, svc, "Extra rum", 800)

	dto, err := f.bookings.Create(ctx, &domain.CreateBookingRequest{
		ServiceID:    &svc.ID,
		ContactName:  "Anna Andersson",
		ContactEmail: "anna@example.se",
		Addons: []domain.BookingAddonSelection{
			{AddonID: addon.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, dto.Addons, 1)
	assert.Equal(t, int64(800), dto.Addons[0].UnitPrice)
	assert.Equal(t, 2, dto.Addons[0].Quantity)
	assert.Equal(t, int64(6600), dto.FinalPrice)

	// Raising the catalog price must not touch the snapshot
	addon.Price = 1200
	require.NoError(t, f.db.Save(addon).Error)
	svc.BasePrice = 9000
	require.NoError(t, f.db.Save(svc).Error)

	reloaded, err := f.bookings.GetByID(ctx, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(800), reloaded.Addons[0].UnitPrice)
	assert.Equal(t, int64(5000), reloaded.BasePrice)
	assert.Equal(t, int64(6600), reloaded.FinalPrice)
}

func TestBookingCreate_RejectsInactiveService(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Städning", 1500)
	svc.IsActive = false
	require.NoError(t, f.db.Save(svc).Error)

	_, err := f.bookings.Create(context.Background(), &domain.CreateBookingRequest{
		ServiceID:    &svc.ID,
		ContactName:  "Anna Andersson",
		ContactEmail: "anna@example.se",
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestBookingCreate_AddonsRequireService(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	addon := testutil.CreateTestAddon(t, f.db, svc, "Extra rum", 800)

	_, err := f.bookings.Create(context.Background(), &domain.CreateBookingRequest{
		ContactName:  "Anna Andersson",
		ContactEmail: "anna@example.se",
		Addons: []domain.BookingAddonSelection{
			{AddonID: addon.ID, Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestBookingCreate_RejectsAddonFromOtherService(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	other := testutil.CreateTestService(t, f.db, "Städning", 1500)
	foreign := testutil.CreateTestAddon(t, f.db, other, "Fönsterputs", 300)

	_, err := f.bookings.Create(context.Background(), &domain.CreateBookingRequest{
		ServiceID:    &svc.ID,
		ContactName:  "Anna Andersson",
		ContactEmail: "anna@example.se",
		Addons: []domain.BookingAddonSelection{
			{AddonID: foreign.ID, Quantity: 1},
		},
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestBookingCreate_DeduplicatesRepeatedAddonPicks(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	addon := testutil.CreateTestAddon(t, f.db, svc, "Extra rum", 800)

	dto, err := f.bookings.Create(context.Background(), &domain.CreateBookingRequest{
		ServiceID:    &svc.ID,
		ContactName:  "Anna Andersson",
		ContactEmail: "anna@example.se",
		Addons: []domain.BookingAddonSelection{
			{AddonID: addon.ID, Quantity: 1},
			{AddonID: addon.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)
	require.Len(t, dto.Addons, 1)
	assert.Equal(t, 2, dto.Addons[0].Quantity)
}

func TestComputePrice_RotBreakdown(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Badrumsrenovering", 10000)
	svc.LaborShare = 0.6
	require.NoError(t, f.db.Save(svc).Error)

	rot := domain.RotRutTypeROT
	breakdown, err := f.bookings.ComputePrice(context.Background(), &domain.ComputePriceRequest{
		ServiceID:  svc.ID,
		RotRutType: &rot,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(6000), breakdown.SubtotalWork)
	assert.Equal(t, int64(4000), breakdown.SubtotalMaterial)
	assert.Equal(t, int64(1800), breakdown.Deduction)
	assert.Equal(t, int64(8200), breakdown.Total)
	assert.Empty(t, breakdown.Warnings)
}

func TestBookingTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := adminContext()

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	booking := testutil.CreateTestBooking(t, f.db, svc)

	confirmed, err := f.bookings.Confirm(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, confirmed.Status)

	// Confirming twice is an invalid transition
	_, err = f.bookings.Confirm(ctx, booking.ID)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))

	completed, err := f.bookings.Complete(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCompleted, completed.Status)

	// Completed is terminal
	_, err = f.bookings.Cancel(ctx, booking.ID, "")
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
}

func TestBookingMarkSeen_IsIdempotentAndOrthogonal(t *testing.T) {
	f := newFixture(t)
	ctx := adminContext()

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	booking := testutil.CreateTestBooking(t, f.db, svc)

	first, err := f.bookings.MarkSeen(ctx, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, first.SeenAt)
	assert.Equal(t, domain.BookingStatusNew, first.Status)

	again, err := f.bookings.MarkSeen(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.SeenAt, *again.SeenAt)
}

func TestBookingCancel_WithReason(t *testing.T) {
	f := newFixture(t)
	ctx := adminContext()

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	booking := testutil.CreateTestBooking(t, f.db, svc)

	cancelled, err := f.bookings.Cancel(ctx, booking.ID, "Kunden ångrade sig")
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
}

func TestBookingUnseenCount(t *testing.T) {
	f := newFixture(t)
	ctx := adminContext()

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	b1 := testutil.CreateTestBooking(t, f.db, svc)
	testutil.CreateTestBooking(t, f.db, svc)

	count, err := f.bookings.UnseenCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = f.bookings.MarkSeen(ctx, b1.ID)
	require.NoError(t, err)

	count, err = f.bookings.UnseenCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestBookingUnseenCount_OnlyNewRequestsCount(t *testing.T) {
	f := newFixture(t)
	ctx := adminContext()

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	booking := testutil.CreateTestBooking(t, f.db, svc)

	// Confirming without acknowledging leaves seen_at null, but the request
	// no longer needs attention and must drop out of the badge and the feed.
	_, err := f.bookings.Confirm(ctx, booking.ID)
	require.NoError(t, err)

	count, err := f.bookings.UnseenCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	recent, err := f.bookings.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
}
