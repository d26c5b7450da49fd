package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderGet_StageFollowsLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := adminContext()

	svc := testutil.CreateTestService(t, f.db, "Köksrenovering", 80000)
	booking := testutil.CreateTestBooking(t, f.db, svc)

	order, err := f.orders.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStageRequest, order.Stage)
	require.NotNil(t, order.Booking)
	assert.Nil(t, order.Quote)
	assert.Nil(t, order.Job)
	assert.Nil(t, order.Invoice)

	quote, err := f.quotes.CreateFromBooking(ctx, &domain.CreateQuoteRequest{BookingID: booking.ID})
	require.NoError(t, err)

	order, err = f.orders.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStageQuoted, order.Stage)
	require.NotNil(t, order.Quote)

	_, err = f.quotes.Send(ctx, quote.ID, nil)
	require.NoError(t, err)
	_, err = f.quotes.Accept(ctx, quote.ID, &domain.AcceptQuoteRequest{
		SignatureName: "Anna Andersson",
		SignatureDate: time.Now().UTC(),
		TermsAccepted: true,
	})
	require.NoError(t, err)

	order, err = f.orders.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStageAccepted, order.Stage)
	require.NotNil(t, order.Job)
	assert.Equal(t, domain.JobStatusPool, order.Job.Status)

	job, err := f.jobRepo.GetByQuoteID(context.Background(), quote.ID)
	require.NoError(t, err)
	f.assignWorker(t, job, "w-1")

	order, err = f.orders.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStageInWork, order.Stage)

	invoice, err := f.invoices.CreateFromQuote(ctx, quote.ID)
	require.NoError(t, err)

	order, err = f.orders.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStageInvoiced, order.Stage)
	require.NotNil(t, order.Invoice)

	_, err = f.invoices.Send(ctx, invoice.ID, nil)
	require.NoError(t, err)
	_, err = f.invoices.MarkPaid(ctx, invoice.ID, &domain.MarkInvoicePaidRequest{PaidAt: time.Now().UTC()})
	require.NoError(t, err)

	order, err = f.orders.Get(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStagePaid, order.Stage)
}

func TestOrderGet_CancelledInvoiceClosesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := adminContext()

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	quote := f.acceptedQuote(t, svc, nil)

	invoice, err := f.invoices.CreateFromQuote(ctx, quote.ID)
	require.NoError(t, err)
	_, err = f.invoices.Cancel(ctx, invoice.ID)
	require.NoError(t, err)

	order, err := f.orders.Get(ctx, quote.BookingID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStageClosed, order.Stage)
}

func TestOrderGet_UnknownBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.orders.Get(adminContext(), uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestOrderList(t *testing.T) {
	f := newFixture(t)
	ctx := adminContext()

	svc := testutil.CreateTestService(t, f.db, "Städning", 1500)
	first := testutil.CreateTestBooking(t, f.db, svc)
	testutil.CreateTestBooking(t, f.db, svc)

	_, err := f.quotes.CreateFromBooking(ctx, &domain.CreateQuoteRequest{BookingID: first.ID})
	require.NoError(t, err)

	orders, total, err := f.orders.List(ctx, 1, 10, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, orders, 2)

	stages := map[domain.OrderStage]int{}
	for _, o := range orders {
		stages[o.Stage]++
	}
	assert.Equal(t, 1, stages[domain.OrderStageRequest])
	assert.Equal(t, 1, stages[domain.OrderStageQuoted])

	_, _, err = f.orders.List(ctx, 1, 10, "obefintlig")
	assert.True(t, domain.IsValidation(err))
}
