package service

import (
	"context"
	"testing"
	"time"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceCreateFromQuote_CopiesLinesAndAppliesAmounts(t *testing.T) {
	f := newFixture(t)

	rot := domain.RotRutTypeROT
	svc := testutil.CreateTestService(t, f.db, "Målning", 1000)
	quote := f.acceptedQuote(t, svc, &rot)

	invoice, err := f.invoices.CreateFromQuote(adminContext(), quote.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusDraft, invoice.Status)
	assert.Empty(t, invoice.InvoiceNumber)
	require.Len(t, invoice.LineItems, 1)
	assert.Equal(t, int64(1000), invoice.Subtotal)

	// VAT 25% on the subtotal, ROT deduction carried from the quote
	assert.Equal(t, int64(250), invoice.VATAmount)
	assert.Equal(t, int64(300), invoice.RotAmount)
	assert.Equal(t, int64(0), invoice.RutAmount)
	assert.Equal(t, int64(950), invoice.TotalAmount)
}

func TestInvoiceCreateFromQuote_RequiresAcceptedQuote(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 1000)
	sent := f.sentQuote(t, svc, nil)

	_, err := f.invoices.CreateFromQuote(adminContext(), sent.ID)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
}

func TestInvoiceCreateFromQuote_OnePerQuote(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 1000)
	quote := f.acceptedQuote(t, svc, nil)

	_, err := f.invoices.CreateFromQuote(adminContext(), quote.ID)
	require.NoError(t, err)

	_, err = f.invoices.CreateFromQuote(adminContext(), quote.ID)
	assert.ErrorIs(t, err, ErrInvoiceExists)
}

func TestInvoiceCreateFromJob_HourlyActuals(t *testing.T) {
	f := newFixture(t)

	job := f.hourlyJob(t, 650)
	f.assignWorker(t, job, "w-1")
	ctx := workerContext("w-1")

	_, err := f.jobs.AddManualTime(ctx, job.ID, &domain.ManualTimeLogRequest{Hours: 6.5})
	require.NoError(t, err)
	_, err = f.jobs.AddMaterial(ctx, job.ID, &domain.CreateMaterialLogRequest{Name: "Kakel", Quantity: 3, UnitPrice: 650})
	require.NoError(t, err)
	_, err = f.jobs.Complete(ctx, job.ID)
	require.NoError(t, err)

	invoice, err := f.invoices.CreateFromJob(adminContext(), job.ID)
	require.NoError(t, err)

	// labor 6.5 h × 650 = 4225, material 1950
	require.Len(t, invoice.LineItems, 2)
	assert.Equal(t, domain.LineItemKindWork, invoice.LineItems[0].Kind)
	assert.Equal(t, int64(4225), invoice.LineItems[0].Total)
	assert.Equal(t, domain.LineItemKindMaterial, invoice.LineItems[1].Kind)
	assert.Equal(t, int64(1950), invoice.LineItems[1].Total)
	assert.Equal(t, int64(6175), invoice.Subtotal)
	assert.Equal(t, int64(1544), invoice.VATAmount)
	assert.Equal(t, int64(7719), invoice.TotalAmount)

	// The job flips to invoiced
	jobDTO, err := f.jobs.GetByID(adminContext(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusInvoiced, jobDTO.Status)
}

func TestInvoiceCreateFromJob_RequiresCompletedJob(t *testing.T) {
	f := newFixture(t)

	job := f.hourlyJob(t, 650)
	f.assignWorker(t, job, "w-1")

	_, err := f.invoices.CreateFromJob(adminContext(), job.ID)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
}

func TestInvoiceSend_AssignsNumberTokenAndDueDate(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 1000)
	quote := f.acceptedQuote(t, svc, nil)
	invoice, err := f.invoices.CreateFromQuote(adminContext(), quote.ID)
	require.NoError(t, err)

	sent, err := f.invoices.Send(adminContext(), invoice.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.InvoiceStatusSent, sent.Status)
	assert.Contains(t, sent.InvoiceNumber, "F-")
	assert.Contains(t, sent.InvoiceNumber, "-001")
	require.NotNil(t, sent.DueDate)
	assert.NotNil(t, sent.SentAt)

	stored, err := f.invoiceRepo.GetByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, stored.PublicToken)

	// Quote and invoice sequences are independent: the quote took Q-...-001,
	// the invoice still starts at F-...-001.
	public, err := f.invoices.GetByPublicToken(context.Background(), stored.PublicToken)
	require.NoError(t, err)
	assert.Equal(t, sent.InvoiceNumber, public.InvoiceNumber)
}

func TestInvoiceMarkPaid(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 1000)
	quote := f.acceptedQuote(t, svc, nil)
	invoice, err := f.invoices.CreateFromQuote(adminContext(), quote.ID)
	require.NoError(t, err)

	// Draft invoices can't be marked paid
	_, err = f.invoices.MarkPaid(adminContext(), invoice.ID, &domain.MarkInvoicePaidRequest{PaidAt: time.Now().UTC()})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))

	_, err = f.invoices.Send(adminContext(), invoice.ID, nil)
	require.NoError(t, err)

	paid, err := f.invoices.MarkPaid(adminContext(), invoice.ID, &domain.MarkInvoicePaidRequest{PaidAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
	assert.NotNil(t, paid.PaidAt)
}

func TestInvoiceMarkPaid_BlockedDuringReacceptance(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 1000)
	quote := f.acceptedQuote(t, svc, nil)
	invoice, err := f.invoices.CreateFromQuote(adminContext(), quote.ID)
	require.NoError(t, err)
	_, err = f.invoices.Send(adminContext(), invoice.ID, nil)
	require.NoError(t, err)

	// Editing the accepted quote parks it in pending_reaccept
	_, err = f.quotes.UpdateLineItems(adminContext(), quote.ID, &domain.UpdateQuoteRequest{
		LineItems: []domain.QuoteLineItemInput{
			{Description: "Målning, utökad", Quantity: 1, UnitPrice: 1500},
		},
	})
	require.NoError(t, err)

	_, err = f.invoices.MarkPaid(adminContext(), invoice.ID, &domain.MarkInvoicePaidRequest{PaidAt: time.Now().UTC()})
	require.Error(t, err)
	assert.True(t, domain.IsPrecondition(err))

	// Re-acceptance unblocks payment
	_, err = f.quotes.Accept(adminContext(), quote.ID, &domain.AcceptQuoteRequest{
		SignatureName: "Anna Andersson",
		SignatureDate: time.Now().UTC(),
		TermsAccepted: true,
	})
	require.NoError(t, err)

	paid, err := f.invoices.MarkPaid(adminContext(), invoice.ID, &domain.MarkInvoicePaidRequest{PaidAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
}

func TestInvoiceApplyLedgerPayment_Idempotent(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 1000)
	quote := f.acceptedQuote(t, svc, nil)
	invoice, err := f.invoices.CreateFromQuote(adminContext(), quote.ID)
	require.NoError(t, err)
	sent, err := f.invoices.Send(adminContext(), invoice.ID, nil)
	require.NoError(t, err)

	settled := time.Now().UTC()
	require.NoError(t, f.invoices.ApplyLedgerPayment(adminContext(), sent.InvoiceNumber, sent.TotalAmount, settled))

	dto, err := f.invoices.GetByID(adminContext(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, dto.Status)

	// Re-applying the same settlement is a no-op
	require.NoError(t, f.invoices.ApplyLedgerPayment(adminContext(), sent.InvoiceNumber, sent.TotalAmount, settled))
}

func TestInvoiceApplyLedgerPayment_RejectsAmountMismatch(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 1000)
	quote := f.acceptedQuote(t, svc, nil)
	invoice, err := f.invoices.CreateFromQuote(adminContext(), quote.ID)
	require.NoError(t, err)
	sent, err := f.invoices.Send(adminContext(), invoice.ID, nil)
	require.NoError(t, err)

	// 1 SEK drift is within tolerance
	require.NoError(t, f.invoices.ApplyLedgerPayment(adminContext(), sent.InvoiceNumber, sent.TotalAmount-1, time.Now().UTC()))

	// Unknown document numbers surface as not found
	err = f.invoices.ApplyLedgerPayment(adminContext(), "F-0000-999", sent.TotalAmount, time.Now().UTC())
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestInvoiceApplyLedgerPayment_ReconciliationError(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 1000)
	quote := f.acceptedQuote(t, svc, nil)
	invoice, err := f.invoices.CreateFromQuote(adminContext(), quote.ID)
	require.NoError(t, err)
	sent, err := f.invoices.Send(adminContext(), invoice.ID, nil)
	require.NoError(t, err)

	err = f.invoices.ApplyLedgerPayment(adminContext(), sent.InvoiceNumber, sent.TotalAmount-50, time.Now().UTC())
	require.Error(t, err)
	assert.True(t, domain.IsReconciliation(err))
}

func TestInvoiceCancel(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 1000)
	quote := f.acceptedQuote(t, svc, nil)
	invoice, err := f.invoices.CreateFromQuote(adminContext(), quote.ID)
	require.NoError(t, err)

	cancelled, err := f.invoices.Cancel(adminContext(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusCancelled, cancelled.Status)

	// Cancelled is terminal
	_, err = f.invoices.Cancel(adminContext(), invoice.ID)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
}

func TestInvoiceOverdue_IsReadTimeProjection(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 1000)
	quote := f.acceptedQuote(t, svc, nil)
	invoice, err := f.invoices.CreateFromQuote(adminContext(), quote.ID)
	require.NoError(t, err)
	_, err = f.invoices.Send(adminContext(), invoice.ID, nil)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, f.db.Model(&domain.Invoice{}).
		Where("id = ?", invoice.ID).
		Update("due_date", past).Error)

	dto, err := f.invoices.GetByID(adminContext(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusOverdue, dto.Status)

	stored, err := f.invoiceRepo.GetByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusSent, stored.Status)

	// Overdue invoices can still be paid; overdue never blocks payment
	paid, err := f.invoices.MarkPaid(adminContext(), invoice.ID, &domain.MarkInvoicePaidRequest{PaidAt: time.Now().UTC()})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceStatusPaid, paid.Status)
}

func TestInvoiceUpdateAdminNote_AllowedOnPaid(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 1000)
	quote := f.acceptedQuote(t, svc, nil)
	invoice, err := f.invoices.CreateFromQuote(adminContext(), quote.ID)
	require.NoError(t, err)
	_, err = f.invoices.Send(adminContext(), invoice.ID, nil)
	require.NoError(t, err)
	_, err = f.invoices.MarkPaid(adminContext(), invoice.ID, &domain.MarkInvoicePaidRequest{PaidAt: time.Now().UTC()})
	require.NoError(t, err)

	noted, err := f.invoices.UpdateAdminNote(adminContext(), invoice.ID, &domain.UpdateInvoiceNoteRequest{
		AdminNote: "Betald via Swish",
	})
	require.NoError(t, err)
	assert.Equal(t, "Betald via Swish", noted.AdminNote)
	assert.Equal(t, domain.InvoiceStatusPaid, noted.Status)
}
