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

// promote creates a booking for the given service and promotes it to a draft
// quote with the given regime.
func (f *fixture) promote(t *testing.T, svc *domain.Service, rotRut *domain.RotRutType) *domain.QuoteDTO {
	t.Helper()

	booking := testutil.CreateTestBooking(t, f.db, svc)
	dto, err := f.quotes.CreateFromBooking(adminContext(), &domain.CreateQuoteRequest{
		BookingID:  booking.ID,
		RotRutType: rotRut,
	})
	require.NoError(t, err)
	return dto
}

// sentQuote promotes and sends a quote
func (f *fixture) sentQuote(t *testing.T, svc *domain.Service, rotRut *domain.RotRutType) *domain.QuoteDTO {
	t.Helper()

	draft := f.promote(t, svc, rotRut)
	sent, err := f.quotes.Send(adminContext(), draft.ID, nil)
	require.NoError(t, err)
	return sent
}

// acceptedQuote promotes, sends and accepts a quote
func (f *fixture) acceptedQuote(t *testing.T, svc *domain.Service, rotRut *domain.RotRutType) *domain.QuoteDTO {
	t.Helper()

	sent := f.sentQuote(t, svc, rotRut)
	accepted, err := f.quotes.Accept(adminContext(), sent.ID, &domain.AcceptQuoteRequest{
		SignatureName: "Anna Andersson",
		SignatureDate: time.Now().UTC(),
		TermsAccepted: true,
	})
	require.NoError(t, err)
	return accepted
}

func TestQuoteCreateFromBooking_SeedsLineItemsFromSnapshot(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	addon := testutil.CreateTestAddon(t, f.db, svc, "Extra rum", 800)

	booking, err := f.bookings.Create(context.Background(), &domain.CreateBookingRequest{
		ServiceID:    &svc.ID,
		ContactName:  "Anna Andersson",
		ContactEmail: "anna@example.se",
		Addons: []domain.BookingAddonSelection{
			{AddonID: addon.ID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	rot := domain.RotRutTypeROT
	quote, err := f.quotes.CreateFromBooking(adminContext(), &domain.CreateQuoteRequest{
		BookingID:  booking.ID,
		RotRutType: &rot,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.QuoteStatusDraft, quote.Status)
	assert.Empty(t, quote.QuoteNumber)
	require.Len(t, quote.LineItems, 2)
	assert.Equal(t, "Målning", quote.LineItems[0].Description)
	assert.Equal(t, int64(5000), quote.LineItems[0].Total)
	assert.True(t, quote.LineItems[0].DeductionEligible)
	assert.Equal(t, int64(1600), quote.LineItems[1].Total)

	// work 6600, deduction 30% of eligible labor
	assert.Equal(t, int64(6600), quote.SubtotalWork)
	assert.Equal(t, int64(1980), quote.RotDeduction)
	assert.Equal(t, int64(4620), quote.Total)
}

func TestQuoteCreateFromBooking_OnePerBooking(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	booking := testutil.CreateTestBooking(t, f.db, svc)

	_, err := f.quotes.CreateFromBooking(adminContext(), &domain.CreateQuoteRequest{BookingID: booking.ID})
	require.NoError(t, err)

	_, err = f.quotes.CreateFromBooking(adminContext(), &domain.CreateQuoteRequest{BookingID: booking.ID})
	assert.ErrorIs(t, err, ErrQuoteExists)
}

func TestQuoteCreateFromBooking_RejectsCancelledBooking(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	booking := testutil.CreateTestBooking(t, f.db, svc)
	_, err := f.bookings.Cancel(adminContext(), booking.ID, "")
	require.NoError(t, err)

	_, err = f.quotes.CreateFromBooking(adminContext(), &domain.CreateQuoteRequest{BookingID: booking.ID})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
}

func TestQuoteSend_AssignsNumberAndValidity(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	draft := f.promote(t, svc, nil)

	sent, err := f.quotes.Send(adminContext(), draft.ID, nil)
	require.NoError(t, err)

	assert.Equal(t, domain.QuoteStatusSent, sent.Status)
	assert.Contains(t, sent.QuoteNumber, "Q-")
	assert.Contains(t, sent.QuoteNumber, "-001")
	require.NotNil(t, sent.ValidUntil)
	assert.Contains(t, *sent.ValidUntil, "-")

	// The next quote in the same year gets the next number
	second := f.promote(t, svc, nil)
	sent2, err := f.quotes.Send(adminContext(), second.ID, nil)
	require.NoError(t, err)
	assert.NotEqual(t, sent.QuoteNumber, sent2.QuoteNumber)
	assert.Contains(t, sent2.QuoteNumber, "-002")
}

func TestQuoteSend_RequiresDraftWithLineItems(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	sent := f.sentQuote(t, svc, nil)

	// sending twice fails
	_, err := f.quotes.Send(adminContext(), sent.ID, nil)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
}

func TestQuoteSend_RejectsPastValidUntil(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	draft := f.promote(t, svc, nil)

	past := time.Now().UTC().Add(-24 * time.Hour)
	_, err := f.quotes.Send(adminContext(), draft.ID, &domain.SendQuoteRequest{ValidUntil: &past})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestQuotePublicView_MovesSentToViewed(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	sent := f.sentQuote(t, svc, nil)

	stored, err := f.quoteRepo.GetByID(context.Background(), sent.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.PublicToken)

	viewed, err := f.quotes.GetByPublicToken(context.Background(), stored.PublicToken)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusViewed, viewed.Status)
	assert.NotNil(t, viewed.ViewedAt)

	// A second open does not move the lifecycle
	again, err := f.quotes.GetByPublicToken(context.Background(), stored.PublicToken)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusViewed, again.Status)
}

func TestQuoteAccept_RequiresTermsAndSignature(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	sent := f.sentQuote(t, svc, nil)

	_, err := f.quotes.Accept(adminContext(), sent.ID, &domain.AcceptQuoteRequest{
		SignatureName: "Anna Andersson",
		SignatureDate: time.Now().UTC(),
		TermsAccepted: false,
	})
	require.Error(t, err)
	assert.True(t, domain.IsPrecondition(err))

	_, err = f.quotes.Accept(adminContext(), sent.ID, &domain.AcceptQuoteRequest{
		SignatureDate: time.Now().UTC(),
		TermsAccepted: true,
	})
	require.Error(t, err)
	assert.True(t, domain.IsPrecondition(err))
}

func TestQuoteAccept_CreatesJobInPool(t *testing.T) {
	f := newFixture(t)

	rot := domain.RotRutTypeROT
	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	accepted := f.acceptedQuote(t, svc, &rot)

	assert.Equal(t, domain.QuoteStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedAt)
	assert.Equal(t, "Anna Andersson", accepted.SignatureName)

	job, err := f.jobRepo.GetByQuoteID(context.Background(), accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPool, job.Status)
	assert.Equal(t, domain.JobPricingFixed, job.PricingMode)
	assert.Equal(t, accepted.Total, job.FixedPrice)
}

func TestQuoteAcceptByAdmin_SkipsSignature(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	sent := f.sentQuote(t, svc, nil)

	accepted, err := f.quotes.AcceptByAdmin(adminContext(), sent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedBy)
	assert.Equal(t, domain.AcceptedByAdmin, *accepted.AcceptedBy)
	assert.Empty(t, accepted.SignatureName)
}

func TestQuoteReject(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	sent := f.sentQuote(t, svc, nil)

	rejected, err := f.quotes.Reject(adminContext(), sent.ID, "För dyrt")
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusRejected, rejected.Status)

	// Terminal: no further acceptance
	_, err = f.quotes.AcceptByAdmin(adminContext(), sent.ID)
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
}

func TestQuoteUpdateLineItems_OnAcceptedForcesReacceptance(t *testing.T) {
	f := newFixture(t)

	rot := domain.RotRutTypeROT
	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	accepted := f.acceptedQuote(t, svc, &rot)

	updated, err := f.quotes.UpdateLineItems(adminContext(), accepted.ID, &domain.UpdateQuoteRequest{
		LineItems: []domain.QuoteLineItemInput{
			{Description: "Målning, utökad", Quantity: 1, UnitPrice: 7000, DeductionEligible: true},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.QuoteStatusPendingReaccept, updated.Status)
	assert.Empty(t, updated.SignatureName)
	assert.Nil(t, updated.SignatureDate)
	assert.False(t, updated.TermsAccepted)
	assert.NotNil(t, updated.ReacceptReqAt)
	assert.Equal(t, int64(7000), updated.SubtotalWork)
	assert.Equal(t, int64(2100), updated.RotDeduction)
	assert.Equal(t, int64(4900), updated.Total)

	// The pooled job stays untouched by the price edit
	job, err := f.jobRepo.GetByQuoteID(context.Background(), accepted.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPool, job.Status)

	// Re-acceptance closes the loop and leaves the existing job alone
	reaccepted, err := f.quotes.Accept(adminContext(), accepted.ID, &domain.AcceptQuoteRequest{
		SignatureName: "Anna Andersson",
		SignatureDate: time.Now().UTC(),
		TermsAccepted: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusAccepted, reaccepted.Status)

	jobs, _, err := f.jobs.List(adminContext(), 1, 50, "")
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestQuoteUpdateLineItems_OnDraftStaysDraft(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	draft := f.promote(t, svc, nil)

	updated, err := f.quotes.UpdateLineItems(adminContext(), draft.ID, &domain.UpdateQuoteRequest{
		LineItems: []domain.QuoteLineItemInput{
			{Description: "Arbete", Quantity: 2, UnitPrice: 1200},
			{Description: "Färg", Kind: domain.LineItemKindMaterial, Quantity: 1, UnitPrice: 600},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.QuoteStatusDraft, updated.Status)
	assert.Equal(t, int64(2400), updated.SubtotalWork)
	assert.Equal(t, int64(600), updated.SubtotalMat)
	assert.Equal(t, int64(3000), updated.Total)
}

func TestQuoteUpdateLineItems_MaterialNeverDeductionEligible(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	draft := f.promote(t, svc, nil)

	_, err := f.quotes.UpdateLineItems(adminContext(), draft.ID, &domain.UpdateQuoteRequest{
		LineItems: []domain.QuoteLineItemInput{
			{Description: "Färg", Kind: domain.LineItemKindMaterial, Quantity: 1, UnitPrice: 600, DeductionEligible: true},
		},
	})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestQuoteUpdateNotes_NeverForcesReacceptance(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	accepted := f.acceptedQuote(t, svc, nil)

	updated, err := f.quotes.UpdateNotes(adminContext(), accepted.ID, "Ring kunden innan start")
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusAccepted, updated.Status)
	assert.Equal(t, "Ring kunden innan start", updated.Notes)
}

func TestQuoteExpiry_IsReadTimeProjection(t *testing.T) {
	f := newFixture(t)

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	sent := f.sentQuote(t, svc, nil)

	// Backdate the validity window; the stored status stays "sent"
	past := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, f.db.Model(&domain.Quote{}).
		Where("id = ?", sent.ID).
		Update("valid_until", past).Error)

	dto, err := f.quotes.GetByID(adminContext(), sent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusExpired, dto.Status)

	stored, err := f.quoteRepo.GetByID(context.Background(), sent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteStatusSent, stored.Status)

	// An expired quote can no longer be accepted
	_, err = f.quotes.Accept(adminContext(), sent.ID, &domain.AcceptQuoteRequest{
		SignatureName: "Anna Andersson",
		SignatureDate: time.Now().UTC(),
		TermsAccepted: true,
	})
	require.Error(t, err)
	assert.True(t, domain.IsInvalidState(err))
}

func TestQuoteNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.quotes.GetByID(adminContext(), uuid.New())
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}
