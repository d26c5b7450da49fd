package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/auth"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/mapper"
	"github.com/hemverk/order-api/internal/pricing"
	"github.com/hemverk/order-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type QuoteService struct {
	quoteRepo    *repository.QuoteRepository
	bookingRepo  *repository.BookingRepository
	jobRepo      *repository.JobRepository
	activityRepo *repository.ActivityLogRepository
	numberSeq    *repository.NumberSequenceRepository
	engine       *pricing.Engine
	dispatcher   Dispatcher
	validityDays int
	logger       *zap.Logger
}

func NewQuoteService(
	quoteRepo *repository.QuoteRepository,
	bookingRepo *repository.BookingRepository,
	jobRepo *repository.JobRepository,
	activityRepo *repository.ActivityLogRepository,
	numberSeq *repository.NumberSequenceRepository,
	engine *pricing.Engine,
	dispatcher Dispatcher,
	validityDays int,
	logger *zap.Logger,
) *QuoteService {
	if validityDays <= 0 {
		validityDays = 30
	}
	return &QuoteService{
		quoteRepo:    quoteRepo,
		bookingRepo:  bookingRepo,
		jobRepo:      jobRepo,
		activityRepo: activityRepo,
		numberSeq:    numberSeq,
		engine:       engine,
		dispatcher:   dispatcher,
		validityDays: validityDays,
		logger:       logger,
	}
}

// CreateFromBooking promotes a booking to a draft quote. Line items are seeded
// from the booking's price snapshot. Promotion is allowed from any
// non-cancelled booking status and leaves the booking status untouched.
func (s *QuoteService) CreateFromBooking(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	booking, err := s.bookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ServiceID == nil {
		return nil, domain.NewValidationError("bookingId", "booking has no service reference")
	}
	if booking.Status == domain.BookingStatusCancelled {
		return nil, domain.NewInvalidStateError("booking", string(booking.Status), "create quote")
	}

	if _, err := s.quoteRepo.GetByBookingID(ctx, booking.ID); err == nil {
		return nil, ErrQuoteExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing quote: %w", err)
	}

	rotRut := booking.RotRutType
	if req.RotRutType != nil {
		if !req.RotRutType.IsValid() {
			return nil, domain.NewValidationError("rotRutType", "must be ROT or RUT")
		}
		rotRut = req.RotRutType
	}

	var laborShare = 1.0
	var baseEligible bool
	if booking.Service != nil {
		laborShare = booking.Service.LaborShare
		baseEligible = lineEligible(booking.Service.RotEligible, booking.Service.RutEligible, rotRut)
	}

	// Seed line items from the booking snapshot: one work line for the base
	// service, one line per addon.
	items := []domain.QuoteLineItem{
		{
			Description:       booking.ServiceTitle,
			Kind:              domain.LineItemKindWork,
			Quantity:          1,
			UnitPrice:         booking.BasePrice,
			Total:             booking.BasePrice,
			DeductionEligible: baseEligible,
			SortOrder:         0,
		},
	}
	for i, addon := range booking.Addons {
		items = append(items, domain.QuoteLineItem{
			Description:       addon.Title,
			Kind:              domain.LineItemKindWork,
			Quantity:          float64(addon.Quantity),
			UnitPrice:         addon.UnitPrice,
			Total:             addon.Total(),
			DeductionEligible: lineEligible(addon.RotEligible, addon.RutEligible, rotRut),
			SortOrder:         i + 1,
		})
	}

	token, err := NewPublicToken()
	if err != nil {
		return nil, err
	}

	quote := &domain.Quote{
		BookingID:   booking.ID,
		CustomerID:  booking.CustomerID,
		Status:      domain.QuoteStatusDraft,
		LineItems:   items,
		RotRutType:  rotRut,
		PublicToken: token,
		Notes:       req.Notes,
	}
	s.applyTotals(quote, laborShare)

	if err := s.quoteRepo.Create(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	s.logActivity(ctx, quote.ID, "Offert skapad",
		fmt.Sprintf("Offertutkast skapat från förfrågan %s", booking.ID))

	return s.GetByID(ctx, quote.ID)
}

// GetByID returns a single quote with the expiry projection applied
func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	dto := mapper.ToQuoteDTO(quote, time.Now().UTC())
	return &dto, nil
}

// List returns quotes with optional status filter
func (s *QuoteService) List(ctx context.Context, page, pageSize int, status domain.QuoteStatus) ([]domain.QuoteDTO, int64, error) {
	quotes, total, err := s.quoteRepo.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quotes: %w", err)
	}

	now := time.Now().UTC()
	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = mapper.ToQuoteDTO(&quotes[i], now)
	}
	return dtos, total, nil
}

// ListExpiredQuotes returns sent/viewed quotes past their validity window,
// for the reminder scan
func (s *QuoteService) ListExpiredQuotes(ctx context.Context) ([]domain.Quote, error) {
	return s.quoteRepo.ListExpired(ctx)
}

// UpdateLineItems replaces the quote's line items and recomputes totals.
// Editing a quote the customer has already accepted forces re-acceptance:
// the quote moves to pending_reaccept, the signature and terms flags are
// cleared, and the customer is re-notified. Dispatch failure never rolls
// back the transition.
func (s *QuoteService) UpdateLineItems(ctx context.Context, id uuid.UUID, req *domain.UpdateQuoteRequest) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	switch quote.Status {
	case domain.QuoteStatusRejected, domain.QuoteStatusExpired:
		return nil, domain.NewInvalidStateError("quote", string(quote.Status), "update line items")
	}
	if quote.IsExpired(time.Now().UTC()) {
		return nil, domain.NewInvalidStateError("quote", string(domain.QuoteStatusExpired), "update line items")
	}

	rotRut := quote.RotRutType
	if req.RotRutType != nil {
		if !req.RotRutType.IsValid() {
			return nil, domain.NewValidationError("rotRutType", "must be ROT or RUT")
		}
		rotRut = req.RotRutType
	}

	items := make([]domain.QuoteLineItem, len(req.LineItems))
	for i, in := range req.LineItems {
		kind := in.Kind
		if kind == "" {
			kind = domain.LineItemKindWork
		}
		if kind == domain.LineItemKindMaterial && in.DeductionEligible {
			return nil, domain.NewValidationError("lineItems", "material lines are never deduction eligible")
		}
		items[i] = domain.QuoteLineItem{
			Description:       in.Description,
			Kind:              kind,
			Quantity:          in.Quantity,
			UnitPrice:         in.UnitPrice,
			Total:             roundSEK(in.Quantity * float64(in.UnitPrice)),
			DeductionEligible: in.DeductionEligible,
			SortOrder:         in.SortOrder,
		}
		if items[i].SortOrder == 0 {
			items[i].SortOrder = i
		}
	}

	laborShare := s.quoteLaborShare(ctx, quote)

	next := &domain.Quote{LineItems: items, RotRutType: rotRut}
	s.applyTotals(next, laborShare)

	wasAccepted := quote.Status == domain.QuoteStatusAccepted

	totals := map[string]interface{}{
		"subtotal_work_sek": next.SubtotalWorkSEK,
		"subtotal_mat_sek":  next.SubtotalMatSEK,
		"rot_deduction_sek": next.RotDeductionSEK,
		"total_sek":         next.TotalSEK,
		"updated_at":        time.Now().UTC(),
	}
	if rotRut != nil {
		totals["rot_rut_type"] = *rotRut
	} else {
		totals["rot_rut_type"] = nil
	}
	if req.Notes != "" {
		totals["notes"] = req.Notes
	}
	if wasAccepted {
		now := time.Now().UTC()
		totals["status"] = domain.QuoteStatusPendingReaccept
		totals["signature_name"] = ""
		totals["signature_date"] = nil
		totals["terms_accepted"] = false
		totals["reaccept_requested_at"] = now
	}

	affected, err := s.quoteRepo.ReplaceLineItems(ctx, id, quote.Status, items, totals)
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewConcurrentModificationError("quote", id)
	}

	if wasAccepted {
		s.logActivity(ctx, id, "Offert ändrad efter accept",
			"Prisändring kräver ny accept från kund")
		reloaded, err := s.quoteRepo.GetByID(ctx, id)
		if err == nil {
			if derr := s.dispatcher.ReacceptRequested(ctx, reloaded); derr != nil {
				s.logger.Warn("failed to dispatch re-accept request",
					zap.String("quote_id", id.String()), zap.Error(derr))
			}
		}
	} else {
		s.logActivity(ctx, id, "Offert uppdaterad", "Offertrader ändrade")
	}

	return s.GetByID(ctx, id)
}

// UpdateNotes edits internal notes only. Notes are not customer-facing price
// content, so this never triggers re-acceptance.
func (s *QuoteService) UpdateNotes(ctx context.Context, id uuid.UUID, notes string) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	quote.Notes = notes
	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote notes: %w", err)
	}

	return s.GetByID(ctx, id)
}

// applyTotals recomputes the quote's totals from its line items.
// The deduction base is the sum of deduction-eligible lines scaled by the
// service's labor share; material lines never enter the base.
func (s *QuoteService) applyTotals(quote *domain.Quote, laborShare float64) {
	var work, mat, eligible int64
	for _, item := range quote.LineItems {
		switch item.Kind {
		case domain.LineItemKindMaterial:
			mat += item.Total
		default:
			work += item.Total
			if item.DeductionEligible {
				eligible += item.Total
			}
		}
	}

	laborBase := roundSEK(float64(eligible) * laborShare)
	deduction := s.engine.LaborDeduction(laborBase, quote.RotRutType)

	total := work + mat - deduction
	if total < 0 {
		total = 0
	}

	quote.SubtotalWorkSEK = work
	quote.SubtotalMatSEK = mat
	quote.RotDeductionSEK = deduction
	quote.TotalSEK = total
}

// quoteLaborShare resolves the labor share from the quote's booking service,
// defaulting to full labor when the chain is broken.
func (s *QuoteService) quoteLaborShare(ctx context.Context, quote *domain.Quote) float64 {
	booking := quote.Booking
	if booking == nil {
		loaded, err := s.bookingRepo.GetByID(ctx, quote.BookingID)
		if err != nil {
			return 1.0
		}
		booking = loaded
	}
	if booking.Service == nil {
		return 1.0
	}
	return booking.Service.LaborShare
}

// lineEligible reports whether a line with the given catalog flags counts
// toward the deduction base under the chosen regime.
func lineEligible(rot, rut bool, regime *domain.RotRutType) bool {
	if regime == nil {
		return false
	}
	if *regime == domain.RotRutTypeROT {
		return rot
	}
	return rut
}

func roundSEK(v float64) int64 {
	return int64(math.Round(v))
}

// logActivity creates an activity log entry for a quote
func (s *QuoteService) logActivity(ctx context.Context, quoteID uuid.UUID, title, body string) {
	entry := &domain.ActivityLog{
		TargetType: domain.TargetQuote,
		TargetID:   quoteID,
		Title:      title,
		Body:       body,
		OccurredAt: time.Now().UTC(),
	}
	if staffCtx, ok := auth.FromContext(ctx); ok {
		entry.ActorID = staffCtx.StaffID
		entry.ActorName = staffCtx.DisplayName
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", zap.Error(err))
	}
}
