package service

// Quote lifecycle transitions: send, view, accept, reject and the
// re-acceptance round trip after post-acceptance edits.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/mapper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Send transitions draft -> sent. The quote number is assigned on the first
// send and never changes afterwards; valid_until defaults to the configured
// validity window when the caller does not set one.
func (s *QuoteService) Send(ctx context.Context, id uuid.UUID, req *domain.SendQuoteRequest) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status != domain.QuoteStatusDraft {
		return nil, domain.NewInvalidStateError("quote", string(quote.Status), "send")
	}
	if len(quote.LineItems) == 0 {
		return nil, domain.NewPreconditionError("quote has no line items")
	}

	now := time.Now().UTC()

	number := quote.QuoteNumber
	if number == "" {
		number, err = s.numberSeq.NextDocumentNumber(ctx, domain.SequenceKindQuote, now)
		if err != nil {
			return nil, fmt.Errorf("failed to assign quote number: %w", err)
		}
	}

	validUntil := now.AddDate(0, 0, s.validityDays)
	if req != nil && req.ValidUntil != nil {
		if req.ValidUntil.Before(now) {
			return nil, domain.NewValidationError("validUntil", "must be in the future")
		}
		validUntil = req.ValidUntil.UTC()
	}

	affected, err := s.quoteRepo.UpdateStatusConditional(ctx, id, domain.QuoteStatusDraft, map[string]interface{}{
		"status":       domain.QuoteStatusSent,
		"quote_number": number,
		"sent_at":      now,
		"valid_until":  validUntil,
		"updated_at":   now,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewConcurrentModificationError("quote", id)
	}

	s.logActivity(ctx, id, "Offert skickad",
		fmt.Sprintf("Offert %s skickad till kund, giltig till %s", number, validUntil.Format("2006-01-02")))

	reloaded, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload quote: %w", err)
	}
	if derr := s.dispatcher.QuoteSent(ctx, reloaded); derr != nil {
		s.logger.Warn("failed to dispatch quote",
			zap.String("quote_id", id.String()), zap.Error(derr))
	}

	dto := mapper.ToQuoteDTO(reloaded, time.Now().UTC())
	return &dto, nil
}

// GetByPublicToken resolves the customer-facing quote view and records the
// first open by moving sent -> viewed.
func (s *QuoteService) GetByPublicToken(ctx context.Context, token string) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByPublicToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status == domain.QuoteStatusSent {
		now := time.Now().UTC()
		affected, err := s.quoteRepo.UpdateStatusConditional(ctx, quote.ID, domain.QuoteStatusSent, map[string]interface{}{
			"status":     domain.QuoteStatusViewed,
			"viewed_at":  now,
			"updated_at": now,
		})
		if err != nil {
			return nil, err
		}
		if affected > 0 {
			quote.Status = domain.QuoteStatusViewed
			quote.ViewedAt = &now
			s.logActivity(ctx, quote.ID, "Offert öppnad", "Kunden öppnade offertlänken")
		}
	}

	dto := mapper.ToQuoteDTO(quote, time.Now().UTC())
	return &dto, nil
}

// Accept records customer acceptance. Requires accepted terms and a signature
// name and date; valid from sent, viewed, or pending_reaccept. An expired
// quote can no longer be accepted.
func (s *QuoteService) Accept(ctx context.Context, id uuid.UUID, req *domain.AcceptQuoteRequest) (*domain.QuoteDTO, error) {
	return s.accept(ctx, id, req.SignatureName, req.SignatureDate, req.TermsAccepted, domain.AcceptedByCustomer)
}

// AcceptByPublicToken is the customer-facing acceptance through the quote link
func (s *QuoteService) AcceptByPublicToken(ctx context.Context, token string, req *domain.PublicAcceptQuoteRequest) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByPublicToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return s.accept(ctx, quote.ID, req.SignatureName, req.SignatureDate, req.TermsAccepted, domain.AcceptedByCustomer)
}

// AcceptByAdmin records a phone/in-person acceptance performed by staff on the
// customer's behalf. No signature is captured; the acceptance is tagged as
// admin-originated.
func (s *QuoteService) AcceptByAdmin(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if err := s.checkAcceptable(quote); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	affected, err := s.quoteRepo.UpdateStatusConditionalAny(ctx, id, acceptableStatuses, map[string]interface{}{
		"status":           domain.QuoteStatusAccepted,
		"accepted_at":      now,
		"accepted_by_type": domain.AcceptedByAdmin,
		"updated_at":       now,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewConcurrentModificationError("quote", id)
	}

	s.logActivity(ctx, id, "Offert accepterad",
		"Accepterad av administratör å kundens vägnar")

	s.ensureJob(ctx, id)

	return s.GetByID(ctx, id)
}

var acceptableStatuses = []domain.QuoteStatus{
	domain.QuoteStatusSent,
	domain.QuoteStatusViewed,
	domain.QuoteStatusPendingReaccept,
}

func (s *QuoteService) checkAcceptable(quote *domain.Quote) error {
	if quote.IsExpired(time.Now().UTC()) {
		return domain.NewInvalidStateError("quote", string(domain.QuoteStatusExpired), "accept")
	}
	switch quote.Status {
	case domain.QuoteStatusSent, domain.QuoteStatusViewed, domain.QuoteStatusPendingReaccept:
		return nil
	}
	return domain.NewInvalidStateError("quote", string(quote.Status), "accept")
}

func (s *QuoteService) accept(ctx context.Context, id uuid.UUID, signatureName string, signatureDate time.Time, termsAccepted bool, by domain.AcceptedByType) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if err := s.checkAcceptable(quote); err != nil {
		return nil, err
	}

	if !termsAccepted {
		return nil, domain.NewPreconditionError("terms must be accepted")
	}
	if signatureName == "" || signatureDate.IsZero() {
		return nil, domain.NewPreconditionError("signature name and date are required")
	}

	wasReaccept := quote.Status == domain.QuoteStatusPendingReaccept

	now := time.Now().UTC()
	affected, err := s.quoteRepo.UpdateStatusConditionalAny(ctx, id, acceptableStatuses, map[string]interface{}{
		"status":           domain.QuoteStatusAccepted,
		"accepted_at":      now,
		"accepted_by_type": by,
		"signature_name":   signatureName,
		"signature_date":   signatureDate,
		"terms_accepted":   true,
		"updated_at":       now,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewConcurrentModificationError("quote", id)
	}

	if wasReaccept {
		s.logActivity(ctx, id, "Offert åter accepterad",
			"Kunden godkände det ändrade priset")
	} else {
		s.logActivity(ctx, id, "Offert accepterad",
			fmt.Sprintf("Signerad av %s", signatureName))
	}

	s.ensureJob(ctx, id)

	return s.GetByID(ctx, id)
}

// Reject records customer rejection from sent/viewed/pending_reaccept
func (s *QuoteService) Reject(ctx context.Context, id uuid.UUID, reason string) (*domain.QuoteDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	switch quote.Status {
	case domain.QuoteStatusSent, domain.QuoteStatusViewed, domain.QuoteStatusPendingReaccept:
	default:
		return nil, domain.NewInvalidStateError("quote", string(quote.Status), "reject")
	}

	now := time.Now().UTC()
	affected, err := s.quoteRepo.UpdateStatusConditionalAny(ctx, id, acceptableStatuses, map[string]interface{}{
		"status":     domain.QuoteStatusRejected,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewConcurrentModificationError("quote", id)
	}

	body := "Offerten avböjdes"
	if reason != "" {
		body = fmt.Sprintf("Offerten avböjdes: %s", reason)
	}
	s.logActivity(ctx, id, "Offert avböjd", body)

	return s.GetByID(ctx, id)
}

// ensureJob creates the execution job in the pool on first acceptance.
// Re-acceptance after a price edit finds the existing job and leaves it alone.
func (s *QuoteService) ensureJob(ctx context.Context, quoteID uuid.UUID) {
	if _, err := s.jobRepo.GetByQuoteID(ctx, quoteID); err == nil {
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("failed to check existing job", zap.Error(err))
		return
	}

	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		s.logger.Warn("failed to load quote for job creation", zap.Error(err))
		return
	}

	job := &domain.Job{
		QuoteID:     &quote.ID,
		BookingID:   &quote.BookingID,
		Status:      domain.JobStatusPool,
		PricingMode: domain.JobPricingFixed,
		FixedPrice:  quote.TotalSEK,
	}
	if booking := quote.Booking; booking != nil && booking.PriceType == domain.PriceTypeHourly {
		job.PricingMode = domain.JobPricingHourly
		job.HourlyRate = booking.HourlyRate
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		s.logger.Error("failed to create job from accepted quote",
			zap.String("quote_id", quoteID.String()), zap.Error(err))
		return
	}

	s.logActivity(ctx, quoteID, "Uppdrag skapat",
		"Uppdrag lagt i poolen efter accepterad offert")
}
