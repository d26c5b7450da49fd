package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/auth"
	"github.com/hemverk/order-api/internal/config"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/mapper"
	"github.com/hemverk/order-api/internal/pricing"
	"github.com/hemverk/order-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// reconciliationToleranceSEK is the allowed rounding drift between an invoice
// subtotal and the total of its source document.
const reconciliationToleranceSEK = 1

// InvoiceService handles invoice creation from quotes and jobs, the send/paid
// lifecycle and the customer-facing public view.
type InvoiceService struct {
	invoiceRepo  *repository.InvoiceRepository
	quoteRepo    *repository.QuoteRepository
	jobRepo      *repository.JobRepository
	activityRepo *repository.ActivityLogRepository
	numberSeq    *repository.NumberSequenceRepository
	engine       *pricing.Engine
	dispatcher   Dispatcher
	billing      *config.BillingConfig
	logger       *zap.Logger
}

func NewInvoiceService(
	invoiceRepo *repository.InvoiceRepository,
	quoteRepo *repository.QuoteRepository,
	jobRepo *repository.JobRepository,
	activityRepo *repository.ActivityLogRepository,
	numberSeq *repository.NumberSequenceRepository,
	engine *pricing.Engine,
	dispatcher Dispatcher,
	billing *config.BillingConfig,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:  invoiceRepo,
		quoteRepo:    quoteRepo,
		jobRepo:      jobRepo,
		activityRepo: activityRepo,
		numberSeq:    numberSeq,
		engine:       engine,
		dispatcher:   dispatcher,
		billing:      billing,
		logger:       logger,
	}
}

// CreateFromQuote builds a draft invoice straight from an accepted quote,
// skipping job tracking. Line items are copied from the quote; the invoice
// subtotal must reconcile with the quote's work+material total within 1 SEK.
func (s *InvoiceService) CreateFromQuote(ctx context.Context, quoteID uuid.UUID) (*domain.InvoiceDTO, error) {
	quote, err := s.quoteRepo.GetByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	if quote.Status != domain.QuoteStatusAccepted {
		return nil, domain.NewInvalidStateError("quote", string(quote.Status), "invoice")
	}
	if _, err := s.invoiceRepo.GetByQuoteID(ctx, quoteID); err == nil {
		return nil, ErrInvoiceExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing invoice: %w", err)
	}

	lines := make([]domain.InvoiceLineItem, 0, len(quote.LineItems))
	var subtotal int64
	for i := range quote.LineItems {
		src := &quote.LineItems[i]
		lines = append(lines, domain.InvoiceLineItem{
			Description: src.Description,
			Kind:        src.Kind,
			Quantity:    src.Quantity,
			UnitPrice:   src.UnitPrice,
			Total:       src.Total,
			SortOrder:   src.SortOrder,
		})
		subtotal += src.Total
	}

	expected := quote.SubtotalWorkSEK + quote.SubtotalMatSEK
	if diff := subtotal - expected; diff > reconciliationToleranceSEK || diff < -reconciliationToleranceSEK {
		return nil, domain.NewReconciliationError("quote", expected, subtotal)
	}

	invoice := &domain.Invoice{
		QuoteID:    &quote.ID,
		CustomerID: quote.CustomerID,
		Status:     domain.InvoiceStatusDraft,
		LineItems:  lines,
		Subtotal:   subtotal,
	}
	s.applyAmounts(invoice, quote.RotDeductionSEK, quote.RotRutType)

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	s.logActivity(ctx, invoice.ID, "Faktura skapad",
		fmt.Sprintf("Fakturautkast skapat från offert %s", quote.QuoteNumber))

	return s.GetByID(ctx, invoice.ID)
}

// CreateFromJob builds a draft invoice from a completed job. Line items are
// derived from the recomputed log aggregates; the job flips to invoiced.
func (s *InvoiceService) CreateFromJob(ctx context.Context, jobID uuid.UUID) (*domain.InvoiceDTO, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if job.Status != domain.JobStatusCompleted {
		return nil, domain.NewInvalidStateError("job", string(job.Status), "invoice")
	}
	if _, err := s.invoiceRepo.GetByJobID(ctx, jobID); err == nil {
		return nil, ErrInvoiceExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing invoice: %w", err)
	}

	var labor int64
	var laborLine domain.InvoiceLineItem
	if job.PricingMode == domain.JobPricingFixed {
		labor = job.FixedPrice
		laborLine = domain.InvoiceLineItem{
			Description: "Arbete, fast pris",
			Kind:        domain.LineItemKindWork,
			Quantity:    1,
			UnitPrice:   labor,
			Total:       labor,
		}
	} else {
		labor = roundSEK(job.TotalHours * float64(job.HourlyRate))
		laborLine = domain.InvoiceLineItem{
			Description: fmt.Sprintf("Arbete, %.2f timmar", job.TotalHours),
			Kind:        domain.LineItemKindWork,
			Quantity:    job.TotalHours,
			UnitPrice:   job.HourlyRate,
			Total:       labor,
		}
	}

	lines := []domain.InvoiceLineItem{laborLine}
	if job.TotalMaterialCost != 0 {
		lines = append(lines, domain.InvoiceLineItem{
			Description: "Material",
			Kind:        domain.LineItemKindMaterial,
			Quantity:    1,
			UnitPrice:   job.TotalMaterialCost,
			Total:       job.TotalMaterialCost,
		})
	}
	if job.TotalExpenses != 0 {
		lines = append(lines, domain.InvoiceLineItem{
			Description: "Utlägg",
			Kind:        domain.LineItemKindMaterial,
			Quantity:    1,
			UnitPrice:   job.TotalExpenses,
			Total:       job.TotalExpenses,
		})
	}
	for i := range lines {
		lines[i].SortOrder = i
	}

	var subtotal int64
	for i := range lines {
		subtotal += lines[i].Total
	}
	expected := labor + job.TotalMaterialCost + job.TotalExpenses
	if diff := subtotal - expected; diff > reconciliationToleranceSEK || diff < -reconciliationToleranceSEK {
		return nil, domain.NewReconciliationError("job", expected, subtotal)
	}

	invoice := &domain.Invoice{
		JobID:     &job.ID,
		Status:    domain.InvoiceStatusDraft,
		LineItems: lines,
		Subtotal:  subtotal,
	}

	var rotRutType *domain.RotRutType
	if job.QuoteID != nil {
		invoice.QuoteID = job.QuoteID
		if quote, qerr := s.quoteRepo.GetByID(ctx, *job.QuoteID); qerr == nil {
			invoice.CustomerID = quote.CustomerID
			rotRutType = quote.RotRutType
		}
	}
	if invoice.CustomerID == nil && job.Booking != nil {
		invoice.CustomerID = job.Booking.CustomerID
	}
	s.applyAmounts(invoice, s.engine.LaborDeduction(labor, rotRutType), rotRutType)

	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to create invoice: %w", err)
	}

	now := time.Now().UTC()
	affected, err := s.jobRepo.UpdateStatusConditional(ctx, jobID, domain.JobStatusCompleted, map[string]interface{}{
		"status":     domain.JobStatusInvoiced,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewConcurrentModificationError("job", jobID)
	}

	s.logActivity(ctx, invoice.ID, "Faktura skapad",
		fmt.Sprintf("Fakturautkast skapat från slutfört uppdrag, %d kr", subtotal))

	return s.GetByID(ctx, invoice.ID)
}

// Send transitions draft -> sent. The invoice number and public token are
// assigned on the first send; the due date defaults to the configured payment
// term when the caller does not set one.
func (s *InvoiceService) Send(ctx context.Context, id uuid.UUID, req *domain.SendInvoiceRequest) (*domain.InvoiceDTO, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if invoice.Status != domain.InvoiceStatusDraft {
		return nil, domain.NewInvalidStateError("invoice", string(invoice.Status), "send")
	}

	now := time.Now().UTC()

	number := invoice.InvoiceNumber
	if number == "" {
		number, err = s.numberSeq.NextDocumentNumber(ctx, domain.SequenceKindInvoice, now)
		if err != nil {
			return nil, fmt.Errorf("failed to assign invoice number: %w", err)
		}
	}
	token := invoice.PublicToken
	if token == "" {
		token, err = NewPublicToken()
		if err != nil {
			return nil, fmt.Errorf("failed to generate public token: %w", err)
		}
	}

	dueDate := now.AddDate(0, 0, s.billing.InvoiceDueDays)
	if req != nil && req.DueDate != nil {
		if req.DueDate.Before(now) {
			return nil, domain.NewValidationError("dueDate", "must be in the future")
		}
		dueDate = req.DueDate.UTC()
	}

	affected, err := s.invoiceRepo.UpdateStatusConditional(ctx, id, domain.InvoiceStatusDraft, map[string]interface{}{
		"status":         domain.InvoiceStatusSent,
		"invoice_number": number,
		"public_token":   token,
		"due_date":       dueDate,
		"sent_at":        now,
		"updated_at":     now,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewConcurrentModificationError("invoice", id)
	}

	s.logActivity(ctx, id, "Faktura skickad",
		fmt.Sprintf("Faktura %s skickad, förfaller %s", number, dueDate.Format("2006-01-02")))

	reloaded, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload invoice: %w", err)
	}
	if derr := s.dispatcher.InvoiceSent(ctx, reloaded); derr != nil {
		s.logger.Warn("failed to dispatch invoice",
			zap.String("invoice_id", id.String()), zap.Error(derr))
	}

	dto := mapper.ToInvoiceDTO(reloaded, time.Now().UTC())
	return &dto, nil
}

// MarkPaid records payment. Blocked while the source quote sits in
// pending_reaccept: the customer has not consented to the current price.
func (s *InvoiceService) MarkPaid(ctx context.Context, id uuid.UUID, req *domain.MarkInvoicePaidRequest) (*domain.InvoiceDTO, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if invoice.Status != domain.InvoiceStatusSent {
		return nil, domain.NewInvalidStateError("invoice", string(invoice.Status), "mark paid")
	}
	if req.PaidAt.IsZero() {
		return nil, domain.NewValidationError("paidAt", "payment date is required")
	}

	if invoice.QuoteID != nil {
		quote, qerr := s.quoteRepo.GetByID(ctx, *invoice.QuoteID)
		if qerr != nil && !errors.Is(qerr, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get quote: %w", qerr)
		}
		if quote != nil && quote.Status == domain.QuoteStatusPendingReaccept {
			return nil, domain.NewPreconditionError("quote is awaiting re-acceptance of a changed price")
		}
	}

	now := time.Now().UTC()
	affected, err := s.invoiceRepo.UpdateStatusConditional(ctx, id, domain.InvoiceStatusSent, map[string]interface{}{
		"status":     domain.InvoiceStatusPaid,
		"paid_at":    req.PaidAt.UTC(),
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewConcurrentModificationError("invoice", id)
	}

	s.logActivity(ctx, id, "Faktura betald",
		fmt.Sprintf("Betalning registrerad %s", req.PaidAt.Format("2006-01-02")))

	return s.GetByID(ctx, id)
}

// ApplyLedgerPayment marks the invoice with the given document number paid
// based on a settled ledger payment. Already-paid invoices are skipped so the
// sync stays idempotent; amount mismatches beyond the rounding tolerance are
// rejected for manual review.
func (s *InvoiceService) ApplyLedgerPayment(ctx context.Context, invoiceNumber string, amountSEK int64, settledAt time.Time) error {
	invoice, err := s.invoiceRepo.GetByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvoiceNotFound
		}
		return fmt.Errorf("failed to get invoice: %w", err)
	}

	if invoice.Status == domain.InvoiceStatusPaid {
		return nil
	}
	if diff := amountSEK - invoice.TotalAmount; diff > reconciliationToleranceSEK || diff < -reconciliationToleranceSEK {
		return domain.NewReconciliationError("ledger", invoice.TotalAmount, amountSEK)
	}

	_, err = s.MarkPaid(ctx, invoice.ID, &domain.MarkInvoicePaidRequest{PaidAt: settledAt})
	return err
}

// ListOverdueInvoices returns sent unpaid invoices past their due date,
// for the reminder scan
func (s *InvoiceService) ListOverdueInvoices(ctx context.Context) ([]domain.Invoice, error) {
	return s.invoiceRepo.ListOverdue(ctx)
}

// Cancel voids a draft or sent invoice
func (s *InvoiceService) Cancel(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	switch invoice.Status {
	case domain.InvoiceStatusDraft, domain.InvoiceStatusSent:
	default:
		return nil, domain.NewInvalidStateError("invoice", string(invoice.Status), "cancel")
	}

	from := []domain.InvoiceStatus{domain.InvoiceStatusDraft, domain.InvoiceStatusSent}
	affected, err := s.invoiceRepo.UpdateStatusConditionalAny(ctx, id, from, map[string]interface{}{
		"status":     domain.InvoiceStatusCancelled,
		"updated_at": time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewConcurrentModificationError("invoice", id)
	}

	s.logActivity(ctx, id, "Faktura makulerad", "Fakturan makulerades")

	return s.GetByID(ctx, id)
}

// UpdateAdminNote edits the internal note. This is the only mutation allowed
// on a paid invoice.
func (s *InvoiceService) UpdateAdminNote(ctx context.Context, id uuid.UUID, req *domain.UpdateInvoiceNoteRequest) (*domain.InvoiceDTO, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	invoice.AdminNote = req.AdminNote
	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, fmt.Errorf("failed to update invoice: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*domain.InvoiceDTO, error) {
	invoice, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToInvoiceDTO(invoice, time.Now().UTC())
	return &dto, nil
}

// GetByPublicToken resolves the customer-facing invoice view
func (s *InvoiceService) GetByPublicToken(ctx context.Context, token string) (*domain.InvoiceDTO, error) {
	invoice, err := s.invoiceRepo.GetByPublicToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	dto := mapper.ToInvoiceDTO(invoice, time.Now().UTC())
	return &dto, nil
}

func (s *InvoiceService) List(ctx context.Context, page, pageSize int, status string) ([]domain.InvoiceDTO, int64, error) {
	var st domain.InvoiceStatus
	if status != "" {
		st = domain.InvoiceStatus(status)
		switch st {
		case domain.InvoiceStatusDraft, domain.InvoiceStatusSent,
			domain.InvoiceStatusPaid, domain.InvoiceStatusCancelled:
		default:
			return nil, 0, domain.NewValidationError("status", "unknown invoice status")
		}
	}

	invoices, total, err := s.invoiceRepo.List(ctx, page, pageSize, st)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invoices: %w", err)
	}

	now := time.Now().UTC()
	dtos := make([]domain.InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = mapper.ToInvoiceDTO(&invoices[i], now)
	}
	return dtos, total, nil
}

func (s *InvoiceService) load(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return invoice, nil
}

// applyAmounts fills VAT, deduction and total from the subtotal. VAT applies
// before the ROT/RUT deduction; the payable total never goes negative.
func (s *InvoiceService) applyAmounts(invoice *domain.Invoice, deduction int64, rotRutType *domain.RotRutType) {
	invoice.VATAmount = roundSEK(float64(invoice.Subtotal) * s.billing.VATPercent / 100)
	if rotRutType != nil && *rotRutType == domain.RotRutTypeRUT {
		invoice.RutAmount = deduction
	} else if deduction > 0 {
		invoice.RotAmount = deduction
	}
	total := invoice.Subtotal - invoice.DiscountAmount + invoice.VATAmount - invoice.RotAmount - invoice.RutAmount
	if total < 0 {
		total = 0
	}
	invoice.TotalAmount = total
}

func (s *InvoiceService) logActivity(ctx context.Context, invoiceID uuid.UUID, title, body string) {
	entry := &domain.ActivityLog{
		TargetType: domain.TargetInvoice,
		TargetID:   invoiceID,
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
