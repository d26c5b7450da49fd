package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/mapper"
	"github.com/hemverk/order-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OrderService is a read-side composition over the lifecycle documents of one
// order: booking, quote, job and invoice. It never mutates anything.
type OrderService struct {
	bookingRepo *repository.BookingRepository
	quoteRepo   *repository.QuoteRepository
	jobRepo     *repository.JobRepository
	invoiceRepo *repository.InvoiceRepository
	logger      *zap.Logger
}

func NewOrderService(
	bookingRepo *repository.BookingRepository,
	quoteRepo *repository.QuoteRepository,
	jobRepo *repository.JobRepository,
	invoiceRepo *repository.InvoiceRepository,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		bookingRepo: bookingRepo,
		quoteRepo:   quoteRepo,
		jobRepo:     jobRepo,
		invoiceRepo: invoiceRepo,
		logger:      logger,
	}
}

// Get assembles the order aggregate rooted at a booking
func (s *OrderService) Get(ctx context.Context, bookingID uuid.UUID) (*domain.OrderDTO, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return s.assemble(ctx, booking)
}

// List returns order aggregates for the admin overview, paged over bookings
func (s *OrderService) List(ctx context.Context, page, pageSize int, status string) ([]domain.OrderDTO, int64, error) {
	var st domain.BookingStatus
	if status != "" {
		st = domain.BookingStatus(status)
		if !st.IsValid() {
			return nil, 0, domain.NewValidationError("status", "unknown booking status")
		}
	}

	bookings, total, err := s.bookingRepo.List(ctx, page, pageSize, st)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	orders := make([]domain.OrderDTO, 0, len(bookings))
	for i := range bookings {
		order, aerr := s.assemble(ctx, &bookings[i])
		if aerr != nil {
			return nil, 0, aerr
		}
		orders = append(orders, *order)
	}
	return orders, total, nil
}

func (s *OrderService) assemble(ctx context.Context, booking *domain.Booking) (*domain.OrderDTO, error) {
	now := time.Now().UTC()

	bookingDTO := mapper.ToBookingDTO(booking)
	order := &domain.OrderDTO{
		Stage:   domain.OrderStageRequest,
		Booking: &bookingDTO,
	}
	if booking.Customer != nil {
		customerDTO := mapper.ToCustomerDTO(booking.Customer)
		order.Customer = &customerDTO
	}

	quote, err := s.quoteRepo.GetByBookingID(ctx, booking.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to get quote: %w", err)
		}
		return order, nil
	}
	quoteDTO := mapper.ToQuoteDTO(quote, now)
	order.Quote = &quoteDTO
	order.Stage = domain.OrderStageQuoted
	if quote.Status == domain.QuoteStatusAccepted || quote.Status == domain.QuoteStatusPendingReaccept {
		order.Stage = domain.OrderStageAccepted
	}

	job, err := s.jobRepo.GetByQuoteID(ctx, quote.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if job != nil {
		jobDTO := mapper.ToJobDTO(job)
		order.Job = &jobDTO
		switch job.Status {
		case domain.JobStatusAssigned, domain.JobStatusInProgress, domain.JobStatusPaused, domain.JobStatusCompleted:
			order.Stage = domain.OrderStageInWork
		}
	}

	invoice, err := s.invoiceRepo.GetByQuoteID(ctx, quote.ID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if invoice != nil {
		invoiceDTO := mapper.ToInvoiceDTO(invoice, now)
		order.Invoice = &invoiceDTO
		switch invoice.Status {
		case domain.InvoiceStatusSent, domain.InvoiceStatusDraft:
			order.Stage = domain.OrderStageInvoiced
		case domain.InvoiceStatusPaid:
			order.Stage = domain.OrderStagePaid
		case domain.InvoiceStatusCancelled:
			order.Stage = domain.OrderStageClosed
		}
	}

	return order, nil
}
