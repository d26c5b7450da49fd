package service

import (
	"context"
	"errors"
	"fmt"
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

type BookingService struct {
	bookingRepo  *repository.BookingRepository
	serviceRepo  *repository.ServiceRepository
	addonRepo    *repository.ServiceAddonRepository
	customerRepo *repository.CustomerRepository
	activityRepo *repository.ActivityLogRepository
	engine       *pricing.Engine
	logger       *zap.Logger
}

func NewBookingService(
	bookingRepo *repository.BookingRepository,
	serviceRepo *repository.ServiceRepository,
	addonRepo *repository.ServiceAddonRepository,
	customerRepo *repository.CustomerRepository,
	activityRepo *repository.ActivityLogRepository,
	engine *pricing.Engine,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo:  bookingRepo,
		serviceRepo:  serviceRepo,
		addonRepo:    addonRepo,
		customerRepo: customerRepo,
		activityRepo: activityRepo,
		engine:       engine,
		logger:       logger,
	}
}

// Create registers an incoming service request from the public wizard.
// Addon choices are snapshotted and the final price is computed from the
// snapshot, so later catalog edits never change this request.
func (s *BookingService) Create(ctx context.Context, req *domain.CreateBookingRequest) (*domain.BookingDTO, error) {
	booking := &domain.Booking{
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		PostalCode:   req.PostalCode,
		City:         req.City,
		Description:  req.Description,
		HoursEst:     req.HoursEst,
		RotRutType:   req.RotRutType,
		Status:       domain.BookingStatusNew,
		CreatedBy:    domain.CreatedByGuest,
		Mode:         domain.BookingModeStandard,
		PriceType:    domain.PriceTypeFixed,
	}
	if req.Mode != "" {
		booking.Mode = req.Mode
	}
	if req.RotRutType != nil && !req.RotRutType.IsValid() {
		return nil, domain.NewValidationError("rotRutType", "must be ROT or RUT")
	}

	// Authenticated customers get linked; guests carry only the contact snapshot
	if req.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *req.CustomerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCustomerNotFound
			}
			return nil, fmt.Errorf("failed to get customer: %w", err)
		}
		booking.CustomerID = &customer.ID
		booking.CreatedBy = domain.CreatedByUser
	}

	var laborShare = 1.0
	var baseRot, baseRut bool

	if req.ServiceID != nil {
		svc, err := s.serviceRepo.GetByID(ctx, *req.ServiceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrServiceNotFound
			}
			return nil, fmt.Errorf("failed to get service: %w", err)
		}
		if !svc.IsActive {
			return nil, domain.NewValidationError("serviceId", "service is not active")
		}
		booking.ServiceID = &svc.ID
		booking.ServiceTitle = svc.Title
		booking.PriceType = svc.PriceType
		booking.BasePrice = svc.BasePrice
		laborShare = svc.LaborShare
		baseRot = svc.RotEligible
		baseRut = svc.RutEligible

		if svc.PriceType == domain.PriceTypeHourly {
			booking.HourlyRate = svc.BasePrice
		}
	}

	// Snapshot selected addons through the selection, enforcing scope and
	// activity rules and de-duplicating repeated picks.
	if len(req.Addons) > 0 {
		if req.ServiceID == nil {
			return nil, domain.NewValidationError("addons", "addons require a service")
		}
		selection := NewAddonSelection(*req.ServiceID)
		for _, pick := range req.Addons {
			addon, err := s.addonRepo.GetByID(ctx, pick.AddonID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrAddonNotFound
				}
				return nil, fmt.Errorf("failed to get addon: %w", err)
			}
			if err := selection.Select(*addon, pick.Quantity); err != nil {
				return nil, err
			}
		}
		booking.Addons = selection.Snapshot()
	}

	// Price the snapshot through the engine; FinalPrice is its total with no
	// discount and no deduction applied at request time.
	lines := make([]pricing.Line, len(booking.Addons))
	for i, a := range booking.Addons {
		lines[i] = pricing.Line{
			Description: a.Title,
			UnitPrice:   a.UnitPrice,
			Quantity:    a.Quantity,
			RotEligible: a.RotEligible,
			RutEligible: a.RutEligible,
		}
	}
	breakdown, err := s.engine.Compute(pricing.Input{
		BasePrice:       booking.BasePrice,
		BaseRotEligible: baseRot,
		BaseRutEligible: baseRut,
		Addons:          lines,
		LaborShare:      laborShare,
	})
	if err != nil {
		return nil, err
	}
	booking.FinalPrice = breakdown.SubtotalWork + breakdown.SubtotalMaterial

	if err := s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}

	s.logActivity(ctx, booking.ID, "Förfrågan mottagen",
		fmt.Sprintf("Ny förfrågan från %s (%s)", booking.ContactName, booking.ContactEmail))

	dto := mapper.ToBookingDTO(booking)
	return &dto, nil
}

// ComputePrice runs a pricing computation for the booking wizard without
// persisting anything
func (s *BookingService) ComputePrice(ctx context.Context, req *domain.ComputePriceRequest) (*domain.PriceBreakdownDTO, error) {
	svc, err := s.serviceRepo.GetByID(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	if req.RotRutType != nil && !req.RotRutType.IsValid() {
		return nil, domain.NewValidationError("rotRutType", "must be ROT or RUT")
	}

	selection := NewAddonSelection(req.ServiceID)
	for _, pick := range req.Addons {
		addon, err := s.addonRepo.GetByID(ctx, pick.AddonID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAddonNotFound
			}
			return nil, fmt.Errorf("failed to get addon: %w", err)
		}
		if err := selection.Select(*addon, pick.Quantity); err != nil {
			return nil, err
		}
	}

	snapshot := selection.Snapshot()
	lines := make([]pricing.Line, len(snapshot))
	for i, a := range snapshot {
		lines[i] = pricing.Line{
			Description: a.Title,
			UnitPrice:   a.UnitPrice,
			Quantity:    a.Quantity,
			RotEligible: a.RotEligible,
			RutEligible: a.RutEligible,
		}
	}
	breakdown, err := s.engine.Compute(pricing.Input{
		BasePrice:       svc.BasePrice,
		BaseRotEligible: svc.RotEligible,
		BaseRutEligible: svc.RutEligible,
		Addons:          lines,
		DiscountPercent: req.DiscountPercent,
		RotRut:          req.RotRutType,
		LaborShare:      svc.LaborShare,
	})
	if err != nil {
		return nil, err
	}

	return &domain.PriceBreakdownDTO{
		SubtotalWork:     breakdown.SubtotalWork,
		SubtotalMaterial: breakdown.SubtotalMaterial,
		Deduction:        breakdown.Deduction,
		DiscountAmount:   breakdown.DiscountAmount,
		Total:            breakdown.Total,
		Warnings:         breakdown.Warnings,
	}, nil
}

// GetByID returns a single booking
func (s *BookingService) GetByID(ctx context.Context, id uuid.UUID) (*domain.BookingDTO, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	dto := mapper.ToBookingDTO(booking)
	return &dto, nil
}

// List returns bookings with optional status filter
func (s *BookingService) List(ctx context.Context, page, pageSize int, status domain.BookingStatus) ([]domain.BookingDTO, int64, error) {
	if status != "" {
		switch status {
		case domain.BookingStatusNew, domain.BookingStatusConfirmed,
			domain.BookingStatusCompleted, domain.BookingStatusCancelled:
		default:
			return nil, 0, domain.NewValidationError("status", "unknown booking status")
		}
	}

	bookings, total, err := s.bookingRepo.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]domain.BookingDTO, len(bookings))
	for i := range bookings {
		dtos[i] = mapper.ToBookingDTO(&bookings[i])
	}
	return dtos, total, nil
}

// MarkSeen stamps admin acknowledgment. Seen is orthogonal to status: a
// cancelled request can still be acknowledged, and acknowledging never moves
// the lifecycle.
func (s *BookingService) MarkSeen(ctx context.Context, id uuid.UUID) (*domain.BookingDTO, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.SeenAt == nil {
		now := time.Now().UTC()
		if err := s.bookingRepo.MarkSeen(ctx, id, map[string]interface{}{
			"seen_at":    now,
			"updated_at": now,
		}); err != nil {
			return nil, fmt.Errorf("failed to mark booking seen: %w", err)
		}
		booking.SeenAt = &now
	}

	dto := mapper.ToBookingDTO(booking)
	return &dto, nil
}

// Confirm transitions new -> confirmed
func (s *BookingService) Confirm(ctx context.Context, id uuid.UUID) (*domain.BookingDTO, error) {
	return s.transition(ctx, id, domain.BookingStatusNew, domain.BookingStatusConfirmed,
		"Förfrågan bekräftad", "confirm")
}

// Complete transitions confirmed -> completed
func (s *BookingService) Complete(ctx context.Context, id uuid.UUID) (*domain.BookingDTO, error) {
	return s.transition(ctx, id, domain.BookingStatusConfirmed, domain.BookingStatusCompleted,
		"Förfrågan slutförd", "complete")
}

// Cancel transitions new/confirmed -> cancelled
func (s *BookingService) Cancel(ctx context.Context, id uuid.UUID, reason string) (*domain.BookingDTO, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.Status.IsTerminal() {
		return nil, domain.NewInvalidStateError("booking", string(booking.Status), "cancel")
	}

	now := time.Now().UTC()
	affected, err := s.bookingRepo.UpdateStatusConditional(ctx, id, booking.Status, map[string]interface{}{
		"status":     domain.BookingStatusCancelled,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewConcurrentModificationError("booking", id)
	}

	body := "Förfrågan avbokad"
	if reason != "" {
		body = fmt.Sprintf("Förfrågan avbokad: %s", reason)
	}
	s.logActivity(ctx, id, "Förfrågan avbokad", body)

	return s.GetByID(ctx, id)
}

// Delete soft-deletes the booking
func (s *BookingService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.bookingRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("failed to get booking: %w", err)
	}
	return s.bookingRepo.Delete(ctx, id)
}

// UnseenCount returns the number of unacknowledged requests for the admin badge
func (s *BookingService) UnseenCount(ctx context.Context) (int64, error) {
	return s.bookingRepo.CountUnseen(ctx)
}

// Recent returns the newest requests for the admin notification feed
func (s *BookingService) Recent(ctx context.Context, limit int) ([]domain.BookingDTO, error) {
	bookings, err := s.bookingRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent bookings: %w", err)
	}
	dtos := make([]domain.BookingDTO, len(bookings))
	for i := range bookings {
		dtos[i] = mapper.ToBookingDTO(&bookings[i])
	}
	return dtos, nil
}

func (s *BookingService) transition(ctx context.Context, id uuid.UUID, from, to domain.BookingStatus, activityTitle, operation string) (*domain.BookingDTO, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.Status != from {
		return nil, domain.NewInvalidStateError("booking", string(booking.Status), operation)
	}

	now := time.Now().UTC()
	affected, err := s.bookingRepo.UpdateStatusConditional(ctx, id, from, map[string]interface{}{
		"status":     to,
		"updated_at": now,
	})
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, domain.NewConcurrentModificationError("booking", id)
	}

	s.logActivity(ctx, id, activityTitle, fmt.Sprintf("Status: %s -> %s", from, to))

	return s.GetByID(ctx, id)
}

// logActivity creates an activity log entry for a booking
func (s *BookingService) logActivity(ctx context.Context, bookingID uuid.UUID, title, body string) {
	entry := &domain.ActivityLog{
		TargetType: domain.TargetBooking,
		TargetID:   bookingID,
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
