package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create persists the booking together with its addon snapshot rows
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Addons").
		Preload("Service").
		Preload("Customer").
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) error {
	return r.db.WithContext(ctx).Save(booking).Error
}

// Delete soft-deletes the booking
func (r *BookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Booking{}, "id = ?", id).Error
}

func (r *BookingRepository) List(ctx context.Context, page, pageSize int, status domain.BookingStatus) ([]domain.Booking, int64, error) {
	var bookings []domain.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Booking{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Addons").
		Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&bookings).Error

	return bookings, total, err
}

// ListByCustomer returns all bookings for a customer, newest first
func (r *BookingRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]domain.Booking, error) {
	var bookings []domain.Booking
	err := r.db.WithContext(ctx).
		Preload("Addons").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

// CountUnseen returns the number of new requests not yet acknowledged by an
// admin. Powers the admin notification badge. Requests that already moved past
// new no longer need attention, acknowledged or not.
func (r *BookingRepository) CountUnseen(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("status = ? AND seen_at IS NULL", domain.BookingStatusNew).
		Count(&count).Error
	return count, err
}

// ListRecent returns the newest unhandled requests for the admin notification feed
func (r *BookingRepository) ListRecent(ctx context.Context, limit int) ([]domain.Booking, error) {
	if limit <= 0 {
		limit = 10
	}
	var bookings []domain.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.BookingStatusNew).
		Order("created_at DESC").
		Limit(limit).
		Find(&bookings).Error
	return bookings, err
}

// UpdateStatusConditional performs a guarded status transition:
// UPDATE ... WHERE id = ? AND status = ?. Zero affected rows means the booking
// was concurrently modified (or the transition is no longer valid) and the
// caller must reload and re-evaluate.
func (r *BookingRepository) UpdateStatusConditional(ctx context.Context, id uuid.UUID, from domain.BookingStatus, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update booking status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// MarkSeen stamps seen_at once; already-seen bookings are left untouched
func (r *BookingRepository) MarkSeen(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND seen_at IS NULL", id).
		Updates(updates)
	return result.Error
}
