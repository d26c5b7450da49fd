package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"gorm.io/gorm"
)

type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("quote_line_items.sort_order ASC")
		}).
		Preload("Booking").
		Preload("Booking.Service").
		Preload("Booking.Addons").
		Preload("Customer").
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetByBookingID returns the quote for a booking (1:1)
func (r *QuoteRepository) GetByBookingID(ctx context.Context, bookingID uuid.UUID) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("booking_id = ?", bookingID).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// GetByPublicToken resolves a quote from a customer-facing capability token
func (r *QuoteRepository) GetByPublicToken(ctx context.Context, token string) (*domain.Quote, error) {
	var quote domain.Quote
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("quote_line_items.sort_order ASC")
		}).
		Preload("Customer").
		Where("public_token = ?", token).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *QuoteRepository) Update(ctx context.Context, quote *domain.Quote) error {
	return r.db.WithContext(ctx).Save(quote).Error
}

// ReplaceLineItems swaps the quote's line items inside a transaction and
// writes the recomputed totals in the same commit. The totals write is
// conditioned on the status the caller read, so a quote the customer accepted
// in the meantime is never overwritten. Zero affected rows means the quote
// changed under the caller and nothing was written.
func (r *QuoteRepository) ReplaceLineItems(ctx context.Context, quoteID uuid.UUID, from domain.QuoteStatus, items []domain.QuoteLineItem, totals map[string]interface{}) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Quote{}).
			Where("id = ? AND status = ?", quoteID, from).
			Updates(totals)
		if result.Error != nil {
			return fmt.Errorf("failed to update quote totals: %w", result.Error)
		}
		affected = result.RowsAffected
		if affected == 0 {
			return nil
		}
		if err := tx.Where("quote_id = ?", quoteID).Delete(&domain.QuoteLineItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete quote line items: %w", err)
		}
		for i := range items {
			items[i].QuoteID = quoteID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("failed to create quote line items: %w", err)
			}
		}
		return nil
	})
	return affected, err
}

func (r *QuoteRepository) List(ctx context.Context, page, pageSize int, status domain.QuoteStatus) ([]domain.Quote, int64, error) {
	var quotes []domain.Quote
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quote{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Customer").
		Offset(offset).Limit(pageSize).
		Order("created_at DESC").
		Find(&quotes).Error

	return quotes, total, err
}

// ListExpired returns sent quotes whose validity window has passed.
// Used by the notifier job; statuses are never mutated here.
func (r *QuoteRepository) ListExpired(ctx context.Context) ([]domain.Quote, error) {
	var quotes []domain.Quote
	err := r.db.WithContext(ctx).
		Where("status IN ?", []domain.QuoteStatus{domain.QuoteStatusSent, domain.QuoteStatusViewed}).
		Where("valid_until IS NOT NULL AND valid_until < CURRENT_TIMESTAMP").
		Find(&quotes).Error
	return quotes, err
}

// UpdateStatusConditional performs a guarded status transition:
// UPDATE ... WHERE id = ? AND status = ?. Zero affected rows means a
// concurrent modification and the caller must reload.
func (r *QuoteRepository) UpdateStatusConditional(ctx context.Context, id uuid.UUID, from domain.QuoteStatus, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update quote status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UpdateStatusConditionalAny guards the transition against a set of allowed
// source statuses (accept from sent or viewed, for example).
func (r *QuoteRepository) UpdateStatusConditionalAny(ctx context.Context, id uuid.UUID, from []domain.QuoteStatus, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Quote{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update quote status: %w", result.Error)
	}
	return result.RowsAffected, nil
}
