package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"gorm.io/gorm"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create persists the invoice together with its line items
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("invoice_line_items.sort_order ASC")
		}).
		Preload("Job").
		Preload("Quote").
		Preload("Customer").
		Where("id = ?", id).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByPublicToken resolves an invoice from a customer-facing capability token
func (r *InvoiceRepository) GetByPublicToken(ctx context.Context, token string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("invoice_line_items.sort_order ASC")
		}).
		Preload("Customer").
		Where("public_token = ?", token).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("job_id = ?", jobID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) GetByQuoteID(ctx context.Context, quoteID uuid.UUID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("LineItems").
		Where("quote_id = ?", quoteID).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetByInvoiceNumber resolves an invoice by its document number, used by the
// ledger sync job to match settled payments.
func (r *InvoiceRepository) GetByInvoiceNumber(ctx context.Context, number string) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := r.db.WithContext(ctx).
		Where("invoice_number = ?", number).
		First(&invoice).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, invoice *domain.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *InvoiceRepository) List(ctx context.Context, page, pageSize int, status domain.InvoiceStatus) ([]domain.Invoice, int64, error) {
	var invoices []domain.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Invoice{})
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
		Find(&invoices).Error

	return invoices, total, err
}

// ListOverdue returns sent, unpaid invoices past their due date.
// Overdue is derived at read time; the stored status remains "sent".
func (r *InvoiceRepository) ListOverdue(ctx context.Context) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Where("status = ? AND paid_at IS NULL AND due_date IS NOT NULL AND due_date < CURRENT_TIMESTAMP",
			domain.InvoiceStatusSent).
		Find(&invoices).Error
	return invoices, err
}

// ListUnpaidSent returns sent invoices awaiting payment, used by ledger sync
func (r *InvoiceRepository) ListUnpaidSent(ctx context.Context) ([]domain.Invoice, error) {
	var invoices []domain.Invoice
	err := r.db.WithContext(ctx).
		Where("status = ? AND paid_at IS NULL AND invoice_number <> ''", domain.InvoiceStatusSent).
		Find(&invoices).Error
	return invoices, err
}

// UpdateStatusConditional performs a guarded status transition.
// Zero affected rows means a concurrent modification.
func (r *InvoiceRepository) UpdateStatusConditional(ctx context.Context, id uuid.UUID, from domain.InvoiceStatus, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update invoice status: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UpdateStatusConditionalAny guards the transition against a set of source statuses
func (r *InvoiceRepository) UpdateStatusConditionalAny(ctx context.Context, id uuid.UUID, from []domain.InvoiceStatus, updates map[string]interface{}) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&domain.Invoice{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to update invoice status: %w", result.Error)
	}
	return result.RowsAffected, nil
}
