package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"gorm.io/gorm"
)

// ActivityLogRepository handles the append-only lifecycle event log.
// Entries are only ever created and listed.
type ActivityLogRepository struct {
	db *gorm.DB
}

func NewActivityLogRepository(db *gorm.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

func (r *ActivityLogRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *ActivityLogRepository) ListByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, limit int) ([]domain.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []domain.ActivityLog
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
