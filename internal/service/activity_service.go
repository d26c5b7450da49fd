package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/mapper"
	"github.com/hemverk/order-api/internal/repository"
	"go.uber.org/zap"
)

// ActivityService exposes the append-only activity feed per lifecycle document
type ActivityService struct {
	activityRepo *repository.ActivityLogRepository
	logger       *zap.Logger
}

func NewActivityService(activityRepo *repository.ActivityLogRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{activityRepo: activityRepo, logger: logger}
}

func (s *ActivityService) ListByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, limit int) ([]domain.ActivityLogDTO, error) {
	switch targetType {
	case domain.TargetBooking, domain.TargetQuote, domain.TargetJob, domain.TargetInvoice:
	default:
		return nil, domain.NewValidationError("targetType", "unknown target type")
	}

	entries, err := s.activityRepo.ListByTarget(ctx, targetType, targetID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}

	dtos := make([]domain.ActivityLogDTO, len(entries))
	for i := range entries {
		dtos[i] = mapper.ToActivityLogDTO(&entries[i])
	}
	return dtos, nil
}
