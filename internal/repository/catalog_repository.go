package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"gorm.io/gorm"
)

// ServiceRepository handles database operations for the service catalog
type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, service *domain.Service) error {
	return r.db.WithContext(ctx).Create(service).Error
}

func (r *ServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	var service domain.Service
	err := r.db.WithContext(ctx).Preload("Addons").Where("id = ?", id).First(&service).Error
	if err != nil {
		return nil, err
	}
	return &service, nil
}

func (r *ServiceRepository) Update(ctx context.Context, service *domain.Service) error {
	return r.db.WithContext(ctx).Save(service).Error
}

// Delete removes an unreferenced service and its addons. The service layer
// deactivates instead when bookings reference the service.
func (r *ServiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("service_id = ?", id).Delete(&domain.ServiceAddon{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Service{}, "id = ?", id).Error
	})
}

// List returns catalog services ordered by category and sort order.
// When activeOnly is set, deactivated services are hidden (public wizard view).
func (r *ServiceRepository) List(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	var services []domain.Service
	query := r.db.WithContext(ctx).Preload("Addons")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("category ASC, sort_order ASC, title ASC").Find(&services).Error
	return services, err
}

// UpdateSortOrder persists the admin drag-drop ordering in a single transaction
func (r *ServiceRepository) UpdateSortOrder(ctx context.Context, orderedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			if err := tx.Model(&domain.Service{}).Where("id = ?", id).
				Update("sort_order", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetBookingsCount returns how many bookings reference the service.
// Referenced services are deactivated instead of deleted.
func (r *ServiceRepository) GetBookingsCount(ctx context.Context, serviceID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).Where("service_id = ?", serviceID).Count(&count).Error
	return int(count), err
}

// ServiceAddonRepository handles database operations for catalog addons
type ServiceAddonRepository struct {
	db *gorm.DB
}

func NewServiceAddonRepository(db *gorm.DB) *ServiceAddonRepository {
	return &ServiceAddonRepository{db: db}
}

func (r *ServiceAddonRepository) Create(ctx context.Context, addon *domain.ServiceAddon) error {
	return r.db.WithContext(ctx).Create(addon).Error
}

func (r *ServiceAddonRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ServiceAddon, error) {
	var addon domain.ServiceAddon
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&addon).Error
	if err != nil {
		return nil, err
	}
	return &addon, nil
}

func (r *ServiceAddonRepository) Update(ctx context.Context, addon *domain.ServiceAddon) error {
	return r.db.WithContext(ctx).Save(addon).Error
}

func (r *ServiceAddonRepository) ListByService(ctx context.Context, serviceID uuid.UUID, activeOnly bool) ([]domain.ServiceAddon, error) {
	var addons []domain.ServiceAddon
	query := r.db.WithContext(ctx).Where("service_id = ?", serviceID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("title ASC").Find(&addons).Error
	return addons, err
}

// GetByIDs loads addons by id preserving no particular order
func (r *ServiceAddonRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.ServiceAddon, error) {
	var addons []domain.ServiceAddon
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&addons).Error
	return addons, err
}
