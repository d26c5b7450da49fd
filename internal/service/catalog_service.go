package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/mapper"
	"github.com/hemverk/order-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService manages the admin service catalog and its addons
type CatalogService struct {
	serviceRepo *repository.ServiceRepository
	addonRepo   *repository.ServiceAddonRepository
	logger      *zap.Logger
}

func NewCatalogService(
	serviceRepo *repository.ServiceRepository,
	addonRepo *repository.ServiceAddonRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		serviceRepo: serviceRepo,
		addonRepo:   addonRepo,
		logger:      logger,
	}
}

func (s *CatalogService) CreateService(ctx context.Context, req *domain.CreateServiceRequest) (*domain.ServiceDTO, error) {
	priceType := req.PriceType
	if priceType == "" {
		priceType = domain.PriceTypeFixed
	}
	if !priceType.IsValid() {
		return nil, domain.NewValidationError("priceType", "unknown price type")
	}
	location := req.Location
	if location == "" {
		location = domain.ServiceLocationIndoor
	}

	service := &domain.Service{
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		PriceUnit:   req.PriceUnit,
		PriceType:   priceType,
		RotEligible: req.RotEligible,
		RutEligible: req.RutEligible,
		Location:    location,
		LaborShare:  1.0,
		SortOrder:   req.SortOrder,
		IsActive:    true,
	}
	if req.LaborShare != nil {
		service.LaborShare = *req.LaborShare
	}

	if err := s.serviceRepo.Create(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}

	return s.GetService(ctx, service.ID)
}

func (s *CatalogService) GetService(ctx context.Context, id uuid.UUID) (*domain.ServiceDTO, error) {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	dto := mapper.ToServiceDTO(service)
	return &dto, nil
}

func (s *CatalogService) ListServices(ctx context.Context, activeOnly bool) ([]domain.ServiceDTO, error) {
	services, err := s.serviceRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	dtos := make([]domain.ServiceDTO, len(services))
	for i := range services {
		dtos[i] = mapper.ToServiceDTO(&services[i])
	}
	return dtos, nil
}

// UpdateService edits a catalog entry. Deactivation is always allowed;
// referenced services are hidden, never deleted.
func (s *CatalogService) UpdateService(ctx context.Context, id uuid.UUID, req *domain.UpdateServiceRequest) (*domain.ServiceDTO, error) {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	if req.PriceType != "" && !req.PriceType.IsValid() {
		return nil, domain.NewValidationError("priceType", "unknown price type")
	}

	service.Category = req.Category
	service.Title = req.Title
	service.Description = req.Description
	service.BasePrice = req.BasePrice
	service.PriceUnit = req.PriceUnit
	if req.PriceType != "" {
		service.PriceType = req.PriceType
	}
	service.RotEligible = req.RotEligible
	service.RutEligible = req.RutEligible
	if req.Location != "" {
		service.Location = req.Location
	}
	if req.LaborShare != nil {
		service.LaborShare = *req.LaborShare
	}
	service.SortOrder = req.SortOrder
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}

	if err := s.serviceRepo.Update(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to update service: %w", err)
	}

	return s.GetService(ctx, id)
}

// DeleteService deactivates a referenced service and hard-deletes an
// unreferenced one. Historical bookings keep their service reference intact.
func (s *CatalogService) DeleteService(ctx context.Context, id uuid.UUID) error {
	service, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrServiceNotFound
		}
		return fmt.Errorf("failed to get service: %w", err)
	}

	count, err := s.serviceRepo.GetBookingsCount(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count bookings: %w", err)
	}
	if count > 0 {
		service.IsActive = false
		if err := s.serviceRepo.Update(ctx, service); err != nil {
			return fmt.Errorf("failed to deactivate service: %w", err)
		}
		s.logger.Info("service deactivated instead of deleted",
			zap.String("service_id", id.String()), zap.Int("bookings", count))
		return nil
	}

	return s.serviceRepo.Delete(ctx, id)
}

// ReorderServices persists the admin drag-drop ordering
func (s *CatalogService) ReorderServices(ctx context.Context, req *domain.ReorderServicesRequest) error {
	if err := s.serviceRepo.UpdateSortOrder(ctx, req.OrderedIDs); err != nil {
		return fmt.Errorf("failed to reorder services: %w", err)
	}
	return nil
}

func (s *CatalogService) CreateAddon(ctx context.Context, serviceID uuid.UUID, req *domain.CreateServiceAddonRequest) (*domain.ServiceAddonDTO, error) {
	if _, err := s.serviceRepo.GetByID(ctx, serviceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to get service: %w", err)
	}

	addon := &domain.ServiceAddon{
		ServiceID:   serviceID,
		Title:       req.Title,
		Price:       req.Price,
		PriceUnit:   req.PriceUnit,
		RotEligible: req.RotEligible,
		RutEligible: req.RutEligible,
		Icon:        req.Icon,
		IsActive:    true,
	}
	if err := s.addonRepo.Create(ctx, addon); err != nil {
		return nil, fmt.Errorf("failed to create addon: %w", err)
	}

	dto := mapper.ToServiceAddonDTO(addon)
	return &dto, nil
}

func (s *CatalogService) UpdateAddon(ctx context.Context, id uuid.UUID, req *domain.UpdateServiceAddonRequest) (*domain.ServiceAddonDTO, error) {
	addon, err := s.addonRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAddonNotFound
		}
		return nil, fmt.Errorf("failed to get addon: %w", err)
	}

	addon.Title = req.Title
	addon.Price = req.Price
	addon.PriceUnit = req.PriceUnit
	addon.RotEligible = req.RotEligible
	addon.RutEligible = req.RutEligible
	addon.Icon = req.Icon
	if req.IsActive != nil {
		addon.IsActive = *req.IsActive
	}

	if err := s.addonRepo.Update(ctx, addon); err != nil {
		return nil, fmt.Errorf("failed to update addon: %w", err)
	}

	dto := mapper.ToServiceAddonDTO(addon)
	return &dto, nil
}

func (s *CatalogService) ListAddons(ctx context.Context, serviceID uuid.UUID, activeOnly bool) ([]domain.ServiceAddonDTO, error) {
	addons, err := s.addonRepo.ListByService(ctx, serviceID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list addons: %w", err)
	}
	dtos := make([]domain.ServiceAddonDTO, len(addons))
	for i := range addons {
		dtos[i] = mapper.ToServiceAddonDTO(&addons[i])
	}
	return dtos, nil
}
