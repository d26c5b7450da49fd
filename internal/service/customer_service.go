package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/mapper"
	"github.com/hemverk/order-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CustomerService manages customer records. Customers referenced by orders are
// only ever soft-deleted.
type CustomerService struct {
	customerRepo *repository.CustomerRepository
	bookingRepo  *repository.BookingRepository
	logger       *zap.Logger
}

func NewCustomerService(
	customerRepo *repository.CustomerRepository,
	bookingRepo *repository.BookingRepository,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		bookingRepo:  bookingRepo,
		logger:       logger,
	}
}

func (s *CustomerService) Create(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.CustomerDTO, error) {
	customerType := req.Type
	if customerType == "" {
		customerType = domain.CustomerTypePrivate
	}
	if !customerType.IsValid() {
		return nil, domain.NewValidationError("type", "unknown customer type")
	}
	if customerType != domain.CustomerTypePrivate && req.OrgNumber == "" {
		return nil, domain.NewValidationError("orgNumber", "organization number is required for company and brf customers")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.customerRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.NewValidationError("email", "a customer with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	customer := &domain.Customer{
		Name:       req.Name,
		Type:       customerType,
		Email:      email,
		Phone:      req.Phone,
		Address:    req.Address,
		PostalCode: req.PostalCode,
		City:       req.City,
		OrgNumber:  req.OrgNumber,
		Notes:      req.Notes,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CustomerDTO, error) {
	customer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCustomerRequest) (*domain.CustomerDTO, error) {
	customer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Type != "" && !req.Type.IsValid() {
		return nil, domain.NewValidationError("type", "unknown customer type")
	}

	customer.Name = req.Name
	if req.Type != "" {
		customer.Type = req.Type
	}
	customer.Email = strings.ToLower(strings.TrimSpace(req.Email))
	customer.Phone = req.Phone
	customer.Address = req.Address
	customer.PostalCode = req.PostalCode
	customer.City = req.City
	customer.OrgNumber = req.OrgNumber
	customer.Notes = req.Notes

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	dto := mapper.ToCustomerDTO(customer)
	return &dto, nil
}

// Delete soft-deletes a customer. Customers referenced by bookings are kept
// for historical orders and the delete is refused.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	count, err := s.customerRepo.GetBookingsCount(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count bookings: %w", err)
	}
	if count > 0 {
		return ErrCustomerHasOrders
	}

	return s.customerRepo.Delete(ctx, id)
}

func (s *CustomerService) List(ctx context.Context, page, pageSize int, search string) ([]domain.CustomerDTO, int64, error) {
	customers, total, err := s.customerRepo.List(ctx, page, pageSize, search)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	dtos := make([]domain.CustomerDTO, len(customers))
	for i := range customers {
		dtos[i] = mapper.ToCustomerDTO(&customers[i])
	}
	return dtos, total, nil
}

// Bookings returns a customer's booking history
func (s *CustomerService) Bookings(ctx context.Context, id uuid.UUID) ([]domain.BookingDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.ListByCustomer(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]domain.BookingDTO, len(bookings))
	for i := range bookings {
		dtos[i] = mapper.ToBookingDTO(&bookings[i])
	}
	return dtos, nil
}

func (s *CustomerService) load(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}
