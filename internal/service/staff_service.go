package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/auth"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/mapper"
	"github.com/hemverk/order-api/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// StaffService manages staff accounts and issues JWT sessions
type StaffService struct {
	staffRepo *repository.StaffRepository
	tokens    *auth.TokenManager
	logger    *zap.Logger
}

func NewStaffService(staffRepo *repository.StaffRepository, tokens *auth.TokenManager, logger *zap.Logger) *StaffService {
	return &StaffService{
		staffRepo: staffRepo,
		tokens:    tokens,
		logger:    logger,
	}
}

// Login verifies credentials and returns a signed token. Invalid email,
// wrong password and deactivated accounts all yield the same error.
func (s *StaffService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	staff, err := s.staffRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	if !staff.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(staff.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	token, err := s.tokens.IssueToken(staff, now)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	staff.LastLoginAt = &now
	if err := s.staffRepo.Update(ctx, staff); err != nil {
		s.logger.Warn("failed to record login time",
			zap.String("staff_id", staff.ID), zap.Error(err))
	}

	s.logger.Info("staff logged in",
		zap.String("staff_id", staff.ID),
		zap.String("role", string(staff.Role)))

	return &domain.LoginResponse{
		Token: token,
		Staff: mapper.ToStaffDTO(staff),
	}, nil
}

func (s *StaffService) Create(ctx context.Context, req *domain.CreateStaffRequest) (*domain.StaffDTO, error) {
	if !req.Role.IsValid() {
		return nil, domain.NewValidationError("role", "unknown staff role")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.staffRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.NewValidationError("email", "a staff member with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	staff := &domain.Staff{
		ID:           uuid.NewString(),
		Email:        email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		DisplayName:  req.DisplayName,
		Role:         req.Role,
		PasswordHash: string(hash),
		Phone:        req.Phone,
		IsActive:     true,
	}
	if err := s.staffRepo.Create(ctx, staff); err != nil {
		return nil, fmt.Errorf("failed to create staff: %w", err)
	}

	dto := mapper.ToStaffDTO(staff)
	return &dto, nil
}

func (s *StaffService) GetByID(ctx context.Context, id string) (*domain.StaffDTO, error) {
	staff, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToStaffDTO(staff)
	return &dto, nil
}

func (s *StaffService) Update(ctx context.Context, id string, req *domain.UpdateStaffRequest) (*domain.StaffDTO, error) {
	staff, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil && !req.Role.IsValid() {
		return nil, domain.NewValidationError("role", "unknown staff role")
	}

	staff.FirstName = req.FirstName
	staff.LastName = req.LastName
	staff.DisplayName = req.DisplayName
	if req.Role != nil {
		staff.Role = *req.Role
	}
	staff.Phone = req.Phone
	if req.IsActive != nil {
		staff.IsActive = *req.IsActive
	}

	if err := s.staffRepo.Update(ctx, staff); err != nil {
		return nil, fmt.Errorf("failed to update staff: %w", err)
	}

	dto := mapper.ToStaffDTO(staff)
	return &dto, nil
}

func (s *StaffService) List(ctx context.Context, activeOnly bool) ([]domain.StaffDTO, error) {
	members, err := s.staffRepo.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	dtos := make([]domain.StaffDTO, len(members))
	for i := range members {
		dtos[i] = mapper.ToStaffDTO(&members[i])
	}
	return dtos, nil
}

func (s *StaffService) load(ctx context.Context, id string) (*domain.Staff, error) {
	staff, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStaffNotFound
		}
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return staff, nil
}
