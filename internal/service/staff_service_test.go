package service

import (
	"context"
	"testing"

	"github.com/hemverk/order-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) createStaff(t *testing.T, email, password string, role domain.StaffRole) *domain.StaffDTO {
	t.Helper()
	dto, err := f.staff.Create(context.Background(), &domain.CreateStaffRequest{
		Email:       email,
		Password:    password,
		DisplayName: "Test Staff",
		Role:        role,
	})
	require.NoError(t, err)
	return dto
}

func TestStaffLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.createStaff(t, "lisa@hemverk.se", "hemligt-losen", domain.RoleWorker)

	resp, err := f.staff.Login(ctx, &domain.LoginRequest{
		Email:    "lisa@hemverk.se",
		Password: "hemligt-losen",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, created.ID, resp.Staff.ID)
	assert.Equal(t, domain.RoleWorker, resp.Staff.Role)

	stored, err := f.staffRepo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
}

func TestStaffLoginNormalizesEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createStaff(t, "Lisa@Hemverk.SE", "hemligt-losen", domain.RoleWorker)

	resp, err := f.staff.Login(ctx, &domain.LoginRequest{
		Email:    "  LISA@hemverk.se ",
		Password: "hemligt-losen",
	})
	require.NoError(t, err)
	assert.Equal(t, "lisa@hemverk.se", resp.Staff.Email)
}

func TestStaffLoginRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.createStaff(t, "lisa@hemverk.se", "hemligt-losen", domain.RoleWorker)

	_, err := f.staff.Login(ctx, &domain.LoginRequest{
		Email:    "lisa@hemverk.se",
		Password: "fel-losen",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.staff.Login(ctx, &domain.LoginRequest{
		Email:    "okand@hemverk.se",
		Password: "hemligt-losen",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	inactive := false
	_, err = f.staff.Update(ctx, created.ID, &domain.UpdateStaffRequest{
		DisplayName: "Test Staff",
		IsActive:    &inactive,
	})
	require.NoError(t, err)

	_, err = f.staff.Login(ctx, &domain.LoginRequest{
		Email:    "lisa@hemverk.se",
		Password: "hemligt-losen",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestStaffCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createStaff(t, "lisa@hemverk.se", "hemligt-losen", domain.RoleWorker)

	_, err := f.staff.Create(ctx, &domain.CreateStaffRequest{
		Email:       "LISA@hemverk.se",
		Password:    "annat-losen",
		DisplayName: "Duplicate",
		Role:        domain.RoleWorker,
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)

	_, err = f.staff.Create(ctx, &domain.CreateStaffRequest{
		Email:       "ny@hemverk.se",
		Password:    "hemligt-losen",
		DisplayName: "Bad Role",
		Role:        domain.StaffRole("chef"),
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "role", verr.Field)
}

func TestStaffUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.createStaff(t, "lisa@hemverk.se", "hemligt-losen", domain.RoleWorker)

	admin := domain.RoleAdmin
	updated, err := f.staff.Update(ctx, created.ID, &domain.UpdateStaffRequest{
		DisplayName: "Lisa Lindqvist",
		Role:        &admin,
		Phone:       "070-123 45 67",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, updated.Role)
	assert.Equal(t, "Lisa Lindqvist", updated.DisplayName)
	assert.Equal(t, "070-123 45 67", updated.Phone)

	badRole := domain.StaffRole("chef")
	_, err = f.staff.Update(ctx, created.ID, &domain.UpdateStaffRequest{
		DisplayName: "Lisa Lindqvist",
		Role:        &badRole,
	})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.staff.Update(ctx, "finns-inte", &domain.UpdateStaffRequest{DisplayName: "X"})
	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestStaffList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active := f.createStaff(t, "aktiv@hemverk.se", "hemligt-losen", domain.RoleWorker)
	retired := f.createStaff(t, "slutat@hemverk.se", "hemligt-losen", domain.RoleWorker)

	inactive := false
	_, err := f.staff.Update(ctx, retired.ID, &domain.UpdateStaffRequest{
		DisplayName: "Test Staff",
		IsActive:    &inactive,
	})
	require.NoError(t, err)

	all, err := f.staff.List(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyActive, err := f.staff.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, active.ID, onlyActive[0].ID)
}
