package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/hemverk/order-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogCreateService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	labor := 0.7
	dto, err := f.catalog.CreateService(ctx, &domain.CreateServiceRequest{
		Category:    "stad",
		Title:       "Flyttstädning",
		BasePrice:   3500,
		PriceUnit:   "per tillfälle",
		RutEligible: true,
		LaborShare:  &labor,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriceTypeFixed, dto.PriceType)
	assert.Equal(t, domain.ServiceLocationIndoor, dto.Location)
	assert.Equal(t, 0.7, dto.LaborShare)
	assert.True(t, dto.IsActive)
	assert.True(t, dto.RutEligible)
}

func TestCatalogCreateServiceDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto, err := f.catalog.CreateService(ctx, &domain.CreateServiceRequest{
		Category:  "bygg",
		Title:     "Altanbygge",
		BasePrice: 15000,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, dto.LaborShare)
	assert.Equal(t, domain.PriceTypeFixed, dto.PriceType)

	_, err = f.catalog.CreateService(ctx, &domain.CreateServiceRequest{
		Category:  "bygg",
		Title:     "Trasig",
		PriceType: domain.PriceType("gratis"),
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "priceType", verr.Field)
}

func TestCatalogUpdateService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc := f.createCatalogService(t, "Fönsterputs", 900)

	inactive := false
	labor := 0.5
	dto, err := f.catalog.UpdateService(ctx, svc, &domain.UpdateServiceRequest{
		Category:   "stad",
		Title:      "Fönsterputs plus",
		BasePrice:  1100,
		LaborShare: &labor,
		IsActive:   &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Fönsterputs plus", dto.Title)
	assert.Equal(t, int64(1100), dto.BasePrice)
	assert.Equal(t, 0.5, dto.LaborShare)
	assert.False(t, dto.IsActive)

	_, err = f.catalog.UpdateService(ctx, uuid.New(), &domain.UpdateServiceRequest{
		Category: "stad", Title: "X",
	})
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestCatalogListServicesActiveOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	active := f.createCatalogService(t, "Aktiv tjänst", 1000)
	hidden := f.createCatalogService(t, "Dold tjänst", 1000)

	off := false
	_, err := f.catalog.UpdateService(ctx, hidden, &domain.UpdateServiceRequest{
		Category: "bygg", Title: "Dold tjänst", BasePrice: 1000, IsActive: &off,
	})
	require.NoError(t, err)

	all, err := f.catalog.ListServices(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	public, err := f.catalog.ListServices(ctx, true)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, active, public[0].ID)
}

func TestCatalogDeleteUnreferencedService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc := f.createCatalogService(t, "Oanvänd", 500)
	_, err := f.catalog.CreateAddon(ctx, svc, &domain.CreateServiceAddonRequest{
		Title: "Extra", Price: 100,
	})
	require.NoError(t, err)

	require.NoError(t, f.catalog.DeleteService(ctx, svc))

	_, err = f.catalog.GetService(ctx, svc)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	addons, err := f.catalog.ListAddons(ctx, svc, false)
	require.NoError(t, err)
	assert.Empty(t, addons)
}

func TestCatalogDeleteReferencedServiceDeactivates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc := testutil.CreateTestService(t, f.db, "Badrumsrenovering", 45000)
	testutil.CreateTestBooking(t, f.db, svc)

	require.NoError(t, f.catalog.DeleteService(ctx, svc.ID))

	dto, err := f.catalog.GetService(ctx, svc.ID)
	require.NoError(t, err)
	assert.False(t, dto.IsActive)
}

func TestCatalogReorderServices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.createCatalogService(t, "A-tjänst", 100)
	second := f.createCatalogService(t, "B-tjänst", 100)
	third := f.createCatalogService(t, "C-tjänst", 100)

	require.NoError(t, f.catalog.ReorderServices(ctx, &domain.ReorderServicesRequest{
		OrderedIDs: []uuid.UUID{third, first, second},
	}))

	listed, err := f.catalog.ListServices(ctx, false)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, third, listed[0].ID)
	assert.Equal(t, first, listed[1].ID)
	assert.Equal(t, second, listed[2].ID)
}

func TestCatalogAddonLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc := f.createCatalogService(t, "Trädgårdsskötsel", 800)

	addon, err := f.catalog.CreateAddon(ctx, svc, &domain.CreateServiceAddonRequest{
		Title:       "Häckklippning",
		Price:       450,
		RutEligible: true,
	})
	require.NoError(t, err)
	assert.Equal(t, svc, addon.ServiceID)
	assert.True(t, addon.IsActive)

	off := false
	updated, err := f.catalog.UpdateAddon(ctx, addon.ID, &domain.UpdateServiceAddonRequest{
		Title:    "Häckklippning",
		Price:    500,
		IsActive: &off,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(500), updated.Price)
	assert.False(t, updated.IsActive)

	visible, err := f.catalog.ListAddons(ctx, svc, true)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := f.catalog.ListAddons(ctx, svc, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.catalog.CreateAddon(ctx, uuid.New(), &domain.CreateServiceAddonRequest{
		Title: "Fel", Price: 1,
	})
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = f.catalog.UpdateAddon(ctx, uuid.New(), &domain.UpdateServiceAddonRequest{
		Title: "Fel", Price: 1,
	})
	assert.ErrorIs(t, err, ErrAddonNotFound)
}

// createCatalogService creates a minimal catalog service through the service layer
// and returns its id.
func (f *fixture) createCatalogService(t *testing.T, title string, basePrice int64) uuid.UUID {
	t.Helper()
	dto, err := f.catalog.CreateService(context.Background(), &domain.CreateServiceRequest{
		Category:  "bygg",
		Title:     title,
		BasePrice: basePrice,
	})
	require.NoError(t, err)
	return dto.ID
}
