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

func (f *fixture) createCustomer(t *testing.T, name, email string) *domain.CustomerDTO {
	t.Helper()
	dto, err := f.customers.Create(context.Background(), &domain.CreateCustomerRequest{
		Name:  name,
		Email: email,
		Phone: "08-123 456 78",
	})
	require.NoError(t, err)
	return dto
}

func TestCustomerCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto, err := f.customers.Create(ctx, &domain.CreateCustomerRequest{
		Name:       "Anna Andersson",
		Email:      "  Anna@Example.SE ",
		Phone:      "070-111 22 33",
		Address:    "Storgatan 1",
		PostalCode: "111 22",
		City:       "Stockholm",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CustomerTypePrivate, dto.Type)
	assert.Equal(t, "anna@example.se", dto.Email)

	// Duplicate email, regardless of case
	_, err = f.customers.Create(ctx, &domain.CreateCustomerRequest{
		Name:  "Anna Igen",
		Email: "ANNA@example.se",
		Phone: "070-111 22 33",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)
}

func TestCustomerCreate_CompanyRequiresOrgNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.customers.Create(ctx, &domain.CreateCustomerRequest{
		Name:  "Bygg AB",
		Type:  domain.CustomerTypeCompany,
		Email: "info@byggab.se",
		Phone: "08-555 00 00",
	})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "orgNumber", verr.Field)

	dto, err := f.customers.Create(ctx, &domain.CreateCustomerRequest{
		Name:      "Bygg AB",
		Type:      domain.CustomerTypeCompany,
		Email:     "info@byggab.se",
		Phone:     "08-555 00 00",
		OrgNumber: "556677-8899",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CustomerTypeCompany, dto.Type)

	_, err = f.customers.Create(ctx, &domain.CreateCustomerRequest{
		Name:  "Okänd",
		Type:  domain.CustomerType("forening"),
		Email: "x@example.se",
		Phone: "1",
	})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type", verr.Field)
}

func TestCustomerUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := f.createCustomer(t, "Anna Andersson", "anna@example.se")

	brf := domain.CustomerTypeBRF
	dto, err := f.customers.Update(ctx, created.ID, &domain.UpdateCustomerRequest{
		Name:      "Brf Eken",
		Type:      brf,
		Email:     "styrelsen@brfeken.se",
		Phone:     "08-999 88 77",
		OrgNumber: "769600-1234",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.CustomerTypeBRF, dto.Type)
	assert.Equal(t, "styrelsen@brfeken.se", dto.Email)

	_, err = f.customers.Update(ctx, uuid.New(), &domain.UpdateCustomerRequest{
		Name: "Ingen", Email: "ingen@example.se", Phone: "1",
	})
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestCustomerDelete_RefusedWithOrderHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc := testutil.CreateTestService(t, f.db, "Målning", 5000)
	customer := f.createCustomer(t, "Anna Andersson", "anna@example.se")

	_, err := f.bookings.Create(ctx, &domain.CreateBookingRequest{
		ServiceID:    &svc.ID,
		CustomerID:   &customer.ID,
		ContactName:  "Anna Andersson",
		ContactEmail: "anna@example.se",
	})
	require.NoError(t, err)

	err = f.customers.Delete(ctx, customer.ID)
	assert.ErrorIs(t, err, ErrCustomerHasOrders)

	// Still retrievable
	_, err = f.customers.GetByID(ctx, customer.ID)
	assert.NoError(t, err)
}

func TestCustomerDelete_WithoutOrders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	customer := f.createCustomer(t, "Engångskund", "engang@example.se")
	require.NoError(t, f.customers.Delete(ctx, customer.ID))

	_, err := f.customers.GetByID(ctx, customer.ID)
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestCustomerList_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.createCustomer(t, "Anna Andersson", "anna@example.se")
	f.createCustomer(t, "Bertil Berg", "bertil@example.se")
	_, err := f.customers.Create(ctx, &domain.CreateCustomerRequest{
		Name:      "Bygg AB",
		Type:      domain.CustomerTypeCompany,
		Email:     "info@byggab.se",
		Phone:     "08-555 00 00",
		OrgNumber: "556677-8899",
	})
	require.NoError(t, err)

	all, total, err := f.customers.List(ctx, 1, 10, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, all, 3)

	byName, _, err := f.customers.List(ctx, 1, 10, "anderss")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Anna Andersson", byName[0].Name)

	byOrg, _, err := f.customers.List(ctx, 1, 10, "556677")
	require.NoError(t, err)
	require.Len(t, byOrg, 1)
	assert.Equal(t, "Bygg AB", byOrg[0].Name)

	paged, total, err := f.customers.List(ctx, 2, 2, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, paged, 1)
}

func TestCustomerBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	svc := testutil.CreateTestService(t, f.db, "Städning", 1500)
	customer := f.createCustomer(t, "Anna Andersson", "anna@example.se")

	for i := 0; i < 2; i++ {
		_, err := f.bookings.Create(ctx, &domain.CreateBookingRequest{
			ServiceID:    &svc.ID,
			CustomerID:   &customer.ID,
			ContactName:  "Anna Andersson",
			ContactEmail: "anna@example.se",
		})
		require.NoError(t, err)
	}

	history, err := f.customers.Bookings(ctx, customer.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	_, err = f.customers.Bookings(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}
