package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activeAddon(serviceID uuid.UUID, title string, price int64) domain.ServiceAddon {
	return domain.ServiceAddon{
		BaseModel: domain.BaseModel{ID: uuid.New()},
		ServiceID: serviceID,
		Title:     title,
		Price:     price,
		IsActive:  true,
	}
}

func TestAddonToggle_TwiceRestoresOriginalState(t *testing.T) {
	serviceID := uuid.New()
	sel := NewAddonSelection(serviceID)
	addon := activeAddon(serviceID, "Fönsterputs utsida", 400)

	require.NoError(t, sel.Toggle(addon, 1))
	assert.True(t, sel.IsSelected(addon.ID))
	assert.Equal(t, 1, sel.Count())
	assert.Equal(t, int64(400), sel.Total())

	require.NoError(t, sel.Toggle(addon, 1))
	assert.False(t, sel.IsSelected(addon.ID))
	assert.Zero(t, sel.Count())
	assert.Zero(t, sel.Total())
	assert.Empty(t, sel.Snapshot())
}

func TestAddonToggle_RejectsForeignAndInactiveAddons(t *testing.T) {
	serviceID := uuid.New()
	sel := NewAddonSelection(serviceID)

	foreign := activeAddon(uuid.New(), "Annan tjänst", 100)
	err := sel.Toggle(foreign, 1)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	inactive := activeAddon(serviceID, "Utgånget tillval", 100)
	inactive.IsActive = false
	err = sel.Toggle(inactive, 1)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	assert.Zero(t, sel.Count())
}

func TestAddonDeselect(t *testing.T) {
	serviceID := uuid.New()
	sel := NewAddonSelection(serviceID)
	a := activeAddon(serviceID, "Balkongdörrar", 200)
	b := activeAddon(serviceID, "Extra våning", 600)

	require.NoError(t, sel.Select(a, 1))
	require.NoError(t, sel.Select(b, 2))
	assert.Equal(t, 2, sel.Count())
	assert.Equal(t, int64(1400), sel.Total())

	sel.Deselect(a.ID)
	assert.False(t, sel.IsSelected(a.ID))
	assert.True(t, sel.IsSelected(b.ID))
	assert.Equal(t, int64(1200), sel.Total())

	// Deselecting something absent is a no-op
	sel.Deselect(a.ID)
	assert.Equal(t, 1, sel.Count())
}
