package service

import (
	"github.com/google/uuid"
	"github.com/hemverk/order-api/internal/domain"
)

// AddonSelection accumulates the addon choices of one booking-wizard session.
// Selection is keyed by addon id, so toggling the same addon twice returns to
// the previous state and selecting an already-selected addon only updates the
// quantity.
type AddonSelection struct {
	serviceID uuid.UUID
	selected  map[uuid.UUID]selectedAddon
}

type selectedAddon struct {
	addon    domain.ServiceAddon
	quantity int
}

// NewAddonSelection creates an empty selection scoped to one catalog service
func NewAddonSelection(serviceID uuid.UUID) *AddonSelection {
	return &AddonSelection{
		serviceID: serviceID,
		selected:  make(map[uuid.UUID]selectedAddon),
	}
}

// Toggle flips the addon in or out of the selection. Selecting is rejected for
// addons scoped to another service or deactivated in the catalog.
func (s *AddonSelection) Toggle(addon domain.ServiceAddon, quantity int) error {
	if _, ok := s.selected[addon.ID]; ok {
		delete(s.selected, addon.ID)
		return nil
	}
	return s.Select(addon, quantity)
}

// Select adds the addon or updates its quantity. Idempotent for equal input.
func (s *AddonSelection) Select(addon domain.ServiceAddon, quantity int) error {
	if addon.ServiceID != s.serviceID {
		return domain.NewValidationError("addonId", "addon belongs to another service")
	}
	if !addon.IsActive {
		return domain.NewValidationError("addonId", "addon is not active")
	}
	if quantity < 1 {
		quantity = 1
	}
	s.selected[addon.ID] = selectedAddon{addon: addon, quantity: quantity}
	return nil
}

// Deselect removes the addon if present
func (s *AddonSelection) Deselect(addonID uuid.UUID) {
	delete(s.selected, addonID)
}

// IsSelected reports whether the addon is currently selected
func (s *AddonSelection) IsSelected(addonID uuid.UUID) bool {
	_, ok := s.selected[addonID]
	return ok
}

// Count returns the number of distinct selected addons
func (s *AddonSelection) Count() int {
	return len(s.selected)
}

// Total returns the selection's price contribution in whole SEK
func (s *AddonSelection) Total() int64 {
	var total int64
	for _, sel := range s.selected {
		total += sel.addon.Price * int64(sel.quantity)
	}
	return total
}

// Snapshot freezes the selection into immutable booking addon rows. Catalog
// edits after this point never change the snapshot.
func (s *AddonSelection) Snapshot() []domain.BookingAddon {
	rows := make([]domain.BookingAddon, 0, len(s.selected))
	for _, sel := range s.selected {
		rows = append(rows, domain.BookingAddon{
			AddonID:     sel.addon.ID,
			Title:       sel.addon.Title,
			UnitPrice:   sel.addon.Price,
			Quantity:    sel.quantity,
			RotEligible: sel.addon.RotEligible,
			RutEligible: sel.addon.RutEligible,
		})
	}
	return rows
}
