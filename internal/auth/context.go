package auth

import (
	"context"
	"strings"

	"github.com/hemverk/order-api/internal/domain"
)

// StaffContext holds authenticated staff information
type StaffContext struct {
	StaffID     string
	DisplayName string
	Email       string
	Role        domain.StaffRole
}

type contextKey string

const staffContextKey contextKey = "staffContext"

// WithStaffContext adds staff context to the context
func WithStaffContext(ctx context.Context, staff *StaffContext) context.Context {
	return context.WithValue(ctx, staffContextKey, staff)
}

// FromContext extracts staff context from the context
func FromContext(ctx context.Context) (*StaffContext, bool) {
	staff, ok := ctx.Value(staffContextKey).(*StaffContext)
	return staff, ok
}

// MustFromContext extracts staff context or panics
func MustFromContext(ctx context.Context) *StaffContext {
	staff, ok := FromContext(ctx)
	if !ok {
		panic("staff context not found in context")
	}
	return staff
}

// IsAdmin checks if the staff member carries the admin role
func (s *StaffContext) IsAdmin() bool {
	return s.Role == domain.RoleAdmin
}

// IsWorker checks if the staff member carries the worker role
func (s *StaffContext) IsWorker() bool {
	return s.Role == domain.RoleWorker
}

// HasRole checks if the staff member has the given role. Admins pass every
// role check, a worker only the worker check.
func (s *StaffContext) HasRole(role domain.StaffRole) bool {
	if s.Role == domain.RoleAdmin {
		return true
	}
	return s.Role == role
}

// GetDisplayNameInitials returns initials from the display name (e.g., "John Doe" -> "JD")
func (s *StaffContext) GetDisplayNameInitials() string {
	if s.DisplayName == "" {
		return ""
	}
	parts := strings.Fields(s.DisplayName)
	initials := ""
	for _, part := range parts {
		if len(part) > 0 {
			initials += strings.ToUpper(string(part[0]))
		}
	}
	return initials
}
