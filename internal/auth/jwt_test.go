package auth

import (
	"testing"
	"time"

	"github.com/hemverk/order-api/internal/config"
	"github.com/hemverk/order-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager(secret string) *TokenManager {
	return NewTokenManager(&config.AuthConfig{
		JWTSecret:       secret,
		Issuer:          "order-api-test",
		TokenTTLMinutes: 60,
	})
}

func testStaff() *domain.Staff {
	return &domain.Staff{
		ID:          "staff-1",
		Email:       "lisa@hemverk.se",
		DisplayName: "Lisa Lindqvist",
		Role:        domain.RoleWorker,
	}
}

func TestTokenRoundTrip(t *testing.T) {
	m := testManager("test-secret")

	token, err := m.IssueToken(testStaff(), time.Now().UTC())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	staffCtx, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "staff-1", staffCtx.StaffID)
	assert.Equal(t, "lisa@hemverk.se", staffCtx.Email)
	assert.Equal(t, "Lisa Lindqvist", staffCtx.DisplayName)
	assert.Equal(t, domain.RoleWorker, staffCtx.Role)
}

func TestTokenRequiresConfiguredSecret(t *testing.T) {
	m := testManager("")

	_, err := m.IssueToken(testStaff(), time.Now().UTC())
	assert.Error(t, err)
}

func TestTokenRejectsWrongSecret(t *testing.T) {
	issued, err := testManager("secret-a").IssueToken(testStaff(), time.Now().UTC())
	require.NoError(t, err)

	_, err = testManager("secret-b").ValidateToken(issued)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenRejectsWrongIssuer(t *testing.T) {
	other := NewTokenManager(&config.AuthConfig{
		JWTSecret:       "test-secret",
		Issuer:          "someone-else",
		TokenTTLMinutes: 60,
	})
	issued, err := other.IssueToken(testStaff(), time.Now().UTC())
	require.NoError(t, err)

	_, err = testManager("test-secret").ValidateToken(issued)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpiry(t *testing.T) {
	m := testManager("test-secret")

	issued, err := m.IssueToken(testStaff(), time.Now().UTC().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = m.ValidateToken(issued)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenRejectsUnknownRole(t *testing.T) {
	m := testManager("test-secret")

	staff := testStaff()
	staff.Role = domain.StaffRole("chef")
	issued, err := m.IssueToken(staff, time.Now().UTC())
	require.NoError(t, err)

	_, err = m.ValidateToken(issued)
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestTokenRejectsGarbage(t *testing.T) {
	m := testManager("test-secret")

	_, err := m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStaffContextRoles(t *testing.T) {
	admin := &StaffContext{StaffID: "a", Role: domain.RoleAdmin}
	worker := &StaffContext{StaffID: "w", Role: domain.RoleWorker}

	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.HasRole(domain.RoleWorker))
	assert.False(t, worker.IsAdmin())
	assert.True(t, worker.IsWorker())
	assert.True(t, worker.HasRole(domain.RoleWorker))
	assert.False(t, worker.HasRole(domain.RoleAdmin))
}

func TestDisplayNameInitials(t *testing.T) {
	assert.Equal(t, "LL", (&StaffContext{DisplayName: "Lisa Lindqvist"}).GetDisplayNameInitials())
	assert.Equal(t, "L", (&StaffContext{DisplayName: "Lisa"}).GetDisplayNameInitials())
	assert.Equal(t, "", (&StaffContext{}).GetDisplayNameInitials())
}
