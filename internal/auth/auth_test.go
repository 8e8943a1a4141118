package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("test-secret", time.Hour)
	p := Principal{ID: uuid.New(), Role: RoleDentist}

	raw, err := tokens.Issue(p)
	require.NoError(t, err)

	got, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestTokens_RejectsWrongSecret(t *testing.T) {
	raw, err := NewTokens("one", time.Hour).Issue(Principal{ID: uuid.New(), Role: RoleAdmin})
	require.NoError(t, err)

	_, err = NewTokens("two", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsExpired(t *testing.T) {
	tokens := NewTokens("s", time.Minute)
	tokens.now = func() time.Time { return time.Now().Add(-time.Hour) }
	raw, err := tokens.Issue(Principal{ID: uuid.New(), Role: RoleAdmin})
	require.NoError(t, err)

	_, err = NewTokens("s", time.Minute).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokens_RejectsUnknownRole(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: "janitor",
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s"))
	require.NoError(t, err)

	_, err = NewTokens("s", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestCan(t *testing.T) {
	tests := []struct {
		role   Role
		action Action
		want   bool
	}{
		{RoleAdmin, ActionManageAvailability, true},
		{RoleAssistant, ActionComplete, false},
		{RoleAssistant, ActionBook, true},
		{RoleDentist, ActionComplete, true},
		{RolePatient, ActionBook, true},
		{RolePatient, ActionConfirm, false},
		{RolePatient, ActionListAppointments, false},
		{RolePatient, ActionManageAvailability, false},
		{Role("unknown"), ActionViewSlots, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.action), func(t *testing.T) {
			assert.Equal(t, tt.want, Can(tt.role, tt.action))
		})
	}
}

func TestPrincipal_Ownership(t *testing.T) {
	self := uuid.New()
	other := uuid.New()

	patient := Principal{ID: self, Role: RolePatient}
	assert.True(t, patient.MayActFor(self))
	assert.False(t, patient.MayActFor(other))

	dentist := Principal{ID: self, Role: RoleDentist}
	assert.True(t, dentist.MayManageDentist(self))
	assert.False(t, dentist.MayManageDentist(other))
	assert.True(t, dentist.MayActFor(other))

	admin := Principal{ID: self, Role: RoleAdmin}
	assert.True(t, admin.MayManageDentist(other))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	p := Principal{ID: uuid.New(), Role: RoleAssistant}
	got, ok := FromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Equal(t, p, got)
}
