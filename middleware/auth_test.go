package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"timeclock/models"
)

func TestTokenRoundTrip(t *testing.T) {
	SetJWTSecret("test-secret")

	user := &models.User{ID: 7, Email: "jane@example.com", Role: models.RoleUser}
	token, err := GenerateToken(user, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, uint(7), claims.UserID)
	require.Equal(t, "jane@example.com", claims.Email)
	require.Equal(t, models.RoleUser, claims.Role)
	require.NotEmpty(t, claims.ID)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	SetJWTSecret("secret-a")
	token, err := GenerateToken(&models.User{ID: 1, Role: models.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	SetJWTSecret("secret-b")
	_, err = ValidateToken(token)
	require.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	SetJWTSecret("test-secret")
	token, err := GenerateToken(&models.User{ID: 1, Role: models.RoleUser}, -time.Minute)
	require.NoError(t, err)

	_, err = ValidateToken(token)
	require.Error(t, err)
}
