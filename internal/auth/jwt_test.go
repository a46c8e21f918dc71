package auth_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/alumni-hub/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-that-is-long-enough-for-hs256"

func newTestJWTService(t *testing.T, expiry time.Duration) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(testSecret, "alumni-hub-api", "alumni-hub-client", expiry)
	require.NoError(t, err)
	return svc
}

func TestNewJWTService_RejectsShortSecret(t *testing.T) {
	_, err := auth.NewJWTService("too-short", "alumni-hub-api", "alumni-hub-client", time.Hour)
	assert.Error(t, err)
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)

	userID := uuid.New()
	token, err := svc.GenerateToken(userID, "grad@example.com", "alumni")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "grad@example.com", claims.Email)
	assert.Equal(t, "alumni", claims.Role)
	assert.Equal(t, "alumni-hub-api", claims.Issuer)
	assert.Contains(t, claims.Audience, "alumni-hub-client")
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := newTestJWTService(t, -time.Minute)

	token, err := svc.GenerateToken(uuid.New(), "grad@example.com", "alumni")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestJWTService_RejectsTamperedToken(t *testing.T) {
	svc := newTestJWTService(t, time.Hour)

	token, err := svc.GenerateToken(uuid.New(), "grad@example.com", "alumni")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token + "x")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTService_RejectsForeignIssuer(t *testing.T) {
	other, err := auth.NewJWTService(testSecret, "someone-else", "alumni-hub-client", time.Hour)
	require.NoError(t, err)

	token, err := other.GenerateToken(uuid.New(), "grad@example.com", "alumni")
	require.NoError(t, err)

	svc := newTestJWTService(t, time.Hour)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}
