package services

import (
	"testing"
	"time"

	"onboarding-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")

	token, err := svc.GenerateSessionToken("asha@example.com", models.AccountTypeFieldExecutive)
	require.NoError(t, err)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, models.AccountTypeFieldExecutive, claims.AccountType)
	assert.Equal(t, "onboarding-service", claims.Issuer)

	expiry := time.Until(claims.ExpiresAt.Time)
	assert.InDelta(t, (7 * 24 * time.Hour).Seconds(), expiry.Seconds(), 60)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	token, err := NewTokenService("secret-a").GenerateSessionToken("asha@example.com", models.AccountTypeEmployee)
	require.NoError(t, err)

	_, err = NewTokenService("secret-b").VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyToken_Garbage(t *testing.T) {
	_, err := NewTokenService("test-secret").VerifyToken("not-a-token")
	assert.Error(t, err)
}
