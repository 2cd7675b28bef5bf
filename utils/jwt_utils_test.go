package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateToken("alice", "64f000000000000000000001", "investigator")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "64f000000000000000000001", claims.TenantID)
	assert.Equal(t, "investigator", claims.Role)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret-one")
	token, err := GenerateToken("alice", "64f000000000000000000001", "viewer")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "secret-two")
	_, err = ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsMissingExpiry(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	// Validly signed, but without an exp claim.
	claims := &Claims{Username: "alice", Role: "admin"}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		_, err := ValidateToken(signed)
		assert.Error(t, err)
	})
}

func TestGetUsernameFromToken(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateResetToken("bob")
	require.NoError(t, err)

	username, err := GetUsernameFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, "bob", username)
}
