package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken("secret", "65b0c2f1a2b3c4d5e6f70812", "jan@example.com", "user", 168*time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(token, "secret")
	require.NoError(t, err)

	assert.Equal(t, "65b0c2f1a2b3c4d5e6f70812", claims.UserID)
	assert.Equal(t, "jan@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "65b0c2f1a2b3c4d5e6f70812", claims.Subject)

	// Seven day lifetime, give or take scheduling slack.
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	assert.Equal(t, 168*time.Hour, lifetime)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("secret", "abc", "jan@example.com", "user", time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "other-secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	token, err := GenerateToken("secret", "abc", "jan@example.com", "user", -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, "secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	_, err := ParseToken("not.a.jwt", "secret")
	assert.Error(t, err)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	token, err := GenerateToken("secret", "abc", "jan@example.com", "user", time.Hour)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = ParseToken(tampered, "secret")
	assert.Error(t, err)
}
