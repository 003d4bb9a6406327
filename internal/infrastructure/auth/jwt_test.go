package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clientportal/backend/internal/infrastructure/config"
)

func testJWTService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-that-is-long-enough",
		Expiration: expiration,
		Issuer:     "portal-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := testJWTService(time.Hour)

	t.Run("round trip preserves claims", func(t *testing.T) {
		token, expiresAt, err := svc.Generate(42, "client@acme.test", "customer")
		require.NoError(t, err)
		assert.True(t, expiresAt.After(time.Now()))

		claims, err := svc.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "client@acme.test", claims.Email)
		assert.Equal(t, "customer", claims.Role)
		assert.Equal(t, "portal-test", claims.Issuer)
	})

	t.Run("rejects garbage token", func(t *testing.T) {
		_, err := svc.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects token signed with a different secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:     "another-secret-entirely-different",
			Expiration: time.Hour,
			Issuer:     "portal-test",
		})
		token, _, err := other.Generate(1, "a@b.test", "admin")
		require.NoError(t, err)

		_, err = svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := testJWTService(-time.Minute)
		token, _, err := expired.Generate(1, "a@b.test", "admin")
		require.NoError(t, err)

		_, err = expired.Validate(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
