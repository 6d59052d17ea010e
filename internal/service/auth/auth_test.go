package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdeck/flashdeck-api/internal/config"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:        "0123456789abcdef0123456789abcdef",
		TokenLifetimeMin: 60,
	}
}

func TestNewTokenService(t *testing.T) {
	t.Parallel()

	t.Run("rejects a short secret", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig()
		cfg.JWTSecret = "short"
		_, err := NewTokenService(cfg)
		assert.Error(t, err)
	})

	t.Run("accepts a 32-byte secret", func(t *testing.T) {
		t.Parallel()
		_, err := NewTokenService(testConfig())
		assert.NoError(t, err)
	})
}

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, err := NewTokenService(testConfig())
	require.NoError(t, err)

	ownerID := uuid.New()
	token, err := svc.GenerateToken(ctx, ownerID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, ownerID, claims.OwnerID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestValidateTokenFailures(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, err := NewTokenService(testConfig())
	require.NoError(t, err)

	t.Run("empty token", func(t *testing.T) {
		t.Parallel()
		_, err := svc.ValidateToken(ctx, "")
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		t.Parallel()
		_, err := svc.ValidateToken(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("token signed with a different secret", func(t *testing.T) {
		t.Parallel()
		otherCfg := testConfig()
		otherCfg.JWTSecret = "ffffffffffffffffffffffffffffffff"
		other, err := NewTokenService(otherCfg)
		require.NoError(t, err)

		token, err := other.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		_, err = svc.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		t.Parallel()
		impl, err := NewTokenService(testConfig())
		require.NoError(t, err)
		hmac, ok := impl.(*hmacTokenService)
		require.True(t, ok)

		// Issue in the distant past, validate with the real clock. The
		// lifetime plus clock skew are both long gone.
		hmac.now = func() time.Time { return time.Now().Add(-24 * time.Hour) }
		token, err := hmac.GenerateToken(ctx, uuid.New())
		require.NoError(t, err)

		hmac.now = time.Now
		_, err = hmac.ValidateToken(ctx, token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
