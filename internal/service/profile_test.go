package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/platform/memory"
)

func newProfileService(t *testing.T) *ProfileService {
	t.Helper()
	s := memory.NewStore(fixedClock())
	return NewProfileService(s.Profiles(), testLogger(), fixedClock())
}

func TestProfileRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("stores a lowercased email", func(t *testing.T) {
		t.Parallel()
		svc := newProfileService(t)
		profile, err := svc.Register(ctx, "Ada", "Ada@Example.COM", "")
		require.NoError(t, err)
		assert.Equal(t, "ada@example.com", profile.Email)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		t.Parallel()
		svc := newProfileService(t)
		_, err := svc.Register(ctx, "Ada", "ada@example.com", "")
		require.NoError(t, err)

		_, err = svc.Register(ctx, "Imposter", "ADA@example.com", "")
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("relative avatar URL is rejected", func(t *testing.T) {
		t.Parallel()
		svc := newProfileService(t)
		_, err := svc.Register(ctx, "Ada", "ada@example.com", "avatars.png")
		assert.ErrorIs(t, err, domain.ErrAvatarURLNotAbsolute)
	})

	t.Run("absolute avatar URL is accepted", func(t *testing.T) {
		t.Parallel()
		svc := newProfileService(t)
		profile, err := svc.Register(ctx, "Ada", "ada@example.com", "https://cdn.example.com/a.png")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/a.png", profile.AvatarURL)
	})
}

func TestProfileUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newProfileService(t)
	profile, err := svc.Register(ctx, "Ada", "ada@example.com", "")
	require.NoError(t, err)

	updated, err := svc.Update(ctx, profile.ID, "Ada Lovelace", "")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", updated.DisplayName)
	assert.Equal(t, "ada@example.com", updated.Email, "email is immutable")

	_, err = svc.Update(ctx, uuid.New(), "Nobody", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProfileDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := newProfileService(t)
	profile, err := svc.Register(ctx, "Ada", "ada@example.com", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, profile.ID))

	_, err = svc.Get(ctx, profile.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// The tombstone keeps the email reserved.
	_, err = svc.Register(ctx, "Ada again", "ada@example.com", "")
	assert.ErrorIs(t, err, ErrConflict)
}
