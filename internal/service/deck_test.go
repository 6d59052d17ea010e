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

func newDeckService(t *testing.T) (*DeckService, *memory.Store) {
	t.Helper()
	s := memory.NewStore(fixedClock())
	return NewDeckService(s.Decks(), testLogger(), fixedClock()), s
}

func TestDeckServiceCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates with default settings", func(t *testing.T) {
		t.Parallel()
		svc, _ := newDeckService(t)
		deck, err := svc.Create(ctx, uuid.New(), "  Spanish  ", "vocab\r\nnotes")
		require.NoError(t, err)
		assert.Equal(t, "Spanish", deck.Name, "name is trimmed")
		assert.Equal(t, "vocab\nnotes", deck.Description, "line endings normalized")
		assert.Equal(t, domain.DefaultStudySettings(), deck.Settings)
	})

	t.Run("rejects markup in the name", func(t *testing.T) {
		t.Parallel()
		svc, _ := newDeckService(t)
		_, err := svc.Create(ctx, uuid.New(), "<deck>", "")
		assert.ErrorIs(t, err, domain.ErrUnsafeCharacters)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		t.Parallel()
		svc, _ := newDeckService(t)
		_, err := svc.Create(ctx, uuid.New(), "   ", "")
		assert.ErrorIs(t, err, domain.ErrDeckNameEmpty)
	})
}

func TestDeckServiceUpdate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("replaces settings after validating them", func(t *testing.T) {
		t.Parallel()
		svc, _ := newDeckService(t)
		owner := uuid.New()
		deck, err := svc.Create(ctx, owner, "Deck", "")
		require.NoError(t, err)

		settings := domain.StudySettings{
			DailyReviewLimit:    20,
			EasyMinIntervalDays: 2,
			MaxIntervalDays:     90,
			RepeatInSession:     false,
		}
		updated, err := svc.Update(ctx, owner, deck.ID, "Deck", "", settings)
		require.NoError(t, err)
		assert.Equal(t, settings, updated.Settings)
	})

	t.Run("invalid settings leave the deck untouched", func(t *testing.T) {
		t.Parallel()
		svc, _ := newDeckService(t)
		owner := uuid.New()
		deck, err := svc.Create(ctx, owner, "Deck", "")
		require.NoError(t, err)

		bad := domain.StudySettings{
			DailyReviewLimit:    10,
			EasyMinIntervalDays: 10,
			MaxIntervalDays:     5,
			RepeatInSession:     true,
		}
		_, err = svc.Update(ctx, owner, deck.ID, "Renamed", "", bad)
		assert.ErrorIs(t, err, domain.ErrMaxBelowEasyMin)

		got, err := svc.Get(ctx, owner, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, "Deck", got.Name)
		assert.Equal(t, domain.DefaultStudySettings(), got.Settings)
	})

	t.Run("another owner cannot update", func(t *testing.T) {
		t.Parallel()
		svc, _ := newDeckService(t)
		deck, err := svc.Create(ctx, uuid.New(), "Deck", "")
		require.NoError(t, err)

		_, err = svc.Update(ctx, uuid.New(), deck.ID, "Stolen", "", domain.DefaultStudySettings())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeckServiceDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newDeckService(t)
	owner := uuid.New()
	deck, err := svc.Create(ctx, owner, "Deck", "")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, deck.ID))

	_, err = svc.Get(ctx, owner, deck.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	decks, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, decks)
}
