package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/store"
	"github.com/flashdeck/flashdeck-api/internal/sync"
)

func mustTag(t *testing.T, ownerID uuid.UUID, name string, at time.Time) *domain.Tag {
	t.Helper()
	tag, err := domain.NewTag(ownerID, name, at)
	require.NoError(t, err)
	return tag
}

func TestTagStoreUniqueness(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("duplicate name for the same owner is rejected", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		require.NoError(t, s.Tags().Upsert(ctx, mustTag(t, owner, "grammar", baseTime)))

		err := s.Tags().Upsert(ctx, mustTag(t, owner, "Grammar", baseTime))
		assert.ErrorIs(t, err, store.ErrTagNameExists, "names compare case-insensitively")
	})

	t.Run("same name under different owners is fine", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		require.NoError(t, s.Tags().Upsert(ctx, mustTag(t, uuid.New(), "grammar", baseTime)))
		assert.NoError(t, s.Tags().Upsert(ctx, mustTag(t, uuid.New(), "grammar", baseTime)))
	})

	t.Run("a tombstoned tag frees its name", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		old := mustTag(t, owner, "grammar", baseTime)
		require.NoError(t, s.Tags().Upsert(ctx, old))
		require.NoError(t, s.Tags().SoftDelete(ctx, old.ID, baseTime.Add(time.Hour)))

		assert.NoError(t, s.Tags().Upsert(ctx, mustTag(t, owner, "grammar", baseTime.Add(2*time.Hour))))
	})

	t.Run("renaming a tag in place does not collide with itself", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		tag := mustTag(t, owner, "grammar", baseTime)
		require.NoError(t, s.Tags().Upsert(ctx, tag))

		tag.Name = "Grammar"
		assert.NoError(t, s.Tags().Upsert(ctx, tag))
	})
}

func TestTagSaveChanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("gate drops tags naming another owner", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		victim := uuid.New()
		attacker := uuid.New()
		tag := mustTag(t, victim, "private", baseTime)
		require.NoError(t, s.Tags().Upsert(ctx, tag))

		forged := cloneTag(tag)
		forged.Name = "hijacked"
		_, err := s.Tags().SaveChanges(ctx, []sync.Change[*domain.Tag]{sync.Upsert(forged)}, attacker)
		require.NoError(t, err)

		got, err := s.Tags().GetByID(ctx, tag.ID)
		require.NoError(t, err)
		assert.Equal(t, "private", got.Name)
	})

	t.Run("claims ownerless tags for the caller", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		tag := mustTag(t, owner, "unclaimed", baseTime)
		tag.OwnerID = uuid.Nil

		_, err := s.Tags().SaveChanges(ctx, []sync.Change[*domain.Tag]{sync.Upsert(tag)}, owner)
		require.NoError(t, err)

		got, err := s.Tags().GetByID(ctx, tag.ID)
		require.NoError(t, err)
		assert.Equal(t, owner, got.OwnerID)
	})
}
