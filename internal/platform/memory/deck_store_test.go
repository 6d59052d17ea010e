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

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// testClock is a manually advanced clock shared by store tests.
type testClock struct {
	at time.Time
}

func (c *testClock) Now() time.Time          { return c.at }
func (c *testClock) Advance(d time.Duration) { c.at = c.at.Add(d) }

func newTestStore(t *testing.T) (*Store, *testClock) {
	t.Helper()
	clock := &testClock{at: baseTime}
	return NewStore(clock.Now), clock
}

func mustDeck(t *testing.T, ownerID uuid.UUID, name string, at time.Time) *domain.Deck {
	t.Helper()
	deck, err := domain.NewDeck(ownerID, name, "", at)
	require.NoError(t, err)
	return deck
}

func TestDeckStoreCRUD(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("get returns stored deck", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		deck := mustDeck(t, uuid.New(), "Spanish", baseTime)
		require.NoError(t, s.Decks().Upsert(ctx, deck))

		got, err := s.Decks().GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, deck.Name, got.Name)
	})

	t.Run("get hides tombstones", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		deck := mustDeck(t, uuid.New(), "Spanish", baseTime)
		require.NoError(t, s.Decks().Upsert(ctx, deck))
		require.NoError(t, s.Decks().SoftDelete(ctx, deck.ID, baseTime.Add(time.Hour)))

		_, err := s.Decks().GetByID(ctx, deck.ID)
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
	})

	t.Run("soft delete of a missing deck fails", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		err := s.Decks().SoftDelete(ctx, uuid.New(), baseTime)
		assert.ErrorIs(t, err, store.ErrDeckNotFound)
	})

	t.Run("list is scoped to the owner and excludes tombstones", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		mine := mustDeck(t, owner, "Mine", baseTime)
		deleted := mustDeck(t, owner, "Gone", baseTime.Add(time.Minute))
		other := mustDeck(t, uuid.New(), "Theirs", baseTime)
		for _, d := range []*domain.Deck{mine, deleted, other} {
			require.NoError(t, s.Decks().Upsert(ctx, d))
		}
		require.NoError(t, s.Decks().SoftDelete(ctx, deleted.ID, baseTime.Add(time.Hour)))

		decks, err := s.Decks().ListByOwner(ctx, owner)
		require.NoError(t, err)
		require.Len(t, decks, 1)
		assert.Equal(t, mine.ID, decks[0].ID)
	})

	t.Run("stored decks are isolated from caller mutation", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		deck := mustDeck(t, uuid.New(), "Original", baseTime)
		require.NoError(t, s.Decks().Upsert(ctx, deck))

		deck.Name = "Mutated after store"

		got, err := s.Decks().GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original", got.Name)
	})
}

func TestDeckChangesSince(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("empty token means full resync", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		require.NoError(t, s.Decks().Upsert(ctx, mustDeck(t, owner, "A", baseTime)))
		require.NoError(t, s.Decks().Upsert(ctx, mustDeck(t, owner, "B", baseTime)))

		changes, err := s.Decks().ChangesSince(ctx, "", owner)
		require.NoError(t, err)
		assert.Len(t, changes, 2)
	})

	t.Run("unparseable token also means full resync", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		require.NoError(t, s.Decks().Upsert(ctx, mustDeck(t, owner, "A", baseTime)))

		changes, err := s.Decks().ChangesSince(ctx, "garbage", owner)
		require.NoError(t, err)
		assert.Len(t, changes, 1)
	})

	t.Run("cutoff excludes unchanged decks", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		old := mustDeck(t, owner, "Old", baseTime)
		fresh := mustDeck(t, owner, "Fresh", baseTime.Add(2*time.Hour))
		require.NoError(t, s.Decks().Upsert(ctx, old))
		require.NoError(t, s.Decks().Upsert(ctx, fresh))

		token := sync.NewToken(baseTime.Add(time.Hour))
		changes, err := s.Decks().ChangesSince(ctx, token, owner)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, fresh.ID, changes[0].Entity.ID)
		assert.Equal(t, sync.OpUpsert, changes[0].Operation)
	})

	t.Run("a deck modified then deleted yields one delete change", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		deck := mustDeck(t, owner, "Doomed", baseTime)
		require.NoError(t, s.Decks().Upsert(ctx, deck))

		deck.Touch(baseTime.Add(time.Hour))
		require.NoError(t, s.Decks().Upsert(ctx, deck))
		require.NoError(t, s.Decks().SoftDelete(ctx, deck.ID, baseTime.Add(2*time.Hour)))

		changes, err := s.Decks().ChangesSince(ctx, sync.NewToken(baseTime), owner)
		require.NoError(t, err)
		require.Len(t, changes, 1, "one change per entity, never one per edit")
		assert.Equal(t, sync.OpDelete, changes[0].Operation)
		assert.NotNil(t, changes[0].Entity.DeletedAt)
	})

	t.Run("tombstones older than the cutoff are not re-sent", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		deck := mustDeck(t, owner, "Doomed", baseTime)
		require.NoError(t, s.Decks().Upsert(ctx, deck))
		require.NoError(t, s.Decks().SoftDelete(ctx, deck.ID, baseTime.Add(time.Hour)))

		changes, err := s.Decks().ChangesSince(ctx, sync.NewToken(baseTime.Add(2*time.Hour)), owner)
		require.NoError(t, err)
		assert.Empty(t, changes)
	})

	t.Run("other owners' decks never appear", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		require.NoError(t, s.Decks().Upsert(ctx, mustDeck(t, uuid.New(), "Theirs", baseTime)))

		changes, err := s.Decks().ChangesSince(ctx, "", owner)
		require.NoError(t, err)
		assert.Empty(t, changes)
	})
}

func TestDeckSaveChanges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("applies upserts and mints a token at the commit instant", func(t *testing.T) {
		t.Parallel()
		s, clock := newTestStore(t)
		owner := uuid.New()
		deck := mustDeck(t, owner, "Pushed", baseTime)

		clock.Advance(time.Hour)
		token, err := s.Decks().SaveChanges(ctx, []sync.Change[*domain.Deck]{sync.Upsert(deck)}, owner)
		require.NoError(t, err)
		assert.Equal(t, sync.NewToken(baseTime.Add(time.Hour)), token)

		got, err := s.Decks().GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, "Pushed", got.Name)
	})

	t.Run("claims ownerless decks for the caller", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		deck := mustDeck(t, owner, "Unclaimed", baseTime)
		deck.OwnerID = uuid.Nil

		_, err := s.Decks().SaveChanges(ctx, []sync.Change[*domain.Deck]{sync.Upsert(deck)}, owner)
		require.NoError(t, err)

		got, err := s.Decks().GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, owner, got.OwnerID)
	})

	t.Run("silently drops changes naming another owner", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		victim := uuid.New()
		attacker := uuid.New()
		deck := mustDeck(t, victim, "Target", baseTime)
		require.NoError(t, s.Decks().Upsert(ctx, deck))

		forged := cloneDeck(deck)
		forged.Name = "Hijacked"
		_, err := s.Decks().SaveChanges(ctx, []sync.Change[*domain.Deck]{sync.Upsert(forged)}, attacker)
		require.NoError(t, err, "the batch succeeds, the foreign change is skipped")

		got, err := s.Decks().GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, "Target", got.Name)
	})

	t.Run("drops changes with no entity payload", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		deck := mustDeck(t, owner, "Kept", baseTime)

		token, err := s.Decks().SaveChanges(ctx, []sync.Change[*domain.Deck]{
			{Operation: sync.OpUpsert},
			{Operation: sync.OpDelete},
			sync.Upsert(deck),
		}, owner)
		require.NoError(t, err, "empty items are skipped like foreign ones")
		assert.NotEmpty(t, token)

		got, err := s.Decks().GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, "Kept", got.Name)
	})

	t.Run("upsert is a full overwrite, last writer wins", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		deck := mustDeck(t, owner, "First", baseTime)
		require.NoError(t, s.Decks().Upsert(ctx, deck))

		incoming := cloneDeck(deck)
		incoming.Name = "Second"
		incoming.Description = ""
		incoming.Settings.DailyReviewLimit = 10
		_, err := s.Decks().SaveChanges(ctx, []sync.Change[*domain.Deck]{sync.Upsert(incoming)}, owner)
		require.NoError(t, err)

		got, err := s.Decks().GetByID(ctx, deck.ID)
		require.NoError(t, err)
		assert.Equal(t, "Second", got.Name)
		assert.Equal(t, 10, got.Settings.DailyReviewLimit)
	})

	t.Run("delete of a known deck tombstones it in place", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		deck := mustDeck(t, owner, "Doomed", baseTime)
		require.NoError(t, s.Decks().Upsert(ctx, deck))

		incoming := cloneDeck(deck)
		deletedAt := baseTime.Add(time.Hour)
		incoming.MarkDeleted(deletedAt)
		_, err := s.Decks().SaveChanges(ctx, []sync.Change[*domain.Deck]{sync.Delete(incoming)}, owner)
		require.NoError(t, err)

		_, err = s.Decks().GetByID(ctx, deck.ID)
		assert.ErrorIs(t, err, store.ErrDeckNotFound)

		changes, err := s.Decks().ChangesSince(ctx, "", owner)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, sync.OpDelete, changes[0].Operation)
		require.NotNil(t, changes[0].Entity.DeletedAt)
		assert.True(t, changes[0].Entity.DeletedAt.Equal(deletedAt),
			"the incoming deletion timestamp is preserved")
	})

	t.Run("delete of an unknown deck inserts a tombstone", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestStore(t)
		owner := uuid.New()
		phantom := mustDeck(t, owner, "Phantom", baseTime)

		_, err := s.Decks().SaveChanges(ctx, []sync.Change[*domain.Deck]{sync.Delete(phantom)}, owner)
		require.NoError(t, err)

		// The tombstone exists and will propagate to other devices.
		changes, err := s.Decks().ChangesSince(ctx, "", owner)
		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, sync.OpDelete, changes[0].Operation)
		assert.Equal(t, phantom.ID, changes[0].Entity.ID)
	})

	t.Run("push then pull echoes the pushed change with the new token", func(t *testing.T) {
		t.Parallel()
		s, clock := newTestStore(t)
		owner := uuid.New()
		deck := mustDeck(t, owner, "Synced", baseTime)

		clock.Advance(time.Minute)
		token, err := s.Decks().SaveChanges(ctx, []sync.Change[*domain.Deck]{sync.Upsert(deck)}, owner)
		require.NoError(t, err)

		// Pulling with a pre-push token sees the new deck. The cutoff is
		// strictly exclusive, so it sits just before the deck's timestamps.
		changes, err := s.Decks().ChangesSince(ctx, sync.NewToken(baseTime.Add(-time.Second)), owner)
		require.NoError(t, err)
		assert.Len(t, changes, 1)

		// Pulling with the fresh token sees nothing new.
		changes, err = s.Decks().ChangesSince(ctx, token, owner)
		require.NoError(t, err)
		assert.Empty(t, changes)
	})
}
