package memory

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/store"
	"github.com/flashdeck/flashdeck-api/internal/sync"
)

// DeckStore is the deck view of an in-memory Store.
type DeckStore struct {
	s *Store
}

var _ store.DeckStore = (*DeckStore)(nil)

// WithTx implements store.DeckStore.WithTx. The in-memory store serializes
// batches under its own lock, so the transaction handle is ignored.
func (ds *DeckStore) WithTx(tx *sql.Tx) store.DeckStore { return ds }

// GetByID implements store.DeckStore.GetByID.
func (ds *DeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	ds.s.mu.Lock()
	defer ds.s.mu.Unlock()

	deck, ok := ds.s.decks[id]
	if !ok || deck.IsDeleted() {
		return nil, store.ErrDeckNotFound
	}
	return cloneDeck(deck), nil
}

// ListByOwner implements store.DeckStore.ListByOwner.
func (ds *DeckStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Deck, error) {
	ds.s.mu.Lock()
	defer ds.s.mu.Unlock()

	var decks []*domain.Deck
	for _, deck := range ds.s.decks {
		if deck.OwnerID == ownerID && !deck.IsDeleted() {
			decks = append(decks, cloneDeck(deck))
		}
	}
	sortByCreated(decks, func(d *domain.Deck) time.Time { return d.CreatedAt })
	return decks, nil
}

// Upsert implements store.DeckStore.Upsert.
func (ds *DeckStore) Upsert(ctx context.Context, deck *domain.Deck) error {
	if err := deck.Validate(); err != nil {
		return err
	}

	ds.s.mu.Lock()
	defer ds.s.mu.Unlock()
	ds.s.decks[deck.ID] = cloneDeck(deck)
	return nil
}

// SoftDelete implements store.DeckStore.SoftDelete.
func (ds *DeckStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	ds.s.mu.Lock()
	defer ds.s.mu.Unlock()

	deck, ok := ds.s.decks[id]
	if !ok || deck.IsDeleted() {
		return store.ErrDeckNotFound
	}
	deck.MarkDeleted(at)
	return nil
}

// ChangesSince implements store.DeckStore.ChangesSince.
func (ds *DeckStore) ChangesSince(
	ctx context.Context,
	token string,
	ownerID uuid.UUID,
) ([]sync.Change[*domain.Deck], error) {
	ds.s.mu.Lock()
	defer ds.s.mu.Unlock()

	cutoff, hasCutoff := sync.ParseToken(token)

	var changes []sync.Change[*domain.Deck]
	for _, deck := range ds.s.decks {
		if deck.OwnerID != ownerID {
			continue
		}
		if hasCutoff && !modifiedAfter(deck.Entity, cutoff) {
			continue
		}
		if deck.IsDeleted() {
			changes = append(changes, sync.Delete(cloneDeck(deck)))
		} else {
			changes = append(changes, sync.Upsert(cloneDeck(deck)))
		}
	}
	return changes, nil
}

// SaveChanges implements store.DeckStore.SaveChanges.
func (ds *DeckStore) SaveChanges(
	ctx context.Context,
	changes []sync.Change[*domain.Deck],
	ownerID uuid.UUID,
) (string, error) {
	ds.s.mu.Lock()
	defer ds.s.mu.Unlock()

	now := ds.s.now().UTC()

	for _, change := range changes {
		if change.Entity == nil {
			continue
		}
		deck := cloneDeck(change.Entity)

		if deck.OwnerID != uuid.Nil && deck.OwnerID != ownerID {
			continue
		}
		deck.OwnerID = ownerID

		if change.Operation == sync.OpDelete {
			deletedAt := now
			if deck.DeletedAt != nil {
				deletedAt = deck.DeletedAt.UTC()
			}
			if existing, ok := ds.s.decks[deck.ID]; ok {
				existing.MarkDeleted(deletedAt)
			} else {
				deck.MarkDeleted(deletedAt)
				ds.s.decks[deck.ID] = deck
			}
			continue
		}

		ds.s.decks[deck.ID] = deck
	}

	return sync.NewToken(now), nil
}
