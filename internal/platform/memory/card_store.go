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

// CardStore is the card view of an in-memory Store.
type CardStore struct {
	s *Store
}

var _ store.CardStore = (*CardStore)(nil)

// WithTx implements store.CardStore.WithTx.
func (cs *CardStore) WithTx(tx *sql.Tx) store.CardStore { return cs }

// GetByID implements store.CardStore.GetByID.
func (cs *CardStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	card, ok := cs.s.cards[id]
	if !ok || card.IsDeleted() {
		return nil, store.ErrCardNotFound
	}
	return cloneCard(card), nil
}

// ListByDeck implements store.CardStore.ListByDeck.
func (cs *CardStore) ListByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	var cards []*domain.Card
	for _, card := range cs.s.cards {
		if card.DeckID == deckID && !card.IsDeleted() {
			cards = append(cards, cloneCard(card))
		}
	}
	sortByCreated(cards, func(c *domain.Card) time.Time { return c.CreatedAt })
	return cards, nil
}

// Upsert implements store.CardStore.Upsert.
func (cs *CardStore) Upsert(ctx context.Context, card *domain.Card) error {
	if err := card.Validate(); err != nil {
		return err
	}

	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()
	cs.s.cards[card.ID] = cloneCard(card)
	return nil
}

// SoftDelete implements store.CardStore.SoftDelete.
func (cs *CardStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	card, ok := cs.s.cards[id]
	if !ok || card.IsDeleted() {
		return store.ErrCardNotFound
	}
	card.MarkDeleted(at)
	return nil
}

// ChangesSince implements store.CardStore.ChangesSince. Ownership is
// transitive through the owning deck.
func (cs *CardStore) ChangesSince(
	ctx context.Context,
	token string,
	ownerID uuid.UUID,
) ([]sync.Change[*domain.Card], error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	cutoff, hasCutoff := sync.ParseToken(token)

	var changes []sync.Change[*domain.Card]
	for _, card := range cs.s.cards {
		if !cs.s.ownsDeck(card.DeckID, ownerID) {
			continue
		}
		if hasCutoff && !modifiedAfter(card.Entity, cutoff) {
			continue
		}
		if card.IsDeleted() {
			changes = append(changes, sync.Delete(cloneCard(card)))
		} else {
			changes = append(changes, sync.Upsert(cloneCard(card)))
		}
	}
	return changes, nil
}

// SaveChanges implements store.CardStore.SaveChanges. Changes for decks the
// caller does not own are silently skipped.
func (cs *CardStore) SaveChanges(
	ctx context.Context,
	changes []sync.Change[*domain.Card],
	ownerID uuid.UUID,
) (string, error) {
	cs.s.mu.Lock()
	defer cs.s.mu.Unlock()

	now := cs.s.now().UTC()

	for _, change := range changes {
		if change.Entity == nil {
			continue
		}
		card := cloneCard(change.Entity)

		if !cs.s.ownsDeck(card.DeckID, ownerID) {
			continue
		}

		if change.Operation == sync.OpDelete {
			deletedAt := now
			if card.DeletedAt != nil {
				deletedAt = card.DeletedAt.UTC()
			}
			if existing, ok := cs.s.cards[card.ID]; ok {
				existing.MarkDeleted(deletedAt)
			} else {
				card.MarkDeleted(deletedAt)
				cs.s.cards[card.ID] = card
			}
			continue
		}

		cs.s.cards[card.ID] = card
	}

	return sync.NewToken(now), nil
}
