package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/sync"
)

// CardStore defines the persistence contract for cards, including the card
// half of the sync reconciler. Card ownership is transitive: a card belongs
// to whoever owns its deck.
type CardStore interface {
	// GetByID retrieves a card by ID. Soft-deleted cards are invisible;
	// returns ErrCardNotFound for both missing and tombstoned cards.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// ListByDeck retrieves all live cards in a deck.
	ListByDeck(ctx context.Context, deckID uuid.UUID) ([]*domain.Card, error)

	// Upsert inserts the card or fully overwrites an existing row with the
	// same ID, including its scheduling state and tag references.
	Upsert(ctx context.Context, card *domain.Card) error

	// SoftDelete tombstones a card. Returns ErrCardNotFound if missing.
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error

	// ChangesSince emits changes for cards in decks owned by ownerID,
	// modified or deleted after the token's cutoff. Semantics match
	// DeckStore.ChangesSince.
	ChangesSince(ctx context.Context, token string, ownerID uuid.UUID) ([]sync.Change[*domain.Card], error)

	// SaveChanges applies inbound card changes. The ownership gate checks
	// the owning deck: changes for decks the caller does not own are
	// silently skipped. Semantics otherwise match DeckStore.SaveChanges.
	SaveChanges(ctx context.Context, changes []sync.Change[*domain.Card], ownerID uuid.UUID) (string, error)

	// WithTx returns a CardStore bound to the given transaction.
	WithTx(tx *sql.Tx) CardStore
}
