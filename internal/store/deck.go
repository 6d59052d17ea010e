package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/sync"
)

// DeckStore defines the persistence contract for decks, including the deck
// half of the sync reconciler.
type DeckStore interface {
	// GetByID retrieves a deck by ID. Soft-deleted decks are invisible;
	// returns ErrDeckNotFound for both missing and tombstoned decks.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// ListByOwner retrieves all live decks belonging to an owner.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Deck, error)

	// Upsert inserts the deck or fully overwrites an existing row with the
	// same ID (last writer wins, no field-level merge).
	Upsert(ctx context.Context, deck *domain.Deck) error

	// SoftDelete tombstones a deck, stamping both DeletedAt and ModifiedAt
	// with the given time. Returns ErrDeckNotFound if the deck is missing.
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error

	// ChangesSince emits one change per deck of the owner modified or
	// deleted after the token's cutoff: Delete for tombstones, Upsert
	// otherwise. A missing or unparseable token means full resync. Order
	// within the batch is unspecified.
	ChangesSince(ctx context.Context, token string, ownerID uuid.UUID) ([]sync.Change[*domain.Deck], error)

	// SaveChanges applies inbound changes in input order and mints a new
	// token. Changes naming a different owner are silently skipped; changes
	// with no owner are claimed for ownerID. Deletes of unknown decks insert
	// them as already-deleted tombstones. The batch must be applied within
	// one atomic commit; run it through WithTx and RunInTransaction.
	SaveChanges(ctx context.Context, changes []sync.Change[*domain.Deck], ownerID uuid.UUID) (string, error)

	// WithTx returns a DeckStore bound to the given transaction.
	WithTx(tx *sql.Tx) DeckStore
}
