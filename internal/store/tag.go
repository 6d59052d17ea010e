package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/sync"
)

// TagStore defines the persistence contract for tags, including the tag half
// of the sync reconciler.
type TagStore interface {
	// GetByID retrieves a tag by ID. Soft-deleted tags are invisible;
	// returns ErrTagNotFound for both missing and tombstoned tags.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error)

	// ListByOwner retrieves all live tags belonging to an owner.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Tag, error)

	// Upsert inserts or fully overwrites a tag. Returns ErrTagNameExists if
	// the owner already has a live tag with the same name.
	Upsert(ctx context.Context, tag *domain.Tag) error

	// SoftDelete tombstones a tag. Returns ErrTagNotFound if missing.
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error

	// ChangesSince emits changes for the owner's tags modified or deleted
	// after the token's cutoff. Semantics match DeckStore.ChangesSince.
	ChangesSince(ctx context.Context, token string, ownerID uuid.UUID) ([]sync.Change[*domain.Tag], error)

	// SaveChanges applies inbound tag changes with the same ownership gate
	// and tombstone semantics as DeckStore.SaveChanges.
	SaveChanges(ctx context.Context, changes []sync.Change[*domain.Tag], ownerID uuid.UUID) (string, error)

	// WithTx returns a TagStore bound to the given transaction.
	WithTx(tx *sql.Tx) TagStore
}
