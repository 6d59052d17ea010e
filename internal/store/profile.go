package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/sync"
)

// ProfileStore defines the persistence contract for user profiles, including
// the profile half of the sync reconciler. A profile's owning scope is its
// own ID.
type ProfileStore interface {
	// GetByID retrieves a profile by ID. Soft-deleted profiles are
	// invisible; returns ErrProfileNotFound for missing and tombstoned ones.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error)

	// GetByEmail retrieves a live profile by email, compared
	// case-insensitively. Returns ErrProfileNotFound if absent.
	GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error)

	// ExistsByEmail reports whether any profile (live or tombstoned) uses
	// the email, compared case-insensitively.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new profile. Returns ErrEmailExists if the email is
	// already in use.
	Create(ctx context.Context, profile *domain.UserProfile) error

	// Upsert inserts or fully overwrites a profile.
	Upsert(ctx context.Context, profile *domain.UserProfile) error

	// SoftDelete tombstones a profile. Returns ErrProfileNotFound if missing.
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error

	// ChangesSince emits changes for the owner's own profile modified or
	// deleted after the token's cutoff.
	ChangesSince(ctx context.Context, token string, ownerID uuid.UUID) ([]sync.Change[*domain.UserProfile], error)

	// SaveChanges applies inbound profile changes. A change with an unset ID
	// is claimed for ownerID; a change naming another profile's ID is
	// silently skipped.
	SaveChanges(ctx context.Context, changes []sync.Change[*domain.UserProfile], ownerID uuid.UUID) (string, error)

	// WithTx returns a ProfileStore bound to the given transaction.
	WithTx(tx *sql.Tx) ProfileStore
}
