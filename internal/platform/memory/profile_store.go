package memory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/store"
	"github.com/flashdeck/flashdeck-api/internal/sync"
)

// ProfileStore is the profile view of an in-memory Store.
type ProfileStore struct {
	s *Store
}

var _ store.ProfileStore = (*ProfileStore)(nil)

// WithTx implements store.ProfileStore.WithTx.
func (ps *ProfileStore) WithTx(tx *sql.Tx) store.ProfileStore { return ps }

// GetByID implements store.ProfileStore.GetByID.
func (ps *ProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	profile, ok := ps.s.profiles[id]
	if !ok || profile.IsDeleted() {
		return nil, store.ErrProfileNotFound
	}
	return cloneProfile(profile), nil
}

// GetByEmail implements store.ProfileStore.GetByEmail.
func (ps *ProfileStore) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	for _, profile := range ps.s.profiles {
		if strings.EqualFold(profile.Email, email) && !profile.IsDeleted() {
			return cloneProfile(profile), nil
		}
	}
	return nil, store.ErrProfileNotFound
}

// ExistsByEmail implements store.ProfileStore.ExistsByEmail.
func (ps *ProfileStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	for _, profile := range ps.s.profiles {
		if strings.EqualFold(profile.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

// Create implements store.ProfileStore.Create.
func (ps *ProfileStore) Create(ctx context.Context, profile *domain.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	for _, other := range ps.s.profiles {
		if strings.EqualFold(other.Email, profile.Email) {
			return fmt.Errorf("%w: %s", store.ErrEmailExists, profile.Email)
		}
	}

	ps.s.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

// Upsert implements store.ProfileStore.Upsert.
func (ps *ProfileStore) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return err
	}

	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()
	ps.s.profiles[profile.ID] = cloneProfile(profile)
	return nil
}

// SoftDelete implements store.ProfileStore.SoftDelete.
func (ps *ProfileStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	profile, ok := ps.s.profiles[id]
	if !ok || profile.IsDeleted() {
		return store.ErrProfileNotFound
	}
	profile.MarkDeleted(at)
	return nil
}

// ChangesSince implements store.ProfileStore.ChangesSince.
func (ps *ProfileStore) ChangesSince(
	ctx context.Context,
	token string,
	ownerID uuid.UUID,
) ([]sync.Change[*domain.UserProfile], error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	cutoff, hasCutoff := sync.ParseToken(token)

	var changes []sync.Change[*domain.UserProfile]
	if profile, ok := ps.s.profiles[ownerID]; ok {
		if !hasCutoff || modifiedAfter(profile.Entity, cutoff) {
			if profile.IsDeleted() {
				changes = append(changes, sync.Delete(cloneProfile(profile)))
			} else {
				changes = append(changes, sync.Upsert(cloneProfile(profile)))
			}
		}
	}
	return changes, nil
}

// SaveChanges implements store.ProfileStore.SaveChanges.
func (ps *ProfileStore) SaveChanges(
	ctx context.Context,
	changes []sync.Change[*domain.UserProfile],
	ownerID uuid.UUID,
) (string, error) {
	ps.s.mu.Lock()
	defer ps.s.mu.Unlock()

	now := ps.s.now().UTC()

	for _, change := range changes {
		if change.Entity == nil {
			continue
		}
		profile := cloneProfile(change.Entity)

		if profile.ID != uuid.Nil && profile.ID != ownerID {
			continue
		}
		profile.ID = ownerID

		if change.Operation == sync.OpDelete {
			deletedAt := now
			if profile.DeletedAt != nil {
				deletedAt = profile.DeletedAt.UTC()
			}
			if existing, ok := ps.s.profiles[profile.ID]; ok {
				existing.MarkDeleted(deletedAt)
			} else {
				profile.MarkDeleted(deletedAt)
				ps.s.profiles[profile.ID] = profile
			}
			continue
		}

		ps.s.profiles[profile.ID] = profile
	}

	return sync.NewToken(now), nil
}
