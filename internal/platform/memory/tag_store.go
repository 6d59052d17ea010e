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

// TagStore is the tag view of an in-memory Store.
type TagStore struct {
	s *Store
}

var _ store.TagStore = (*TagStore)(nil)

// WithTx implements store.TagStore.WithTx.
func (ts *TagStore) WithTx(tx *sql.Tx) store.TagStore { return ts }

// GetByID implements store.TagStore.GetByID.
func (ts *TagStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	tag, ok := ts.s.tags[id]
	if !ok || tag.IsDeleted() {
		return nil, store.ErrTagNotFound
	}
	return cloneTag(tag), nil
}

// ListByOwner implements store.TagStore.ListByOwner.
func (ts *TagStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Tag, error) {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	var tags []*domain.Tag
	for _, tag := range ts.s.tags {
		if tag.OwnerID == ownerID && !tag.IsDeleted() {
			tags = append(tags, cloneTag(tag))
		}
	}
	sortByCreated(tags, func(t *domain.Tag) time.Time { return t.CreatedAt })
	return tags, nil
}

// Upsert implements store.TagStore.Upsert, enforcing (owner, name)
// uniqueness among live tags.
func (ts *TagStore) Upsert(ctx context.Context, tag *domain.Tag) error {
	if err := tag.Validate(); err != nil {
		return err
	}

	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	for _, other := range ts.s.tags {
		if other.ID != tag.ID && other.OwnerID == tag.OwnerID && !other.IsDeleted() &&
			strings.EqualFold(other.Name, tag.Name) {
			return fmt.Errorf("%w: %q", store.ErrTagNameExists, tag.Name)
		}
	}

	ts.s.tags[tag.ID] = cloneTag(tag)
	return nil
}

// SoftDelete implements store.TagStore.SoftDelete.
func (ts *TagStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	tag, ok := ts.s.tags[id]
	if !ok || tag.IsDeleted() {
		return store.ErrTagNotFound
	}
	tag.MarkDeleted(at)
	return nil
}

// ChangesSince implements store.TagStore.ChangesSince.
func (ts *TagStore) ChangesSince(
	ctx context.Context,
	token string,
	ownerID uuid.UUID,
) ([]sync.Change[*domain.Tag], error) {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	cutoff, hasCutoff := sync.ParseToken(token)

	var changes []sync.Change[*domain.Tag]
	for _, tag := range ts.s.tags {
		if tag.OwnerID != ownerID {
			continue
		}
		if hasCutoff && !modifiedAfter(tag.Entity, cutoff) {
			continue
		}
		if tag.IsDeleted() {
			changes = append(changes, sync.Delete(cloneTag(tag)))
		} else {
			changes = append(changes, sync.Upsert(cloneTag(tag)))
		}
	}
	return changes, nil
}

// SaveChanges implements store.TagStore.SaveChanges.
func (ts *TagStore) SaveChanges(
	ctx context.Context,
	changes []sync.Change[*domain.Tag],
	ownerID uuid.UUID,
) (string, error) {
	ts.s.mu.Lock()
	defer ts.s.mu.Unlock()

	now := ts.s.now().UTC()

	for _, change := range changes {
		if change.Entity == nil {
			continue
		}
		tag := cloneTag(change.Entity)

		if tag.OwnerID != uuid.Nil && tag.OwnerID != ownerID {
			continue
		}
		tag.OwnerID = ownerID

		if change.Operation == sync.OpDelete {
			deletedAt := now
			if tag.DeletedAt != nil {
				deletedAt = tag.DeletedAt.UTC()
			}
			if existing, ok := ts.s.tags[tag.ID]; ok {
				existing.MarkDeleted(deletedAt)
			} else {
				tag.MarkDeleted(deletedAt)
				ts.s.tags[tag.ID] = tag
			}
			continue
		}

		ts.s.tags[tag.ID] = tag
	}

	return sync.NewToken(now), nil
}
