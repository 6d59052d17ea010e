package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity holds the common fields shared by every synchronizable record.
// It is embedded in Deck, Card, Tag and UserProfile.
//
// ModifiedAt is stamped on every create, update and soft-delete; sync delta
// queries select on it. DeletedAt, when set, marks the record as a tombstone:
// invisible to get/list reads but still emitted by sync pulls until it is
// garbage-collected out of band.
type Entity struct {
	ID         uuid.UUID  `json:"id"`
	CreatedAt  time.Time  `json:"created_at"`
	ModifiedAt time.Time  `json:"modified_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// NewEntity returns an Entity with a fresh ID and both timestamps set to now.
func NewEntity(now time.Time) Entity {
	return Entity{
		ID:         uuid.New(),
		CreatedAt:  now.UTC(),
		ModifiedAt: now.UTC(),
	}
}

// Touch stamps ModifiedAt. Call on every mutation so the change is picked up
// by sync delta queries.
func (e *Entity) Touch(now time.Time) {
	e.ModifiedAt = now.UTC()
}

// MarkDeleted turns the entity into a tombstone. ModifiedAt mirrors DeletedAt
// so a single cutoff comparison covers both edits and deletions.
func (e *Entity) MarkDeleted(at time.Time) {
	at = at.UTC()
	e.DeletedAt = &at
	e.ModifiedAt = at
}

// IsDeleted reports whether the entity is a tombstone.
func (e *Entity) IsDeleted() bool {
	return e.DeletedAt != nil
}
