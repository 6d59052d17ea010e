package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tag is an owner-scoped label that cards reference. Tags are unique by
// (owner, name); the store enforces that. A tag is never owned by a card or
// deck, only referenced.
type Tag struct {
	Entity
	OwnerID uuid.UUID `json:"owner_id"`
	Name    string    `json:"name"`
}

// NewTag creates a tag for the given owner.
func NewTag(ownerID uuid.UUID, name string, now time.Time) (*Tag, error) {
	tag := &Tag{
		Entity:  NewEntity(now),
		OwnerID: ownerID,
		Name:    name,
	}
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	return tag, nil
}

// Validate checks the tag's fields.
func (t *Tag) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrTagNameEmpty
	}
	return nil
}
