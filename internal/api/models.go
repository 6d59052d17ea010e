package api

import (
	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
)

// RegisterRequest is the payload for creating a new profile.
type RegisterRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=200"`
	Email       string `json:"email" validate:"required,email,max=320"`
	AvatarURL   string `json:"avatar_url,omitempty" validate:"omitempty,max=2000"`
}

// TokenRequest exchanges a registered email for a bearer token.
type TokenRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// TokenResponse carries the issued bearer token and its owner.
type TokenResponse struct {
	Token   string `json:"token"`
	OwnerID string `json:"owner_id"`
}

// CreateDeckRequest is the payload for creating a deck.
type CreateDeckRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

// UpdateDeckRequest replaces a deck's content and study settings wholesale.
type UpdateDeckRequest struct {
	Name        string               `json:"name" validate:"required,max=200"`
	Description string               `json:"description,omitempty" validate:"max=2000"`
	Settings    domain.StudySettings `json:"settings"`
}

// CreateCardRequest is the payload for adding a card to a deck.
type CreateCardRequest struct {
	Front  string      `json:"front" validate:"required,max=10000"`
	Back   string      `json:"back,omitempty" validate:"max=10000"`
	Notes  string      `json:"notes,omitempty" validate:"max=10000"`
	TagIDs []uuid.UUID `json:"tag_ids,omitempty"`
}

// UpdateCardRequest replaces a card's content. Scheduling state is not
// client-writable through this endpoint; reviews and sync are the only
// paths that move it.
type UpdateCardRequest struct {
	Front  string      `json:"front" validate:"required,max=10000"`
	Back   string      `json:"back,omitempty" validate:"max=10000"`
	Notes  string      `json:"notes,omitempty" validate:"max=10000"`
	TagIDs []uuid.UUID `json:"tag_ids,omitempty"`
}

// TagRequest is the payload for creating or renaming a tag.
type TagRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// UpdateProfileRequest replaces the caller's mutable profile fields.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=200"`
	AvatarURL   string `json:"avatar_url,omitempty" validate:"omitempty,max=2000"`
}

// ReviewRequest grades a card.
type ReviewRequest struct {
	Rating string `json:"rating" validate:"required,oneof=again hard medium easy"`
}

// StudyQueueResponse is the due-card queue for a deck.
type StudyQueueResponse struct {
	DeckID string         `json:"deck_id"`
	Cards  []*domain.Card `json:"cards"`
}
