package domain

import (
	"strings"
	"time"
)

// UserProfile is the account record for a single owner. The owner's identity
// is the profile ID itself; decks, tags and (transitively) cards hang off it.
type UserProfile struct {
	Entity
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url,omitempty"`

	// LastSyncToken is the most recent sync cursor the owner's client
	// acknowledged. Informational; the server never interprets it.
	LastSyncToken string `json:"last_sync_token,omitempty"`
}

// NewUserProfile creates a profile. Email is stored lowercased; uniqueness
// is enforced case-insensitively by the store.
func NewUserProfile(displayName, email, avatarURL string, now time.Time) (*UserProfile, error) {
	profile := &UserProfile{
		Entity:      NewEntity(now),
		DisplayName: displayName,
		Email:       strings.ToLower(email),
		AvatarURL:   avatarURL,
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// Validate checks the profile's fields.
func (p *UserProfile) Validate() error {
	if strings.TrimSpace(p.DisplayName) == "" {
		return ErrDisplayNameEmpty
	}
	if strings.TrimSpace(p.Email) == "" {
		return ErrEmailEmpty
	}
	return nil
}
