package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/store"
)

// ProfileService owns the account use-cases: registration and profile
// maintenance. The profile ID doubles as the owner identity for every other
// entity.
type ProfileService struct {
	profiles store.ProfileStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewProfileService creates a ProfileService. A nil clock defaults to
// time.Now.
func NewProfileService(profiles store.ProfileStore, logger *slog.Logger, now func() time.Time) *ProfileService {
	if now == nil {
		now = time.Now
	}
	return &ProfileService{
		profiles: profiles,
		logger:   logger.With(slog.String("component", "profile_service")),
		now:      now,
	}
}

// validateAvatarURL accepts an empty value or an absolute http(s) URL.
func validateAvatarURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return domain.ErrAvatarURLNotAbsolute
	}
	return nil
}

// Register creates a new profile. Email uniqueness is case-insensitive and
// covers tombstoned profiles, so a deleted account's address cannot be
// reclaimed.
func (s *ProfileService) Register(ctx context.Context, displayName, email, avatarURL string) (*domain.UserProfile, error) {
	displayName, err := sanitizeStrict(displayName)
	if err != nil {
		return nil, err
	}
	email, err = sanitizeStrict(email)
	if err != nil {
		return nil, err
	}
	if err := validateAvatarURL(avatarURL); err != nil {
		return nil, err
	}

	profile, err := domain.NewUserProfile(displayName, email, avatarURL, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.profiles.Create(ctx, profile); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, fmt.Errorf("%w: email already registered", ErrConflict)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile registered",
		slog.String("profile_id", profile.ID.String()))
	return profile, nil
}

// Get retrieves the caller's own profile.
func (s *ProfileService) Get(ctx context.Context, ownerID uuid.UUID) (*domain.UserProfile, error) {
	profile, err := s.profiles.GetByID(ctx, ownerID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// GetByEmail retrieves a live profile by email. Used by the token issuing
// endpoint to resolve credentials to an owner identity.
func (s *ProfileService) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}
	return profile, nil
}

// Update replaces the caller's display name and avatar URL. Email is
// immutable after registration.
func (s *ProfileService) Update(ctx context.Context, ownerID uuid.UUID, displayName, avatarURL string) (*domain.UserProfile, error) {
	profile, err := s.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	displayName, err = sanitizeStrict(displayName)
	if err != nil {
		return nil, err
	}
	if err := validateAvatarURL(avatarURL); err != nil {
		return nil, err
	}

	profile.DisplayName = displayName
	profile.AvatarURL = avatarURL
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	profile.Touch(s.now())

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

// Delete tombstones the caller's profile. Their decks, cards and tags stay
// in place for sync clients that have not yet seen the deletion.
func (s *ProfileService) Delete(ctx context.Context, ownerID uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID); err != nil {
		return err
	}
	if err := s.profiles.SoftDelete(ctx, ownerID, s.now()); err != nil {
		if store.IsNotFoundError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}
