package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/store"
)

// TagService owns the tag use-cases. Tag names are unique per owner among
// live tags.
type TagService struct {
	tags   store.TagStore
	logger *slog.Logger
	now    func() time.Time
}

// NewTagService creates a TagService. A nil clock defaults to time.Now.
func NewTagService(tags store.TagStore, logger *slog.Logger, now func() time.Time) *TagService {
	if now == nil {
		now = time.Now
	}
	return &TagService{
		tags:   tags,
		logger: logger.With(slog.String("component", "tag_service")),
		now:    now,
	}
}

// Create makes a new tag for the owner. A duplicate name is a conflict.
func (s *TagService) Create(ctx context.Context, ownerID uuid.UUID, name string) (*domain.Tag, error) {
	name, err := sanitizeStrict(name)
	if err != nil {
		return nil, err
	}

	tag, err := domain.NewTag(ownerID, name, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.tags.Upsert(ctx, tag); err != nil {
		if errors.Is(err, store.ErrTagNameExists) {
			return nil, fmt.Errorf("%w: tag name already in use", ErrConflict)
		}
		return nil, fmt.Errorf("failed to save tag: %w", err)
	}
	return tag, nil
}

// Get retrieves one of the owner's tags.
func (s *TagService) Get(ctx context.Context, ownerID, tagID uuid.UUID) (*domain.Tag, error) {
	tag, err := s.tags.GetByID(ctx, tagID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	if tag.OwnerID != ownerID {
		return nil, ErrNotFound
	}
	return tag, nil
}

// List retrieves all of the owner's live tags.
func (s *TagService) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.Tag, error) {
	tags, err := s.tags.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// Rename changes the tag's name, subject to the same uniqueness rule as
// Create.
func (s *TagService) Rename(ctx context.Context, ownerID, tagID uuid.UUID, name string) (*domain.Tag, error) {
	tag, err := s.Get(ctx, ownerID, tagID)
	if err != nil {
		return nil, err
	}

	name, err = sanitizeStrict(name)
	if err != nil {
		return nil, err
	}
	tag.Name = name
	if err := tag.Validate(); err != nil {
		return nil, err
	}
	tag.Touch(s.now())

	if err := s.tags.Upsert(ctx, tag); err != nil {
		if errors.Is(err, store.ErrTagNameExists) {
			return nil, fmt.Errorf("%w: tag name already in use", ErrConflict)
		}
		return nil, fmt.Errorf("failed to rename tag: %w", err)
	}
	return tag, nil
}

// Delete tombstones the tag. Cards keep the dangling reference; clients drop
// it on their next pull.
func (s *TagService) Delete(ctx context.Context, ownerID, tagID uuid.UUID) error {
	if _, err := s.Get(ctx, ownerID, tagID); err != nil {
		return err
	}
	if err := s.tags.SoftDelete(ctx, tagID, s.now()); err != nil {
		if store.IsNotFoundError(err) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	return nil
}
