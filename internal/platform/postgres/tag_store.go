package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/platform/logger"
	"github.com/flashdeck/flashdeck-api/internal/store"
	"github.com/flashdeck/flashdeck-api/internal/sync"
)

// PostgresTagStore implements the store.TagStore interface using a
// PostgreSQL database as the storage backend.
type PostgresTagStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresTagStore creates a new PostgreSQL implementation of the
// TagStore interface. If logger is nil, the default logger is used.
func NewPostgresTagStore(db store.DBTX, log *slog.Logger) *PostgresTagStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresTagStore{
		db:     db,
		logger: log.With(slog.String("component", "tag_store")),
		now:    time.Now,
	}
}

// Ensure PostgresTagStore implements store.TagStore.
var _ store.TagStore = (*PostgresTagStore)(nil)

// WithTx implements store.TagStore.WithTx.
func (s *PostgresTagStore) WithTx(tx *sql.Tx) store.TagStore {
	return &PostgresTagStore{db: tx, logger: s.logger, now: s.now}
}

const tagColumns = `id, owner_id, name, created_at, modified_at, deleted_at`

func scanTag(row interface{ Scan(...any) error }) (*domain.Tag, error) {
	var tag domain.Tag
	var deletedAt sql.NullTime
	err := row.Scan(
		&tag.ID,
		&tag.OwnerID,
		&tag.Name,
		&tag.CreatedAt,
		&tag.ModifiedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		tag.DeletedAt = &t
	}
	return &tag, nil
}

// GetByID implements store.TagStore.GetByID.
func (s *PostgresTagStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE id = $1 AND deleted_at IS NULL`
	tag, err := scanTag(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTagNotFound
		}
		return nil, err
	}
	return tag, nil
}

// ListByOwner implements store.TagStore.ListByOwner.
func (s *PostgresTagStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Tag, error) {
	query := `SELECT ` + tagColumns + ` FROM tags
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY name`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tags []*domain.Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// Upsert implements store.TagStore.Upsert. Tag names are unique per owner
// among live tags.
func (s *PostgresTagStore) Upsert(ctx context.Context, tag *domain.Tag) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := tag.Validate(); err != nil {
		log.Warn("tag validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("tag_id", tag.ID.String()))
		return err
	}

	if err := s.put(ctx, tag); err != nil {
		if isUniqueViolation(err) {
			log.Warn("duplicate tag name for owner",
				slog.String("tag_name", tag.Name),
				slog.String("owner_id", tag.OwnerID.String()))
			return fmt.Errorf("%w: %q", store.ErrTagNameExists, tag.Name)
		}
		return err
	}
	return nil
}

// put writes the tag row without domain validation.
func (s *PostgresTagStore) put(ctx context.Context, tag *domain.Tag) error {
	query := `
		INSERT INTO tags (` + tagColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			name = EXCLUDED.name,
			modified_at = EXCLUDED.modified_at,
			deleted_at = EXCLUDED.deleted_at
	`
	_, err := s.db.ExecContext(ctx, query,
		tag.ID,
		tag.OwnerID,
		tag.Name,
		tag.CreatedAt,
		tag.ModifiedAt,
		tag.DeletedAt,
	)
	return err
}

// SoftDelete implements store.TagStore.SoftDelete.
func (s *PostgresTagStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE tags SET deleted_at = $2, modified_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	result, err := s.db.ExecContext(ctx, query, id, at.UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrTagNotFound
	}
	return nil
}

// ChangesSince implements store.TagStore.ChangesSince.
func (s *PostgresTagStore) ChangesSince(
	ctx context.Context,
	token string,
	ownerID uuid.UUID,
) ([]sync.Change[*domain.Tag], error) {
	query := `SELECT ` + tagColumns + ` FROM tags WHERE owner_id = $1`
	args := []any{ownerID}
	if cutoff, ok := sync.ParseToken(token); ok {
		query += ` AND (modified_at > $2 OR (deleted_at IS NOT NULL AND deleted_at > $2))`
		args = append(args, cutoff)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var changes []sync.Change[*domain.Tag]
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		if tag.IsDeleted() {
			changes = append(changes, sync.Delete(tag))
		} else {
			changes = append(changes, sync.Upsert(tag))
		}
	}
	return changes, rows.Err()
}

// SaveChanges implements store.TagStore.SaveChanges. Callers must run it
// inside a transaction via WithTx.
func (s *PostgresTagStore) SaveChanges(
	ctx context.Context,
	changes []sync.Change[*domain.Tag],
	ownerID uuid.UUID,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now().UTC()

	for _, change := range changes {
		tag := change.Entity
		if tag == nil {
			log.Debug("skipping tag change with no entity payload")
			continue
		}

		if tag.OwnerID != uuid.Nil && tag.OwnerID != ownerID {
			log.Debug("skipping tag change for foreign owner",
				slog.String("tag_id", tag.ID.String()))
			continue
		}
		tag.OwnerID = ownerID

		if change.Operation == sync.OpDelete {
			if err := s.applyDelete(ctx, tag, now); err != nil {
				return "", err
			}
			continue
		}
		if err := s.put(ctx, tag); err != nil {
			return "", err
		}
	}

	return sync.NewToken(now), nil
}

func (s *PostgresTagStore) applyDelete(ctx context.Context, tag *domain.Tag, now time.Time) error {
	deletedAt := now
	if tag.DeletedAt != nil {
		deletedAt = tag.DeletedAt.UTC()
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE tags SET deleted_at = $2, modified_at = $2 WHERE id = $1`,
		tag.ID, deletedAt)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	tag.MarkDeleted(deletedAt)
	return s.put(ctx, tag)
}
