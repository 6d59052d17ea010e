package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/platform/logger"
	"github.com/flashdeck/flashdeck-api/internal/store"
	"github.com/flashdeck/flashdeck-api/internal/sync"
)

// PostgresDeckStore implements the store.DeckStore interface using a
// PostgreSQL database as the storage backend.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresDeckStore creates a new PostgreSQL implementation of the
// DeckStore interface. If logger is nil, the default logger is used.
func NewPostgresDeckStore(db store.DBTX, log *slog.Logger) *PostgresDeckStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresDeckStore{
		db:     db,
		logger: log.With(slog.String("component", "deck_store")),
		now:    time.Now,
	}
}

// Ensure PostgresDeckStore implements store.DeckStore.
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// WithTx implements store.DeckStore.WithTx.
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{db: tx, logger: s.logger, now: s.now}
}

const deckColumns = `id, owner_id, name, description,
	daily_review_limit, easy_min_interval_days, max_interval_days, repeat_in_session,
	created_at, modified_at, deleted_at`

func scanDeck(row interface{ Scan(...any) error }) (*domain.Deck, error) {
	var deck domain.Deck
	var description sql.NullString
	var deletedAt sql.NullTime
	err := row.Scan(
		&deck.ID,
		&deck.OwnerID,
		&deck.Name,
		&description,
		&deck.Settings.DailyReviewLimit,
		&deck.Settings.EasyMinIntervalDays,
		&deck.Settings.MaxIntervalDays,
		&deck.Settings.RepeatInSession,
		&deck.CreatedAt,
		&deck.ModifiedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	deck.Description = description.String
	if deletedAt.Valid {
		t := deletedAt.Time
		deck.DeletedAt = &t
	}
	return &deck, nil
}

// GetByID implements store.DeckStore.GetByID.
func (s *PostgresDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE id = $1 AND deleted_at IS NULL`
	deck, err := scanDeck(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrDeckNotFound
		}
		return nil, err
	}
	return deck, nil
}

// ListByOwner implements store.DeckStore.ListByOwner.
func (s *PostgresDeckStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks
		WHERE owner_id = $1 AND deleted_at IS NULL
		ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var decks []*domain.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		decks = append(decks, deck)
	}
	return decks, rows.Err()
}

// Upsert implements store.DeckStore.Upsert. The incoming deck fully
// overwrites any existing row with the same ID.
func (s *PostgresDeckStore) Upsert(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}
	return s.put(ctx, deck)
}

// put writes the deck row without domain validation. Sync pushes go through
// here directly: last writer wins, the row is taken as-is.
func (s *PostgresDeckStore) put(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO decks (` + deckColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			owner_id = EXCLUDED.owner_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			daily_review_limit = EXCLUDED.daily_review_limit,
			easy_min_interval_days = EXCLUDED.easy_min_interval_days,
			max_interval_days = EXCLUDED.max_interval_days,
			repeat_in_session = EXCLUDED.repeat_in_session,
			modified_at = EXCLUDED.modified_at,
			deleted_at = EXCLUDED.deleted_at
	`
	_, err := s.db.ExecContext(ctx, query,
		deck.ID,
		deck.OwnerID,
		deck.Name,
		nullString(deck.Description),
		deck.Settings.DailyReviewLimit,
		deck.Settings.EasyMinIntervalDays,
		deck.Settings.MaxIntervalDays,
		deck.Settings.RepeatInSession,
		deck.CreatedAt,
		deck.ModifiedAt,
		deck.DeletedAt,
	)
	if err != nil {
		log.Error("failed to upsert deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}
	return nil
}

// SoftDelete implements store.DeckStore.SoftDelete.
func (s *PostgresDeckStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE decks SET deleted_at = $2, modified_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	result, err := s.db.ExecContext(ctx, query, id, at.UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrDeckNotFound
	}
	return nil
}

// ChangesSince implements store.DeckStore.ChangesSince.
func (s *PostgresDeckStore) ChangesSince(
	ctx context.Context,
	token string,
	ownerID uuid.UUID,
) ([]sync.Change[*domain.Deck], error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE owner_id = $1`
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

	var changes []sync.Change[*domain.Deck]
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, err
		}
		if deck.IsDeleted() {
			changes = append(changes, sync.Delete(deck))
		} else {
			changes = append(changes, sync.Upsert(deck))
		}
	}
	return changes, rows.Err()
}

// SaveChanges implements store.DeckStore.SaveChanges. Callers must run it
// inside a transaction via WithTx so the batch commits atomically.
func (s *PostgresDeckStore) SaveChanges(
	ctx context.Context,
	changes []sync.Change[*domain.Deck],
	ownerID uuid.UUID,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now().UTC()

	for _, change := range changes {
		deck := change.Entity
		if deck == nil {
			log.Debug("skipping deck change with no entity payload")
			continue
		}

		// Ownership gate: claim unowned decks, silently drop foreign ones.
		if deck.OwnerID != uuid.Nil && deck.OwnerID != ownerID {
			log.Debug("skipping deck change for foreign owner",
				slog.String("deck_id", deck.ID.String()))
			continue
		}
		deck.OwnerID = ownerID

		if change.Operation == sync.OpDelete {
			if err := s.applyDelete(ctx, deck, now); err != nil {
				return "", err
			}
			continue
		}
		if err := s.put(ctx, deck); err != nil {
			return "", err
		}
	}

	return sync.NewToken(now), nil
}

// applyDelete tombstones an existing deck in place, or inserts the incoming
// deck as already-deleted when the server has never seen it.
func (s *PostgresDeckStore) applyDelete(ctx context.Context, deck *domain.Deck, now time.Time) error {
	deletedAt := now
	if deck.DeletedAt != nil {
		deletedAt = deck.DeletedAt.UTC()
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE decks SET deleted_at = $2, modified_at = $2 WHERE id = $1`,
		deck.ID, deletedAt)
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

	deck.MarkDeleted(deletedAt)
	return s.put(ctx, deck)
}

// nullString maps an empty string to SQL NULL.
func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
