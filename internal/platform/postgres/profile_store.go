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

// PostgresProfileStore implements the store.ProfileStore interface using a
// PostgreSQL database as the storage backend.
type PostgresProfileStore struct {
	db     store.DBTX
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresProfileStore creates a new PostgreSQL implementation of the
// ProfileStore interface. If logger is nil, the default logger is used.
func NewPostgresProfileStore(db store.DBTX, log *slog.Logger) *PostgresProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &PostgresProfileStore{
		db:     db,
		logger: log.With(slog.String("component", "profile_store")),
		now:    time.Now,
	}
}

// Ensure PostgresProfileStore implements store.ProfileStore.
var _ store.ProfileStore = (*PostgresProfileStore)(nil)

// WithTx implements store.ProfileStore.WithTx.
func (s *PostgresProfileStore) WithTx(tx *sql.Tx) store.ProfileStore {
	return &PostgresProfileStore{db: tx, logger: s.logger, now: s.now}
}

const profileColumns = `id, display_name, email, avatar_url, last_sync_token,
	created_at, modified_at, deleted_at`

func scanProfile(row interface{ Scan(...any) error }) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	var avatarURL, lastSyncToken sql.NullString
	var deletedAt sql.NullTime
	err := row.Scan(
		&profile.ID,
		&profile.DisplayName,
		&profile.Email,
		&avatarURL,
		&lastSyncToken,
		&profile.CreatedAt,
		&profile.ModifiedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}
	profile.AvatarURL = avatarURL.String
	profile.LastSyncToken = lastSyncToken.String
	if deletedAt.Valid {
		t := deletedAt.Time
		profile.DeletedAt = &t
	}
	return &profile, nil
}

// GetByID implements store.ProfileStore.GetByID.
func (s *PostgresProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1 AND deleted_at IS NULL`
	profile, err := scanProfile(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// GetByEmail implements store.ProfileStore.GetByEmail.
func (s *PostgresProfileStore) GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles
		WHERE lower(email) = lower($1) AND deleted_at IS NULL`
	profile, err := scanProfile(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// ExistsByEmail implements store.ProfileStore.ExistsByEmail.
func (s *PostgresProfileStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE lower(email) = lower($1))`,
		email,
	).Scan(&exists)
	return exists, err
}

// Create implements store.ProfileStore.Create.
func (s *PostgresProfileStore) Create(ctx context.Context, profile *domain.UserProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		log.Warn("profile validation failed during create",
			slog.String("error", err.Error()),
			slog.String("profile_id", profile.ID.String()))
		return err
	}

	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		profile.ID,
		profile.DisplayName,
		profile.Email,
		nullString(profile.AvatarURL),
		nullString(profile.LastSyncToken),
		profile.CreatedAt,
		profile.ModifiedAt,
		profile.DeletedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			log.Warn("duplicate email during profile creation",
				slog.String("profile_id", profile.ID.String()))
			return fmt.Errorf("%w: %s", store.ErrEmailExists, profile.Email)
		}
		log.Error("failed to create profile",
			slog.String("error", err.Error()),
			slog.String("profile_id", profile.ID.String()))
		return err
	}

	log.Info("profile created", slog.String("profile_id", profile.ID.String()))
	return nil
}

// Upsert implements store.ProfileStore.Upsert.
func (s *PostgresProfileStore) Upsert(ctx context.Context, profile *domain.UserProfile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		log.Warn("profile validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("profile_id", profile.ID.String()))
		return err
	}
	return s.put(ctx, profile)
}

// put writes the profile row without domain validation.
func (s *PostgresProfileStore) put(ctx context.Context, profile *domain.UserProfile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			avatar_url = EXCLUDED.avatar_url,
			last_sync_token = EXCLUDED.last_sync_token,
			modified_at = EXCLUDED.modified_at,
			deleted_at = EXCLUDED.deleted_at
	`
	_, err := s.db.ExecContext(ctx, query,
		profile.ID,
		profile.DisplayName,
		profile.Email,
		nullString(profile.AvatarURL),
		nullString(profile.LastSyncToken),
		profile.CreatedAt,
		profile.ModifiedAt,
		profile.DeletedAt,
	)
	return err
}

// SoftDelete implements store.ProfileStore.SoftDelete.
func (s *PostgresProfileStore) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE profiles SET deleted_at = $2, modified_at = $2 WHERE id = $1 AND deleted_at IS NULL`
	result, err := s.db.ExecContext(ctx, query, id, at.UTC())
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrProfileNotFound
	}
	return nil
}

// ChangesSince implements store.ProfileStore.ChangesSince. An owner only
// ever syncs their own profile.
func (s *PostgresProfileStore) ChangesSince(
	ctx context.Context,
	token string,
	ownerID uuid.UUID,
) ([]sync.Change[*domain.UserProfile], error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
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

	var changes []sync.Change[*domain.UserProfile]
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		if profile.IsDeleted() {
			changes = append(changes, sync.Delete(profile))
		} else {
			changes = append(changes, sync.Upsert(profile))
		}
	}
	return changes, rows.Err()
}

// SaveChanges implements store.ProfileStore.SaveChanges. A profile's owning
// scope is its own ID: unset IDs are claimed for the caller, foreign IDs are
// silently skipped. Callers must run it inside a transaction via WithTx.
func (s *PostgresProfileStore) SaveChanges(
	ctx context.Context,
	changes []sync.Change[*domain.UserProfile],
	ownerID uuid.UUID,
) (string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	now := s.now().UTC()

	for _, change := range changes {
		profile := change.Entity
		if profile == nil {
			log.Debug("skipping profile change with no entity payload")
			continue
		}

		if profile.ID != uuid.Nil && profile.ID != ownerID {
			log.Debug("skipping profile change for foreign owner",
				slog.String("profile_id", profile.ID.String()))
			continue
		}
		profile.ID = ownerID

		if change.Operation == sync.OpDelete {
			if err := s.applyDelete(ctx, profile, now); err != nil {
				return "", err
			}
			continue
		}
		if err := s.put(ctx, profile); err != nil {
			return "", err
		}
	}

	return sync.NewToken(now), nil
}

func (s *PostgresProfileStore) applyDelete(ctx context.Context, profile *domain.UserProfile, now time.Time) error {
	deletedAt := now
	if profile.DeletedAt != nil {
		deletedAt = profile.DeletedAt.UTC()
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET deleted_at = $2, modified_at = $2 WHERE id = $1`,
		profile.ID, deletedAt)
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

	profile.MarkDeleted(deletedAt)
	return s.put(ctx, profile)
}
