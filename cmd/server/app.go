package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/flashdeck/flashdeck-api/internal/config"
	"github.com/flashdeck/flashdeck-api/internal/platform/logger"
	"github.com/flashdeck/flashdeck-api/internal/platform/postgres"
	"github.com/flashdeck/flashdeck-api/internal/service"
	"github.com/flashdeck/flashdeck-api/internal/service/auth"
	"github.com/flashdeck/flashdeck-api/internal/store"
)

// application holds the wired dependencies for the running server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	tokenService   auth.TokenService
	deckService    *service.DeckService
	cardService    *service.CardService
	tagService     *service.TagService
	profileService *service.ProfileService
	studyService   *service.StudyService
	syncService    *service.SyncService
}

// newApplication loads configuration, connects to the database, runs
// migrations and wires the service graph.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)
	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := postgres.RunMigrations(db); err != nil {
		closeQuietly(db, log)
		return nil, err
	}

	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		closeQuietly(db, log)
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	deckStore := postgres.NewPostgresDeckStore(db, log)
	cardStore := postgres.NewPostgresCardStore(db, log)
	tagStore := postgres.NewPostgresTagStore(db, log)
	profileStore := postgres.NewPostgresProfileStore(db, log)
	txs := &store.SQLTxRunner{DB: db}

	app := &application{
		config:         cfg,
		logger:         log,
		db:             db,
		tokenService:   tokenService,
		deckService:    service.NewDeckService(deckStore, log, nil),
		cardService:    service.NewCardService(cardStore, deckStore, log, nil),
		tagService:     service.NewTagService(tagStore, log, nil),
		profileService: service.NewProfileService(profileStore, log, nil),
		studyService:   service.NewStudyService(cardStore, deckStore, txs, log, nil),
		syncService:    service.NewSyncService(deckStore, cardStore, tagStore, profileStore, txs, log),
	}
	return app, nil
}

// cleanup releases the application's resources.
func (app *application) cleanup() {
	closeQuietly(app.db, app.logger)
}

func closeQuietly(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Error("failed to close database", slog.String("error", err.Error()))
	}
}
