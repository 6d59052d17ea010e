package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/api/shared"
	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/service"
	"github.com/flashdeck/flashdeck-api/internal/sync"
)

// SyncHandler exposes the per-entity reconcile endpoints. Each accepts the
// client's pushed changes plus its last token, and replies with the server's
// changes and a fresh token.
type SyncHandler struct {
	syncs  *service.SyncService
	logger *slog.Logger
}

// NewSyncHandler creates a SyncHandler.
func NewSyncHandler(syncs *service.SyncService, logger *slog.Logger) *SyncHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SyncHandler")
	}
	return &SyncHandler{
		syncs:  syncs,
		logger: logger.With(slog.String("component", "sync_handler")),
	}
}

// handleSync is the shared request/response plumbing for one entity kind.
func handleSync[T any](
	w http.ResponseWriter,
	r *http.Request,
	run func(ownerID uuid.UUID, req sync.Request[T]) (*sync.Response[T], error),
) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	var req sync.Request[T]
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	resp, err := run(ownerID, req)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if resp.Changes == nil {
		resp.Changes = []sync.Change[T]{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, resp)
}

// Decks handles POST /sync/decks.
func (h *SyncHandler) Decks(w http.ResponseWriter, r *http.Request) {
	handleSync(w, r, func(ownerID uuid.UUID, req sync.Request[*domain.Deck]) (*sync.Response[*domain.Deck], error) {
		return h.syncs.SyncDecks(r.Context(), ownerID, req)
	})
}

// Cards handles POST /sync/cards.
func (h *SyncHandler) Cards(w http.ResponseWriter, r *http.Request) {
	handleSync(w, r, func(ownerID uuid.UUID, req sync.Request[*domain.Card]) (*sync.Response[*domain.Card], error) {
		return h.syncs.SyncCards(r.Context(), ownerID, req)
	})
}

// Tags handles POST /sync/tags.
func (h *SyncHandler) Tags(w http.ResponseWriter, r *http.Request) {
	handleSync(w, r, func(ownerID uuid.UUID, req sync.Request[*domain.Tag]) (*sync.Response[*domain.Tag], error) {
		return h.syncs.SyncTags(r.Context(), ownerID, req)
	})
}

// Profile handles POST /sync/profile.
func (h *SyncHandler) Profile(w http.ResponseWriter, r *http.Request) {
	handleSync(w, r, func(ownerID uuid.UUID, req sync.Request[*domain.UserProfile]) (*sync.Response[*domain.UserProfile], error) {
		return h.syncs.SyncProfile(r.Context(), ownerID, req)
	})
}
