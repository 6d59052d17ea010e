package api

import (
	"log/slog"
	"net/http"

	"github.com/flashdeck/flashdeck-api/internal/platform/logger"
	"github.com/flashdeck/flashdeck-api/internal/service"

	"github.com/flashdeck/flashdeck-api/internal/api/shared"
)

// DeckHandler handles deck-related HTTP requests.
type DeckHandler struct {
	decks  *service.DeckService
	logger *slog.Logger
}

// NewDeckHandler creates a DeckHandler.
func NewDeckHandler(decks *service.DeckService, logger *slog.Logger) *DeckHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for DeckHandler")
	}
	return &DeckHandler{
		decks:  decks,
		logger: logger.With(slog.String("component", "deck_handler")),
	}
}

// List handles GET /decks.
func (h *DeckHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	decks, err := h.decks.List(r.Context(), ownerID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, decks)
}

// Create handles POST /decks.
func (h *DeckHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	var req CreateDeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deck, err := h.decks.Create(r.Context(), ownerID, req.Name, req.Description)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Debug("deck created", slog.String("deck_id", deck.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, deck)
}

// Get handles GET /decks/{id}.
func (h *DeckHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	deckID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	deck, err := h.decks.Get(r.Context(), ownerID, deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// Update handles PUT /decks/{id}.
func (h *DeckHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	deckID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateDeckRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	deck, err := h.decks.Update(r.Context(), ownerID, deckID, req.Name, req.Description, req.Settings)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, deck)
}

// Delete handles DELETE /decks/{id}.
func (h *DeckHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	deckID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.decks.Delete(r.Context(), ownerID, deckID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
