package api

import (
	"log/slog"
	"net/http"

	"github.com/flashdeck/flashdeck-api/internal/api/shared"
	"github.com/flashdeck/flashdeck-api/internal/service"
)

// CardHandler handles card-related HTTP requests.
type CardHandler struct {
	cards  *service.CardService
	logger *slog.Logger
}

// NewCardHandler creates a CardHandler.
func NewCardHandler(cards *service.CardService, logger *slog.Logger) *CardHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}
	return &CardHandler{
		cards:  cards,
		logger: logger.With(slog.String("component", "card_handler")),
	}
}

// ListByDeck handles GET /decks/{deckID}/cards.
func (h *CardHandler) ListByDeck(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	deckID, ok := uuidParam(w, r, "deckID")
	if !ok {
		return
	}

	cards, err := h.cards.ListByDeck(r.Context(), ownerID, deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, cards)
}

// Create handles POST /decks/{deckID}/cards.
func (h *CardHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	deckID, ok := uuidParam(w, r, "deckID")
	if !ok {
		return
	}

	var req CreateCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cards.Create(r.Context(), ownerID, deckID, req.Front, req.Back, req.Notes, req.TagIDs)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, card)
}

// Get handles GET /cards/{id}.
func (h *CardHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	cardID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	card, err := h.cards.Get(r.Context(), ownerID, cardID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// Update handles PUT /cards/{id}.
func (h *CardHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	cardID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req UpdateCardRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cards.Update(r.Context(), ownerID, cardID, req.Front, req.Back, req.Notes, req.TagIDs)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, card)
}

// Delete handles DELETE /cards/{id}.
func (h *CardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	cardID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.cards.Delete(r.Context(), ownerID, cardID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
