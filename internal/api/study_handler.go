package api

import (
	"log/slog"
	"net/http"

	"github.com/flashdeck/flashdeck-api/internal/api/shared"
	"github.com/flashdeck/flashdeck-api/internal/domain"
	"github.com/flashdeck/flashdeck-api/internal/platform/logger"
	"github.com/flashdeck/flashdeck-api/internal/service"
)

// StudyHandler handles the review loop endpoints.
type StudyHandler struct {
	study  *service.StudyService
	logger *slog.Logger
}

// NewStudyHandler creates a StudyHandler.
func NewStudyHandler(study *service.StudyService, logger *slog.Logger) *StudyHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for StudyHandler")
	}
	return &StudyHandler{
		study:  study,
		logger: logger.With(slog.String("component", "study_handler")),
	}
}

// Queue handles GET /decks/{deckID}/study. Returns the due cards in due
// order, capped by the deck's daily review limit.
func (h *StudyHandler) Queue(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	deckID, ok := uuidParam(w, r, "deckID")
	if !ok {
		return
	}

	cards, err := h.study.Queue(r.Context(), ownerID, deckID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if cards == nil {
		cards = []*domain.Card{}
	}
	shared.RespondWithJSON(w, r, http.StatusOK, StudyQueueResponse{
		DeckID: deckID.String(),
		Cards:  cards,
	})
}

// Review handles POST /cards/{id}/review. Grades the card and returns its
// rescheduled state plus whether the session should repeat it.
func (h *StudyHandler) Review(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	cardID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req ReviewRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.study.SubmitReview(r.Context(), ownerID, cardID, domain.Rating(req.Rating))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Debug("review submitted",
		slog.String("card_id", cardID.String()),
		slog.String("rating", req.Rating))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}
