package api

import (
	"log/slog"
	"net/http"

	"github.com/flashdeck/flashdeck-api/internal/api/shared"
	"github.com/flashdeck/flashdeck-api/internal/service"
)

// TagHandler handles tag-related HTTP requests.
type TagHandler struct {
	tags   *service.TagService
	logger *slog.Logger
}

// NewTagHandler creates a TagHandler.
func NewTagHandler(tags *service.TagService, logger *slog.Logger) *TagHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TagHandler")
	}
	return &TagHandler{
		tags:   tags,
		logger: logger.With(slog.String("component", "tag_handler")),
	}
}

// List handles GET /tags.
func (h *TagHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	tags, err := h.tags.List(r.Context(), ownerID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tags)
}

// Create handles POST /tags.
func (h *TagHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	var req TagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tag, err := h.tags.Create(r.Context(), ownerID, req.Name)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusCreated, tag)
}

// Rename handles PUT /tags/{id}.
func (h *TagHandler) Rename(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	tagID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req TagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tag, err := h.tags.Rename(r.Context(), ownerID, tagID, req.Name)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, tag)
}

// Delete handles DELETE /tags/{id}.
func (h *TagHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}
	tagID, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.tags.Delete(r.Context(), ownerID, tagID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
