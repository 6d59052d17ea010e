package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flashdeck/flashdeck-api/internal/api/middleware"
	"github.com/flashdeck/flashdeck-api/internal/api/shared"
)

// ownerFromContext extracts the authenticated owner ID placed in the context
// by the auth middleware. Writes a 401 and returns false if it is missing.
func ownerFromContext(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ownerID, ok := middleware.GetOwnerID(r)
	if !ok || ownerID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Owner ID not found or invalid")
		return uuid.Nil, false
	}
	return ownerID, true
}

// uuidParam parses the named chi URL parameter as a UUID. Writes a 400 and
// returns false on a malformed value.
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// decodeAndValidate decodes the JSON body into v and validates it. Writes the
// appropriate 400 and returns false on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(r, v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return false
	}
	return true
}
