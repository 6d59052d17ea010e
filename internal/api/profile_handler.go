package api

import (
	"log/slog"
	"net/http"

	"github.com/flashdeck/flashdeck-api/internal/api/shared"
	"github.com/flashdeck/flashdeck-api/internal/platform/logger"
	"github.com/flashdeck/flashdeck-api/internal/service"
	"github.com/flashdeck/flashdeck-api/internal/service/auth"
)

// ProfileHandler handles registration, token issuance and profile
// maintenance.
type ProfileHandler struct {
	profiles *service.ProfileService
	tokens   auth.TokenService
	logger   *slog.Logger
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles *service.ProfileService, tokens auth.TokenService, logger *slog.Logger) *ProfileHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProfileHandler")
	}
	return &ProfileHandler{
		profiles: profiles,
		tokens:   tokens,
		logger:   logger.With(slog.String("component", "profile_handler")),
	}
}

// Register handles POST /auth/register. The new profile's ID becomes the
// owner identity for all other resources.
func (h *ProfileHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.profiles.Register(r.Context(), req.DisplayName, req.Email, req.AvatarURL)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	token, err := h.tokens.GenerateToken(r.Context(), profile.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Info("profile registered", slog.String("profile_id", profile.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, TokenResponse{
		Token:   token,
		OwnerID: profile.ID.String(),
	})
}

// Token handles POST /auth/token, exchanging a registered email for a
// bearer token.
func (h *ProfileHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.profiles.GetByEmail(r.Context(), req.Email)
	if err != nil {
		// A uniform message keeps registered emails unenumerable.
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized, "Invalid credentials", err)
		return
	}

	token, err := h.tokens.GenerateToken(r.Context(), profile.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{
		Token:   token,
		OwnerID: profile.ID.String(),
	})
}

// Get handles GET /profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.Get(r.Context(), ownerID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// Update handles PUT /profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.profiles.Update(r.Context(), ownerID, req.DisplayName, req.AvatarURL)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, profile)
}

// Delete handles DELETE /profile.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerFromContext(w, r)
	if !ok {
		return
	}

	if err := h.profiles.Delete(r.Context(), ownerID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
