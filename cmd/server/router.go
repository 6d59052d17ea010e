package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flashdeck/flashdeck-api/internal/api"
	apiMiddleware "github.com/flashdeck/flashdeck-api/internal/api/middleware"
)

// setupRouter builds the chi router with all middleware and routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	profileHandler := api.NewProfileHandler(app.profileService, app.tokenService, app.logger)
	deckHandler := api.NewDeckHandler(app.deckService, app.logger)
	cardHandler := api.NewCardHandler(app.cardService, app.logger)
	tagHandler := api.NewTagHandler(app.tagService, app.logger)
	studyHandler := api.NewStudyHandler(app.studyService, app.logger)
	syncHandler := api.NewSyncHandler(app.syncService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenService)

	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/auth/register", profileHandler.Register)
		r.Post("/auth/token", profileHandler.Token)

		// Protected endpoints
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/profile", profileHandler.Get)
			r.Put("/profile", profileHandler.Update)
			r.Delete("/profile", profileHandler.Delete)

			r.Get("/decks", deckHandler.List)
			r.Post("/decks", deckHandler.Create)
			r.Get("/decks/{id}", deckHandler.Get)
			r.Put("/decks/{id}", deckHandler.Update)
			r.Delete("/decks/{id}", deckHandler.Delete)

			r.Get("/decks/{deckID}/cards", cardHandler.ListByDeck)
			r.Post("/decks/{deckID}/cards", cardHandler.Create)
			r.Get("/cards/{id}", cardHandler.Get)
			r.Put("/cards/{id}", cardHandler.Update)
			r.Delete("/cards/{id}", cardHandler.Delete)

			r.Get("/tags", tagHandler.List)
			r.Post("/tags", tagHandler.Create)
			r.Put("/tags/{id}", tagHandler.Rename)
			r.Delete("/tags/{id}", tagHandler.Delete)

			r.Get("/decks/{deckID}/study", studyHandler.Queue)
			r.Post("/cards/{id}/review", studyHandler.Review)

			r.Post("/sync/decks", syncHandler.Decks)
			r.Post("/sync/cards", syncHandler.Cards)
			r.Post("/sync/tags", syncHandler.Tags)
			r.Post("/sync/profile", syncHandler.Profile)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
