package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-review/internal/api"
	apiMiddleware "github.com/phrazzld/scry-review/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)
	cardHandler := api.NewCardHandler(app.cardService, app.cardReviewService, app.logger)
	statsHandler := api.NewStatsHandler(app.statsService, app.logger)
	deckHandler := api.NewDeckHandler(app.deckService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Card management
		r.Post("/cards", cardHandler.CreateCard)
		r.Get("/cards", cardHandler.ListCards)
		r.Delete("/cards/{id}", cardHandler.DeleteCard)
		r.Post("/cards/import/tsv", cardHandler.ImportTSV)
		r.Post("/cards/import/anki", cardHandler.ImportAnki)

		// Deck management
		r.Post("/decks", deckHandler.CreateDeck)
		r.Get("/decks", deckHandler.ListDecks)
		r.Delete("/decks/{id}", deckHandler.DeleteDeck)
		r.Get("/decks/{id}/cards", cardHandler.ListDeckCards)

		// Review
		r.Post("/cards/{id}/review", cardHandler.SubmitReview)

		// Statistics
		r.Get("/stats", statsHandler.GetUserStats)
		r.Get("/decks/{id}/stats", statsHandler.GetDeckStats)
	})

	var pinger api.Pinger
	if app.db != nil {
		pinger = app.db
	}
	r.Method(http.MethodGet, "/health", api.NewHealthHandler(pinger))

	return r
}
