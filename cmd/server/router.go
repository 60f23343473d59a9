package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/revisehq/revision-api/internal/api"
	apiMiddleware "github.com/revisehq/revision-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware. Every /api route requires a valid student token.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenValidator)

	flashcardHandler := api.NewFlashcardHandler(app.revisionService, app.generator, app.logger)
	sessionHandler := api.NewSessionHandler(app.revisionService, app.logger)
	progressHandler := api.NewProgressHandler(app.progressService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Flashcard management
		r.Post("/flashcards", flashcardHandler.CreateFlashcard)
		r.Get("/flashcards/due", flashcardHandler.GetDueFlashcards)
		r.Delete("/flashcards/{id}", flashcardHandler.DeleteFlashcard)
		r.Post("/flashcards/generate", flashcardHandler.GenerateFlashcards)
		r.Get("/reviews", flashcardHandler.GetReviewHistory)

		// Revision sessions
		r.Post("/sessions", sessionHandler.CreateSession)
		r.Get("/sessions/{id}", sessionHandler.GetSession)
		r.Post("/sessions/{id}/reveal", sessionHandler.RevealCard)
		r.Post("/sessions/{id}/answer", sessionHandler.SubmitAnswer)
		r.Post("/sessions/{id}/advance", sessionHandler.AdvanceSession)
		r.Post("/sessions/{id}/previous", sessionHandler.PreviousCard)
		r.Post("/sessions/{id}/abandon", sessionHandler.AbandonSession)

		// Progress and streaks
		r.Get("/progress", progressHandler.GetProgress)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
