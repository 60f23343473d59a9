// Package api contains the HTTP handlers for flashcards, revision sessions,
// and progress, plus the request validation and error sanitization they
// share. It translates HTTP concerns into calls on the application services
// and keeps internal error detail out of responses.
package api
