package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/api/shared"
	"github.com/revisehq/revision-api/internal/generation"
	"github.com/revisehq/revision-api/internal/platform/logger"
	"github.com/revisehq/revision-api/internal/redact"
	"github.com/revisehq/revision-api/internal/service/revision"
)

// FlashcardHandler handles flashcard-related HTTP requests.
type FlashcardHandler struct {
	revisionService revision.Service
	generator       generation.Generator
	logger          *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler. The generator may be
// nil, in which case the generate endpoint reports the feature as
// unavailable.
func NewFlashcardHandler(
	revisionService revision.Service,
	generator generation.Generator,
	logger *slog.Logger,
) *FlashcardHandler {
	if revisionService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("revision service cannot be nil for FlashcardHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for FlashcardHandler")
	}

	return &FlashcardHandler{
		revisionService: revisionService,
		generator:       generator,
		logger:          logger.With(slog.String("component", "flashcard_handler")),
	}
}

// CreateFlashcardRequest represents the request body for creating a flashcard.
type CreateFlashcardRequest struct {
	Front        string `json:"front"          validate:"required"`
	Back         string `json:"back"           validate:"required"`
	Hint         string `json:"hint,omitempty"`
	SubjectID    string `json:"subject_id,omitempty"     validate:"omitempty,uuid"`
	SourceNoteID string `json:"source_note_id,omitempty" validate:"omitempty,uuid"`
}

// CreateFlashcard handles POST /flashcards requests.
// New cards are created due for immediate review.
func (h *FlashcardHandler) CreateFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := studentIDFromRequest(w, r, log)
	if !ok {
		return
	}

	var req CreateFlashcardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	subjectID, err := parseOptionalUUID(req.SubjectID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid subject ID format")
		return
	}
	sourceNoteID, err := parseOptionalUUID(req.SourceNoteID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid source note ID format")
		return
	}

	card, err := h.revisionService.CreateFlashcard(r.Context(), studentID, revision.CreateFlashcardInput{
		Front:        req.Front,
		Back:         req.Back,
		Hint:         req.Hint,
		SubjectID:    subjectID,
		SourceNoteID: sourceNoteID,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("flashcard created",
		slog.String("student_id", studentID.String()),
		slog.String("card_id", card.ID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, flashcardToResponse(card))
}

// GetDueFlashcards handles GET /flashcards/due requests.
// It returns the student's cards due for review, most overdue first.
// Optional query parameters: subject_id narrows to one subject, limit caps
// the result size.
func (h *FlashcardHandler) GetDueFlashcards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := studentIDFromRequest(w, r, log)
	if !ok {
		return
	}

	subjectID, err := parseOptionalUUID(r.URL.Query().Get("subject_id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid subject ID format")
		return
	}

	limit := 0
	if rawLimit := r.URL.Query().Get("limit"); rawLimit != "" {
		limit, err = strconv.Atoi(rawLimit)
		if err != nil || limit < 0 {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid limit")
			return
		}
	}

	cards, err := h.revisionService.GetDueFlashcards(r.Context(), studentID, subjectID, limit)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to get due flashcards", err)
		return
	}

	log.Debug("listed due flashcards",
		slog.String("student_id", studentID.String()),
		slog.Int("count", len(cards)))
	shared.RespondWithJSON(w, r, http.StatusOK, flashcardsToResponse(cards))
}

// DeleteFlashcard handles DELETE /flashcards/{id} requests.
// The card's review history is removed with it.
func (h *FlashcardHandler) DeleteFlashcard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := studentIDFromRequest(w, r, log)
	if !ok {
		return
	}

	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid card ID format")
		return
	}

	if err := h.revisionService.DeleteFlashcard(r.Context(), studentID, cardID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("flashcard deleted",
		slog.String("student_id", studentID.String()),
		slog.String("card_id", cardID.String()))
	w.WriteHeader(http.StatusNoContent)
}

// GetReviewHistory handles GET /reviews requests.
// The optional flashcard_id query parameter narrows the history to one card.
func (h *FlashcardHandler) GetReviewHistory(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := studentIDFromRequest(w, r, log)
	if !ok {
		return
	}

	flashcardID, err := parseOptionalUUID(r.URL.Query().Get("flashcard_id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid flashcard ID format")
		return
	}

	records, err := h.revisionService.GetReviewHistory(r.Context(), studentID, flashcardID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), "Failed to get review history", err)
		return
	}

	responses := make([]ReviewRecordResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, reviewRecordToResponse(record))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, responses)
}

// GenerateFlashcardsRequest represents the request body for generating card
// candidates from a topic.
type GenerateFlashcardsRequest struct {
	Topic     string `json:"topic"      validate:"required,min=3,max=500"`
	SubjectID string `json:"subject_id,omitempty" validate:"omitempty,uuid"`
}

// GenerateFlashcardsResponse carries the generated candidates. Candidates
// are not persisted; the client submits the ones the student keeps through
// the create endpoint.
type GenerateFlashcardsResponse struct {
	Candidates []generation.CardCandidate `json:"candidates"`
}

// GenerateFlashcards handles POST /flashcards/generate requests.
func (h *FlashcardHandler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := studentIDFromRequest(w, r, log)
	if !ok {
		return
	}

	if h.generator == nil {
		shared.RespondWithError(
			w,
			r,
			http.StatusServiceUnavailable,
			"Card generation is not configured",
		)
		return
	}

	var req GenerateFlashcardsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	subjectID, err := parseOptionalUUID(req.SubjectID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid subject ID format")
		return
	}

	candidates, err := h.generator.GenerateCandidates(r.Context(), subjectID, req.Topic)
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError ||
			errors.Is(err, generation.ErrGenerationFailed) {
			statusCode = http.StatusBadGateway
			safeMessage = "Failed to generate flashcards"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Info("generated flashcard candidates",
		slog.String("student_id", studentID.String()),
		slog.Int("count", len(candidates)))
	shared.RespondWithJSON(w, r, http.StatusOK, GenerateFlashcardsResponse{Candidates: candidates})
}

// studentIDFromRequest extracts the authenticated student ID placed in the
// context by the auth middleware, responding with 401 when it is absent.
func studentIDFromRequest(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
) (uuid.UUID, bool) {
	studentID, ok := r.Context().Value(shared.StudentIDContextKey).(uuid.UUID)
	if !ok || studentID == uuid.Nil {
		log.Warn("student ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Student ID not found or invalid")
		return uuid.Nil, false
	}
	return studentID, true
}
