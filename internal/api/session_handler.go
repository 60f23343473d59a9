package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/revisehq/revision-api/internal/api/shared"
	"github.com/revisehq/revision-api/internal/platform/logger"
	"github.com/revisehq/revision-api/internal/redact"
	"github.com/revisehq/revision-api/internal/service/revision"
)

// SessionHandler handles revision session HTTP requests.
type SessionHandler struct {
	revisionService revision.Service
	logger          *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(revisionService revision.Service, logger *slog.Logger) *SessionHandler {
	if revisionService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("revision service cannot be nil for SessionHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for SessionHandler")
	}

	return &SessionHandler{
		revisionService: revisionService,
		logger:          logger.With(slog.String("component", "session_handler")),
	}
}

// CreateSessionRequest represents the request body for starting a session.
type CreateSessionRequest struct {
	FlashcardIDs []string `json:"flashcard_ids" validate:"required,min=1,dive,uuid"`
}

// CreateSession handles POST /sessions requests. The session starts
// immediately over the given cards, which must all belong to the student.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := studentIDFromRequest(w, r, log)
	if !ok {
		return
	}

	var req CreateSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	cardIDs := make([]uuid.UUID, 0, len(req.FlashcardIDs))
	for _, raw := range req.FlashcardIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid flashcard ID format")
			return
		}
		cardIDs = append(cardIDs, id)
	}

	snapshot, err := h.revisionService.StartSession(r.Context(), studentID, cardIDs)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("session started",
		slog.String("student_id", studentID.String()),
		slog.String("session_id", snapshot.ID.String()),
		slog.Int("cards", snapshot.TotalCards))
	shared.RespondWithJSON(w, r, http.StatusCreated, snapshot)
}

// GetSession handles GET /sessions/{id} requests.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, "get session", h.revisionService.GetSession)
}

// RevealCard handles POST /sessions/{id}/reveal requests. Revealing an
// already revealed card is a no-op.
func (h *SessionHandler) RevealCard(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, "reveal card", h.revisionService.RevealCard)
}

// AdvanceSession handles POST /sessions/{id}/advance requests. The session
// completes after advancing past the last card.
func (h *SessionHandler) AdvanceSession(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, "advance session", h.revisionService.AdvanceSession)
}

// PreviousCard handles POST /sessions/{id}/previous requests. Navigation
// back is display-only; earlier answers stay recorded.
func (h *SessionHandler) PreviousCard(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, "previous card", h.revisionService.PreviousCard)
}

// AbandonSession handles POST /sessions/{id}/abandon requests.
func (h *SessionHandler) AbandonSession(w http.ResponseWriter, r *http.Request) {
	h.sessionAction(w, r, "abandon session", h.revisionService.AbandonSession)
}

// SubmitAnswerRequest represents the request body for answering the current
// session card.
type SubmitAnswerRequest struct {
	FlashcardID      string `json:"flashcard_id"      validate:"required,uuid"`
	WasCorrect       bool   `json:"was_correct"`
	DifficultyRating int    `json:"difficulty_rating" validate:"required,min=1,max=5"`
}

// SubmitAnswer handles POST /sessions/{id}/answer requests. It records the
// answer for the current card and returns the card's updated schedule. The
// session does not advance; the client calls the advance endpoint when the
// student moves on.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := studentIDFromRequest(w, r, log)
	if !ok {
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	var req SubmitAnswerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format",
			slog.String("error", redact.Error(err)),
			slog.String("session_id", sessionID.String()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.Validate.Struct(req); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return
	}

	flashcardID, err := uuid.Parse(req.FlashcardID)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid flashcard ID format")
		return
	}

	card, err := h.revisionService.SubmitAnswer(r.Context(), studentID, sessionID, revision.ReviewAnswer{
		FlashcardID:      flashcardID,
		WasCorrect:       req.WasCorrect,
		DifficultyRating: req.DifficultyRating,
	})
	if err != nil {
		statusCode := MapErrorToStatusCode(err)
		safeMessage := GetSafeErrorMessage(err)
		if statusCode == http.StatusInternalServerError {
			safeMessage = "Failed to submit answer"
		}
		shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
		return
	}

	log.Debug("answer submitted",
		slog.String("student_id", studentID.String()),
		slog.String("session_id", sessionID.String()),
		slog.String("card_id", flashcardID.String()),
		slog.Bool("was_correct", req.WasCorrect))
	shared.RespondWithJSON(w, r, http.StatusOK, flashcardToResponse(card))
}

// sessionAction runs a snapshot-returning session operation identified by
// the {id} path parameter and writes the resulting snapshot.
func (h *SessionHandler) sessionAction(
	w http.ResponseWriter,
	r *http.Request,
	action string,
	fn func(ctx context.Context, studentID, sessionID uuid.UUID) (*revision.SessionSnapshot, error),
) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := studentIDFromRequest(w, r, log)
	if !ok {
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	snapshot, err := fn(r.Context(), studentID, sessionID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug(action,
		slog.String("student_id", studentID.String()),
		slog.String("session_id", sessionID.String()),
		slog.String("state", string(snapshot.State)))
	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}
