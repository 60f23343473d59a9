package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/revisehq/revision-api/internal/api/shared"
	"github.com/revisehq/revision-api/internal/platform/logger"
	"github.com/revisehq/revision-api/internal/service/progress"
)

// ProgressHandler handles progress and streak HTTP requests.
type ProgressHandler struct {
	progressService progress.Service
	logger          *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService progress.Service, logger *slog.Logger) *ProgressHandler {
	if progressService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("progress service cannot be nil for ProgressHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProgressHandler")
	}

	return &ProgressHandler{
		progressService: progressService,
		logger:          logger.With(slog.String("component", "progress_handler")),
	}
}

// GetProgress handles GET /progress requests. The optional tz query
// parameter names an IANA timezone for streak day boundaries; it defaults
// to UTC. Streaks for the same reviews can legitimately differ between
// timezones, so each timezone is computed and cached independently.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	studentID, ok := studentIDFromRequest(w, r, log)
	if !ok {
		return
	}

	loc := time.UTC
	if tz := r.URL.Query().Get("tz"); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			log.Warn("invalid timezone requested", slog.String("tz", tz))
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid timezone")
			return
		}
		loc = parsed
	}

	snapshot, err := h.progressService.GetProgress(r.Context(), studentID, loc)
	if err != nil {
		shared.RespondWithErrorAndLog(
			w,
			r,
			MapErrorToStatusCode(err),
			"Failed to compute progress",
			err,
		)
		return
	}

	log.Debug("progress computed",
		slog.String("student_id", studentID.String()),
		slog.String("timezone", snapshot.Timezone),
		slog.Int("current_streak", snapshot.CurrentStreak))
	shared.RespondWithJSON(w, r, http.StatusOK, snapshot)
}
