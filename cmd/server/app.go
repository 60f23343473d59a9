package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/revisehq/revision-api/internal/config"
	"github.com/revisehq/revision-api/internal/domain/srs"
	"github.com/revisehq/revision-api/internal/events"
	"github.com/revisehq/revision-api/internal/generation"
	"github.com/revisehq/revision-api/internal/platform/gemini"
	"github.com/revisehq/revision-api/internal/platform/postgres"
	"github.com/revisehq/revision-api/internal/service/auth"
	"github.com/revisehq/revision-api/internal/service/progress"
	"github.com/revisehq/revision-api/internal/service/revision"
	"github.com/revisehq/revision-api/internal/store"
)

// milestoneLogHandler logs progress events as they are emitted. It stands in
// for a future push-notification collaborator; the events already carry the
// full payload such a collaborator needs.
type milestoneLogHandler struct {
	logger *slog.Logger
}

func (h *milestoneLogHandler) HandleEvent(ctx context.Context, event *events.ProgressEvent) error {
	h.logger.InfoContext(ctx, "progress milestone reached",
		"event_id", event.ID,
		"event_type", string(event.Type),
		"student_id", event.StudentID.String())
	return nil
}

// application holds the shared application dependencies so wiring and
// shutdown live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	cardStore   store.FlashcardStore
	recordStore store.ReviewRecordStore

	tokenValidator  auth.TokenValidator
	srsService      srs.Service
	sessionManager  *revision.SessionManager
	revisionService revision.Service
	progressService progress.Service
	generator       generation.Generator

	eventEmitter events.EventEmitter
}

// newApplication creates an application instance with all dependencies
// initialized. The caller supplies the already-established database
// connection; the application owns it from here and closes it in cleanup.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.tokenValidator, err = auth.NewTokenValidator(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token validator: %w", err)
	}

	app.cardStore = postgres.NewPostgresFlashcardStore(db, logger)
	app.recordStore = postgres.NewPostgresReviewRecordStore(db, logger)

	app.srsService = srs.NewDefaultService()
	app.sessionManager = revision.NewSessionManager(logger)

	emitter := events.NewInMemoryEventEmitter(logger)
	emitter.RegisterHandler(&milestoneLogHandler{
		logger: logger.With("component", "milestone_handler"),
	})
	app.eventEmitter = emitter

	app.progressService = progress.NewService(
		app.cardStore,
		app.recordStore,
		app.eventEmitter,
		progress.Config{
			MasteryWindow: cfg.Progress.MasteryWindow,
			CacheTTL:      time.Duration(cfg.Progress.CacheTTLSeconds) * time.Second,
		},
		logger,
	)

	app.revisionService = revision.NewService(
		store.NewSQLTxRunner(db),
		app.cardStore,
		app.recordStore,
		app.srsService,
		app.sessionManager,
		app.progressService,
		logger,
	)

	// Card generation is optional. Without an API key the endpoint reports
	// the feature as unavailable instead of failing startup.
	if cfg.LLM.GeminiAPIKey != "" {
		app.generator, err = gemini.NewGenerator(
			ctx,
			logger.With("component", "llm_generator"),
			cfg.LLM,
		)
		if err != nil {
			if errors.Is(err, generation.ErrInvalidConfig) {
				return nil, fmt.Errorf("invalid LLM configuration: %w", err)
			}
			return nil, fmt.Errorf("failed to initialize card generator: %w", err)
		}
		logger.Info("card generator initialized", "model", cfg.LLM.ModelName)
	} else {
		logger.Info("card generation disabled, no API key configured")
	}

	logger.Info("application initialized")
	return app, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()
	if err := app.serveHTTP(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources on shutdown.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}
	app.logger.Info("application shutdown completed")
}
