package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/scry-review/internal/config"
	"github.com/phrazzld/scry-review/internal/domain/srs"
	"github.com/phrazzld/scry-review/internal/events"
	"github.com/phrazzld/scry-review/internal/platform/gemini"
	"github.com/phrazzld/scry-review/internal/platform/postgres"
	"github.com/phrazzld/scry-review/internal/service"
	"github.com/phrazzld/scry-review/internal/service/auth"
	"github.com/phrazzld/scry-review/internal/service/card_review"
	"github.com/phrazzld/scry-review/internal/service/statistics"
	"github.com/phrazzld/scry-review/internal/store"
	"github.com/phrazzld/scry-review/internal/task"
	"github.com/phrazzld/scry-review/internal/validation"
)

// shutdownTimeout bounds graceful shutdown of the HTTP server and the event
// emitter.
const shutdownTimeout = 10 * time.Second

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	cardStore      store.CardStore
	deckStore      store.DeckStore
	reviewLogStore store.ReviewLogStore
	statsStore     store.StatsStore

	// Services
	jwtService        auth.JWTService
	srsService        srs.Service
	validator         validation.Validator
	cardService       service.CardService
	deckService       service.DeckService
	cardReviewService card_review.CardReviewService
	statsService      statistics.Service

	// Event channel
	eventEmitter *events.InMemoryEventEmitter

	// Embedding backfill; nil when no Gemini API key is configured
	taskQueue  *task.TaskQueue
	workerPool *task.WorkerPool
	sweeper    *task.EmbeddingSweeper
}

// embeddingBackend holds the model-backed collaborators. Both fields are
// nil when the LLM integration is disabled.
type embeddingBackend struct {
	embedder *gemini.Embedder
	judge    *gemini.Judge
}

// newApplication creates a new application instance with all dependencies initialized.
// Background workers are started by Run, not here.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.cardStore = postgres.NewPostgresCardStore(db, logger)
	app.deckStore = postgres.NewPostgresDeckStore(db, logger)
	app.reviewLogStore = postgres.NewPostgresReviewLogStore(db, logger)
	app.statsStore = postgres.NewPostgresStatsStore(db, logger)

	backend, err := newEmbeddingBackend(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, err
	}

	app.validator = newValidator(backend, cfg.Validation, logger)
	app.srsService = srs.NewDefaultService()

	aggregator := statistics.NewAggregator(app.statsStore, app.cardStore, logger)
	app.eventEmitter = events.NewInMemoryEventEmitter(
		logger,
		events.EmitterConfig{HandlerTimeout: cfg.Events.HandlerTimeout},
		aggregator,
	)

	var (
		embedder   validation.Embedder
		backfiller task.Backfiller
	)
	if backend.embedder != nil {
		embedder = backend.embedder
		backfiller = app.setupBackfill(backend.embedder)
	}

	app.cardService, err = service.NewCardService(
		service.NewCardRepositoryAdapter(app.cardStore, db),
		app.deckStore,
		app.statsStore,
		embedder,
		backfiller,
		app.eventEmitter,
		service.CardServiceConfig{EmbeddingTimeout: cfg.Validation.EmbeddingTimeout},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create card service: %w", err)
	}

	app.deckService, err = service.NewDeckService(app.deckStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deck service: %w", err)
	}

	app.cardReviewService = card_review.NewCardReviewService(
		app.cardStore,
		card_review.NewReviewRecorder(db, app.cardStore, app.reviewLogStore),
		app.validator,
		app.srsService,
		app.eventEmitter,
		card_review.Config{Timeout: cfg.Review.Timeout},
		logger,
	)

	app.statsService = statistics.NewService(app.statsStore, app.deckStore, logger)

	logger.Info("Application initialized successfully")
	return app, nil
}

// newEmbeddingBackend creates the Gemini embedder and judge when an API key
// is configured.
func newEmbeddingBackend(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (embeddingBackend, error) {
	if !cfg.Enabled() {
		logger.Warn("No Gemini API key configured, answers will be graded heuristically")
		return embeddingBackend{}, nil
	}

	client, err := gemini.NewClient(ctx, cfg, logger)
	if err != nil {
		return embeddingBackend{}, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	logger.Info("Gemini client initialized",
		"judge_model", cfg.JudgeModel,
		"embedding_model", cfg.EmbeddingModel)

	return embeddingBackend{
		embedder: gemini.NewEmbedder(client),
		judge:    gemini.NewJudge(client),
	}, nil
}

// newValidator returns the full cascade when the model backend is available
// and the offline heuristic otherwise.
func newValidator(backend embeddingBackend, cfg config.ValidationConfig, logger *slog.Logger) validation.Validator {
	if backend.embedder == nil || backend.judge == nil {
		return validation.NewHeuristicValidator()
	}
	return validation.NewCascadeValidator(
		backend.embedder,
		backend.judge,
		validation.CascadeConfig{
			EmbeddingThreshold: cfg.EmbeddingThreshold,
			EmbeddingTimeout:   cfg.EmbeddingTimeout,
			JudgeTimeout:       cfg.JudgeTimeout,
		},
		logger,
	)
}

// setupBackfill builds the queue, worker pool and sweeper that store
// embeddings for cards created without one.
func (app *application) setupBackfill(embedder task.Embedder) *task.EmbeddingBackfiller {
	cfg := app.config.Task

	app.taskQueue = task.NewTaskQueue(cfg.QueueSize, app.logger)
	backfiller := task.NewEmbeddingBackfiller(
		app.taskQueue,
		embedder,
		app.cardStore,
		task.BackfillConfig{EmbeddingTimeout: cfg.EmbeddingTimeout},
		app.logger,
	)

	app.workerPool = task.NewWorkerPool(app.taskQueue, task.WorkerPoolConfig{WorkerCount: cfg.WorkerCount}, app.logger)
	app.workerPool.SetErrorHandler(backfiller.HandleError)

	app.sweeper = task.NewEmbeddingSweeper(
		app.cardStore,
		backfiller,
		task.SweeperConfig{Interval: cfg.SweepInterval, BatchSize: cfg.SweepBatchSize},
		app.logger,
	)

	return backfiller
}

// Run starts background workers and the HTTP server, and blocks until ctx is
// canceled or a component fails. Resources are released before it returns.
func (app *application) Run(ctx context.Context) error {
	if app.workerPool != nil {
		app.workerPool.Start()
	}
	defer app.cleanup()

	if err := app.serve(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskQueue != nil {
		app.taskQueue.Close()
	}
	if app.workerPool != nil {
		app.workerPool.Stop()
	}

	if app.eventEmitter != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := app.eventEmitter.Close(ctx); err != nil {
			app.logger.Error("Event emitter did not drain before shutdown", "error", err)
		}
		cancel()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
