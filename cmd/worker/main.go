package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/internal/adapter/repository"
	"github.com/johnquangdev/practice-scoring/internal/infrastructure/database"
	"github.com/johnquangdev/practice-scoring/internal/infrastructure/workflow"
	"github.com/johnquangdev/practice-scoring/internal/usecase/scoring"
	pkgai "github.com/johnquangdev/practice-scoring/pkg/ai"
	"github.com/johnquangdev/practice-scoring/pkg/config"
)

// Standalone Temporal worker for deployments that scale scoring separately
// from the API (TEMPORAL_EMBEDDED_WORKER=false on the API).
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Temporal.Address == "" {
		log.Fatalf("TEMPORAL_ADDRESS is required to run the worker")
	}

	logger, err := zap.NewProduction()
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	generator, closeGenerator, err := pkgai.NewGenerator(ctx, &cfg.LLM, logger)
	if err != nil {
		log.Fatalf("Failed to initialize %s generator: %v", cfg.LLM.Provider, err)
	}
	defer closeGenerator()

	activities := &scoring.Activities{
		Sessions:    repository.NewPracticeSessionRepository(db),
		Scorecards:  repository.NewScorecardRepository(db),
		Prompts:     repository.NewPromptRepository(db),
		Generator:   generator,
		RubricLabel: cfg.Scoring.RubricLabel,
		Logger:      logger,
	}

	temporalClient, err := workflow.NewClient(ctx, cfg.Temporal, logger)
	if err != nil {
		log.Fatalf("Failed to connect to Temporal: %v", err)
	}
	defer temporalClient.Close()

	w, err := workflow.NewWorker(temporalClient, cfg.Temporal.TaskQueue, activities, logger)
	if err != nil {
		log.Fatalf("Failed to create worker: %v", err)
	}

	log.Printf("🚀 Worker polling %s on %s", cfg.Temporal.TaskQueue, cfg.Temporal.Address)
	if err := w.Run(ctx); err != nil {
		logger.Error("worker stopped with error", zap.Error(err))
		return
	}
	log.Println("✅ Worker stopped")
}
