package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/johnquangdev/practice-scoring/internal/adapter/repository"
	"github.com/johnquangdev/practice-scoring/internal/infrastructure/database"
	"github.com/johnquangdev/practice-scoring/internal/usecase/webhook"
	"github.com/johnquangdev/practice-scoring/pkg/config"
)

// Re-applies stored provider payloads (call_data) to sessions that never got
// their enrichment columns, e.g. rows written before the reconciler existed.
func main() {
	dryRun := flag.Bool("dry-run", false, "report what would change without writing")
	limit := flag.Int("limit", 100, "maximum sessions to process (0 = no limit)")
	flag.Parse()

	cfg, err := config.Read()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	report, err := webhook.Backfill(ctx, repository.NewPracticeSessionRepository(db), *limit, *dryRun, logger)
	if report != nil {
		for _, item := range report.Items {
			fmt.Printf("%s\t%s\t%s\t%s\n", item.SessionID, item.ConversationID, item.Outcome, item.Reason)
		}
		log.Printf("🔄 Scanned %d session(s): %d applied, %d skipped (dry-run=%t)",
			report.Scanned, report.Applied, report.Skipped, *dryRun)
	}
	if err != nil {
		log.Fatalf("Backfill stopped: %v", err)
	}
}
