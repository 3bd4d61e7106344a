package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	_ "github.com/johnquangdev/practice-scoring/docs"
	"github.com/johnquangdev/practice-scoring/internal/adapter/handler"
	"github.com/johnquangdev/practice-scoring/internal/adapter/repository"
	"github.com/johnquangdev/practice-scoring/internal/infrastructure/cache"
	"github.com/johnquangdev/practice-scoring/internal/infrastructure/database"
	"github.com/johnquangdev/practice-scoring/internal/infrastructure/storage"
	"github.com/johnquangdev/practice-scoring/internal/infrastructure/workflow"
	"github.com/johnquangdev/practice-scoring/internal/usecase/practice"
	"github.com/johnquangdev/practice-scoring/internal/usecase/scoring"
	"github.com/johnquangdev/practice-scoring/internal/usecase/webhook"
	pkgai "github.com/johnquangdev/practice-scoring/pkg/ai"
	"github.com/johnquangdev/practice-scoring/pkg/config"
	"github.com/johnquangdev/practice-scoring/pkg/jwt"
	pkgvalidator "github.com/johnquangdev/practice-scoring/pkg/validator"
)

// @title           Practice Scoring API
// @version         1.0
// @description     Post-session scoring for voice roleplay practice: session records, provider webhook reconciliation and asynchronous scorecard generation.

// @BasePath  /v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize Echo instance
	e := echo.New()
	e.Validator = pkgvalidator.New()
	e.HideBanner = true
	e.HidePort = false

	e.Use(middleware.RequestID())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "${time_rfc3339} | ${status} | ${method} ${uri} | ${latency_human} | ${id}\n",
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("10M"))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "Cookie"},
		AllowCredentials: true,
	}))

	log.Println("🔧 Initializing dependencies...")

	// Initialize Database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	// Production deployments manage schema with cmd/migrate.
	if cfg.Database.AutoMigrate {
		if cfg.Server.Environment == "production" {
			log.Fatalf("AutoMigrate is enabled in production. Disable DB_AUTO_MIGRATE and run cmd/migrate.")
		}
		if err := database.AutoMigrate(db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database handle: %v", err)
	}

	// Initialize repositories
	log.Println("⚙️  Initializing repositories...")
	sessionRepo := repository.NewPracticeSessionRepository(db)
	scorecardRepo := repository.NewScorecardRepository(db)
	promptRepo := repository.NewPromptRepository(db)

	// Webhook delivery ledger: Redis when configured, process memory otherwise
	var ledger webhook.DeliveryLedger
	if cfg.Redis.Addr != "" {
		log.Println("📦 Connecting to Redis...")
		redisClient, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		ledger = cache.NewRedisLedger(redisClient)
	} else {
		log.Println("⚠️  REDIS_ADDR not set; webhook delivery ledger is in-memory")
		memLedger := cache.NewMemoryLedger()
		defer memLedger.Close()
		ledger = memLedger
	}

	var archive webhook.PayloadArchive
	if cfg.Storage.Enabled {
		log.Println("🗄️  Connecting to object storage...")
		minioClient, err := storage.NewMinIOClient(ctx, &cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize storage: %v", err)
		}
		archive = minioClient
	}

	// Initialize scoring components
	log.Println("🤖 Initializing scoring components...")
	generator, closeGenerator, err := pkgai.NewGenerator(ctx, &cfg.LLM, logger)
	if err != nil {
		log.Fatalf("Failed to initialize %s generator: %v", cfg.LLM.Provider, err)
	}
	defer closeGenerator()

	activities := &scoring.Activities{
		Sessions:    sessionRepo,
		Scorecards:  scorecardRepo,
		Prompts:     promptRepo,
		Generator:   generator,
		RubricLabel: cfg.Scoring.RubricLabel,
		Logger:      logger,
	}

	g, gctx := errgroup.WithContext(ctx)

	temporalClient, err := workflow.NewClient(ctx, cfg.Temporal, logger)
	if err != nil {
		log.Fatalf("Failed to connect to Temporal: %v", err)
	}

	var starter scoring.Starter
	if temporalClient != nil {
		defer temporalClient.Close()
		starter = scoring.NewTemporalStarter(temporalClient, cfg.Temporal.TaskQueue)
		log.Printf("✅ Temporal connected to: %s (namespace %s)", cfg.Temporal.Address, cfg.Temporal.Namespace)

		if cfg.Temporal.EmbeddedWorker {
			w, err := workflow.NewWorker(temporalClient, cfg.Temporal.TaskQueue, activities, logger)
			if err != nil {
				log.Fatalf("Failed to create Temporal worker: %v", err)
			}
			g.Go(func() error { return w.Run(gctx) })
		}
	} else {
		log.Println("⚠️  Scoring runs in-process (no TEMPORAL_ADDRESS)")
		runner := scoring.NewLocalRunner(activities, logger)
		defer runner.Close()
		starter = runner
	}

	// Initialize services and handlers
	webhookService := webhook.NewService(sessionRepo, ledger, archive, webhook.Config{
		MatchWindow: cfg.Webhook.MatchWindow,
		DedupeTTL:   cfg.Webhook.DedupeTTL,
		Secret:      cfg.Webhook.ElevenLabsSecret,
	}, logger)
	if cfg.Webhook.ElevenLabsSecret == "" {
		log.Println("⚠️  WEBHOOK_ELEVENLABS_SECRET not set; webhook signatures are not verified")
	}
	scoringService := scoring.NewService(sessionRepo, scorecardRepo, starter, logger)
	practiceService := practice.NewPracticeService(sessionRepo, scorecardRepo, logger)

	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.Audience, cfg.JWT.Issuer)

	// Setup router with handlers
	log.Println("🛣️  Setting up routes...")
	router := handler.NewRouter(handler.RouterDeps{
		Score:          handler.NewScoreHandler(scoringService, logger),
		Webhook:        handler.NewWebhookHandler(webhookService, logger),
		Practice:       handler.NewPracticeHandler(practiceService, logger),
		TokenValidator: jwtManager,
		DB:             sqlDB,
		Logger:         logger,
	})
	router.Setup(e)

	addr := cfg.GetServerAddr()
	g.Go(func() error {
		log.Printf("🚀 Starting server on %s", addr)
		log.Printf("📝 Environment: %s", cfg.Server.Environment)
		log.Printf("🔗 Health check: http://%s/health", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Println("🛑 Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		return
	}
	log.Println("✅ Server stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsDevelopment() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
