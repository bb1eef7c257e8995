package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/zata-zhangtao/SideBySide/internal/adapter"
	"github.com/zata-zhangtao/SideBySide/internal/adapter/extractor"
	"github.com/zata-zhangtao/SideBySide/internal/adapter/judge"
	"github.com/zata-zhangtao/SideBySide/internal/cache"
	"github.com/zata-zhangtao/SideBySide/internal/config"
	"github.com/zata-zhangtao/SideBySide/internal/database"
	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/handler"
	"github.com/zata-zhangtao/SideBySide/internal/logger"
	"github.com/zata-zhangtao/SideBySide/internal/middleware"
	"github.com/zata-zhangtao/SideBySide/internal/repository"
	"github.com/zata-zhangtao/SideBySide/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database and apply pending migrations
	db, err := database.NewSQLXDB(cfg.DB.Driver, cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.RunMigrations("file://database/migrations", cfg.GetMigrateURL()); err != nil {
		appLogger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize the vision extractor and definition judge. Both are
	// optional; the quiz core works without them.
	var vocabularyExtractor domain.VocabularyExtractor
	var definitionJudge domain.DefinitionJudge
	switch cfg.LLM.Provider {
	case "openai":
		vocabularyExtractor, err = extractor.NewOpenAIVisionExtractor(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to create OpenAI vision extractor", zap.Error(err))
		}
		if cfg.LLM.Judge.Enabled {
			llm, err := openai.New(openai.WithToken(cfg.LLM.OpenAI.APIKey), openai.WithModel(cfg.LLM.OpenAI.Model))
			if err != nil {
				appLogger.Fatal("Failed to create OpenAI judge client", zap.Error(err))
			}
			definitionJudge = judge.NewLLMDefinitionJudge(llm, cfg.LLM.Judge.Strictness, appLogger)
		}
	case "ollama":
		vocabularyExtractor, err = extractor.NewOllamaVisionExtractor(cfg.LLM.Ollama.ServerURL, cfg.LLM.Ollama.Model, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to create Ollama vision extractor", zap.Error(err))
		}
		if cfg.LLM.Judge.Enabled {
			httpClient := &http.Client{Timeout: 60 * time.Second}
			llm, err := ollama.New(
				ollama.WithServerURL(cfg.LLM.Ollama.ServerURL),
				ollama.WithModel(cfg.LLM.Ollama.Model),
				ollama.WithHTTPClient(httpClient),
			)
			if err != nil {
				appLogger.Fatal("Failed to create Ollama judge client", zap.Error(err))
			}
			definitionJudge = judge.NewLLMDefinitionJudge(llm, cfg.LLM.Judge.Strictness, appLogger)
		}
	case "":
		appLogger.Info("No LLM provider configured; image extraction disabled")
	default:
		appLogger.Fatal("Unsupported LLM provider", zap.String("provider", cfg.LLM.Provider))
	}

	// Redis backs the leaderboard cache and is optional as well.
	var reportCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		reportCache = adapter.NewRedisCacheAdapter(redisClient)
	} else {
		appLogger.Info("No Redis configured; leaderboard caching disabled")
	}

	// Initialize repositories
	userRepository := repository.NewSQLXUserRepository(db)
	wordlistRepository := repository.NewSQLXWordlistRepository(db)
	sessionRepository := repository.NewSQLXSessionRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize services
	authService := service.NewAuthService(userRepository, cfg.JWT.SecretKey, cfg.JWT.AccessTokenTTL)
	userService := service.NewUserService(userRepository, txManager)
	wordlistService := service.NewWordlistService(wordlistRepository, txManager)
	ingestionService := service.NewIngestionService(wordlistRepository, vocabularyExtractor, txManager)
	batchTracker := service.NewBatchTracker(cfg.Ingestion.TaskTTL)
	batchService := service.NewBatchService(vocabularyExtractor, batchTracker, cfg.Ingestion.MaxBatchImages)
	sessionService := service.NewSessionService(
		sessionRepository, wordlistRepository, userRepository, txManager, definitionJudge, cfg.LLM.Judge)
	reportService := service.NewReportService(sessionRepository, userRepository, reportCache)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	wordlistHandler := handler.NewWordlistHandler(wordlistService, ingestionService, batchService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	reportHandler := handler.NewReportHandler(reportService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(requestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := db.PingContext(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "db": err.Error()})
		}
		if reportCache != nil {
			if err := reportCache.Ping(c.Context()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "down", "redis": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)

	protected := api.Group("", middleware.Protected(authService))

	protected.Get("/users/me", userHandler.Me)
	protected.Get("/friends", userHandler.ListFriends)
	protected.Post("/friends/add", userHandler.AddFriend)

	wordlists := protected.Group("/wordlists")
	wordlists.Get("", wordlistHandler.List)
	wordlists.Post("", wordlistHandler.Create)
	wordlists.Post("/preview_from_image", wordlistHandler.PreviewFromImage)
	wordlists.Post("/batch_preview_from_images", wordlistHandler.BatchPreviewFromImages)
	wordlists.Get("/batch_status/:task_id", wordlistHandler.BatchStatus)
	wordlists.Get("/:id", wordlistHandler.Get)
	wordlists.Delete("/:id", wordlistHandler.Delete)
	wordlists.Get("/:id/words", wordlistHandler.ListWords)
	wordlists.Get("/:id/export", wordlistHandler.ExportCSV)
	wordlists.Post("/:id/save_words", wordlistHandler.SaveWords)
	wordlists.Post("/:id/preview_upload", wordlistHandler.PreviewUpload)
	wordlists.Post("/:id/upload", wordlistHandler.Upload)

	sessions := protected.Group("/sessions")
	sessions.Get("", sessionHandler.List)
	sessions.Post("", sessionHandler.Create)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Delete("/:id", sessionHandler.Delete)
	sessions.Post("/:id/status", sessionHandler.SetStatus)
	sessions.Get("/:id/next_word", sessionHandler.NextWord)
	sessions.Post("/:id/attempts", sessionHandler.SubmitAttempt)
	sessions.Get("/:id/scoreboard", sessionHandler.Scoreboard)
	sessions.Get("/:id/progress", sessionHandler.Progress)
	sessions.Get("/:id/wrongbook", sessionHandler.Wrongbook)

	protected.Get("/leaderboard", reportHandler.Leaderboard)
	protected.Get("/reports/weekly", reportHandler.WeeklyReport)

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		appLogger.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			appLogger.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	addr := ":" + strconv.Itoa(cfg.Server.Port)
	appLogger.Info("Starting server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		appLogger.Fatal("Server stopped unexpectedly", zap.Error(err))
	}
}
