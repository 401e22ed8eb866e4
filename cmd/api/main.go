// @title Vocab Quiz API
// @version 1.0
// @description API for managing a personal vocabulary list and practicing it with multiple-choice quizzes and flashcards.
// @termsOfService http://swagger.io/terms/
// @contact.name API Support
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
	"vocab-quiz/internal/adapter"
	"vocab-quiz/internal/adapter/examplegen"
	"vocab-quiz/internal/cache"
	"vocab-quiz/internal/config"
	"vocab-quiz/internal/database"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/handler"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/middleware"
	"vocab-quiz/internal/repository"
	"vocab-quiz/internal/service"
	"vocab-quiz/internal/validation"

	_ "vocab-quiz/cmd/api/docs"

	"github.com/gofiber/swagger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

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

	// Connect to database
	db, err := database.Open(cfg.DB)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err), zap.String("driver", cfg.DB.Driver))
	}
	defer db.Close()
	appLogger.Info("Database connected", zap.String("driver", db.DriverName()))

	// Redis is optional; without it every read goes to the database and logout cannot revoke tokens.
	var cacheAdapter domain.Cache
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Warn("Redis unavailable, running without cache", zap.Error(err), zap.String("address", cfg.Redis.Address))
	} else {
		defer redisClient.Close()
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("Successfully connected to Redis")
	}

	// Initialize repositories
	userRepository := repository.NewSQLXUserRepository(db)
	vocabularyRepository := repository.NewSQLXVocabularyRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Example sentences for new words are optional
	var exampleGenerator domain.ExampleGenerator
	if cfg.LLM.Enabled {
		gen, err := examplegen.New(cfg.LLM)
		if err != nil {
			appLogger.Fatal("Failed to create LLM client", zap.Error(err), zap.String("provider", cfg.LLM.Provider))
		}
		exampleGenerator = gen
		appLogger.Info("Example generator initialized", zap.String("provider", cfg.LLM.Provider), zap.String("model", cfg.LLM.Model))
	}

	// Initialize services
	authService, err := service.NewAuthService(userRepository, cfg.Auth, cacheAdapter)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}
	vocabularyCache := service.NewVocabularyCacheService(cacheAdapter, vocabularyRepository, cfg.CacheTTLs.Vocabulary)
	vocabularyService := service.NewVocabularyService(vocabularyRepository, txManager, vocabularyCache, exampleGenerator)
	quizService := service.NewQuizService(vocabularyCache, domain.NewQuizGenerator(cfg.Quiz.MinVocabulary), nil)
	userService := service.NewUserService(userRepository, vocabularyRepository)
	appLogger.Info("Services initialized")

	// Initialize handlers
	validator := validation.NewValidator()
	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authService, validator),
		Vocabulary: handler.NewVocabularyHandler(vocabularyService, validator),
		Quiz:       handler.NewQuizHandler(quizService, cfg.Quiz.DefaultCount, cfg.Quiz.DemoDefaultCount),
		User:       handler.NewUserHandler(userService),
		Health:     handler.NewHealthHandler(db, cacheAdapter),
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
		MaxAge:       300,
	}))

	app.Get("/swagger/*", swagger.HandlerDefault)

	handler.RegisterRoutes(app, handlers, authService, middleware.NewValidationMiddleware(validator), cfg.Quiz)

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	appLogger.Info("Server exited gracefully")
}
