package handler

import (
	"vocab-quiz/internal/config"
	"vocab-quiz/internal/middleware"
	"vocab-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Auth       *AuthHandler
	Vocabulary *VocabularyHandler
	Quiz       *QuizHandler
	User       *UserHandler
	Health     *HealthHandler
}

// RegisterRoutes mounts /health and the /api routes on app.
func RegisterRoutes(app *fiber.App, h Handlers, authService service.AuthService, vm *middleware.ValidationMiddleware, quizCfg config.QuizConfig) {
	protected := middleware.Protected(authService)

	app.Get("/health", h.Health.Check)

	apiGroup := app.Group("/api")

	// Auth routes
	authGroup := apiGroup.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Get("/google/login", h.Auth.GoogleLogin)
	authGroup.Get("/google/callback", h.Auth.GoogleCallback)
	authGroup.Post("/refresh", h.Auth.RefreshToken)
	authGroup.Post("/verify-token", h.Auth.VerifyToken)
	authGroup.Post("/logout", protected, h.Auth.Logout)

	// User routes (all protected)
	userGroup := apiGroup.Group("/users", protected)
	userGroup.Get("/me", h.User.GetMyProfile)

	// Vocabulary routes (all protected)
	vocabGroup := apiGroup.Group("/vocabulary", protected)
	vocabGroup.Get("/", vm.ValidatePagination(), h.Vocabulary.ListVocabulary)
	vocabGroup.Post("/", h.Vocabulary.CreateVocabulary)
	vocabGroup.Post("/batch", h.Vocabulary.CreateVocabularyBatch)
	vocabGroup.Get("/:id", vm.ValidateIDParam(), h.Vocabulary.GetVocabulary)
	vocabGroup.Put("/:id", vm.ValidateIDParam(), h.Vocabulary.UpdateVocabulary)
	vocabGroup.Delete("/:id", vm.ValidateIDParam(), h.Vocabulary.DeleteVocabulary)

	// Quiz routes
	apiGroup.Get("/quiz/generate", protected, vm.ValidateQuestionCount(quizCfg.DefaultCount, quizCfg.MaxCount), h.Quiz.GenerateQuiz)
	apiGroup.Get("/quiz/demo", vm.ValidateQuestionCount(quizCfg.DemoDefaultCount, quizCfg.MaxCount), h.Quiz.GenerateDemoQuiz)
	apiGroup.Get("/flashcards", middleware.OptionalAuth(authService), h.Quiz.GetFlashcards)
}
