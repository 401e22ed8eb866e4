package handler

import (
	"vocab-quiz/internal/middleware"
	"vocab-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service      service.QuizService
	defaultCount int
	demoCount    int
}

// NewQuizHandler creates a new QuizHandler instance. The counts are used when
// no validated num_questions is present in the context.
func NewQuizHandler(service service.QuizService, defaultCount, demoCount int) *QuizHandler {
	return &QuizHandler{
		service:      service,
		defaultCount: defaultCount,
		demoCount:    demoCount,
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz
// @Description Builds multiple-choice questions from the caller's vocabulary. Requests above the vocabulary size are clamped.
// @Tags quiz
// @Security ApiKeyAuth
// @Produce json
// @Param num_questions query int false "Number of questions"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse "Invalid count or fewer than the minimum number of words"
// @Failure 401 {object} middleware.ErrorResponse
// @Router /quiz/generate [get]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	userID, err := requireUser(c)
	if err != nil {
		return err
	}
	quiz, err := h.service.GenerateForUser(c.UserContext(), userID, h.count(c, h.defaultCount))
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// GenerateDemoQuiz godoc
// @Summary Generate a demo quiz
// @Description Builds a quiz from the built-in starter words. No login required.
// @Tags quiz
// @Produce json
// @Param num_questions query int false "Number of questions"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /quiz/demo [get]
func (h *QuizHandler) GenerateDemoQuiz(c *fiber.Ctx) error {
	quiz, err := h.service.GenerateDemo(c.UserContext(), h.count(c, h.demoCount))
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// GetFlashcards godoc
// @Summary List flashcards
// @Description Returns the caller's words when authenticated, otherwise the starter words.
// @Tags quiz
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.FlashcardListResponse
// @Router /flashcards [get]
func (h *QuizHandler) GetFlashcards(c *fiber.Ctx) error {
	cards, err := h.service.GetFlashcards(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(cards)
}

func (h *QuizHandler) count(c *fiber.Ctx, fallback int) int {
	if n, ok := c.Locals(middleware.ValidatedNumQuestionsKey).(int); ok {
		return n
	}
	return fallback
}
