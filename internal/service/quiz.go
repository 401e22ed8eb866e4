package service

import (
	"context"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/starter"

	"go.uber.org/zap"
)

const (
	FlashcardSourceUser    = "user"
	FlashcardSourceStarter = "starter"
)

// QuizService defines the interface for quiz-related operations.
// Question counts are expected to be validated against the configured limits by the caller.
type QuizService interface {
	GenerateForUser(ctx context.Context, userID string, numQuestions int) (*dto.QuizResponse, error)
	GenerateDemo(ctx context.Context, numQuestions int) (*dto.QuizResponse, error)
	GetFlashcards(ctx context.Context, userID string) (*dto.FlashcardListResponse, error)
}

type quizService struct {
	vocabCache VocabularyCacheService
	generator  *domain.QuizGenerator
	rng        domain.Randomizer // shared by concurrent requests
}

// NewQuizService creates a new instance of quizService. A nil rng uses domain.DefaultRandomizer.
func NewQuizService(vocabCache VocabularyCacheService, generator *domain.QuizGenerator, rng domain.Randomizer) QuizService {
	if rng == nil {
		rng = domain.DefaultRandomizer
	}
	return &quizService{
		vocabCache: vocabCache,
		generator:  generator,
		rng:        rng,
	}
}

// GenerateForUser builds a quiz from the user's whole vocabulary.
func (s *quizService) GenerateForUser(ctx context.Context, userID string, numQuestions int) (*dto.QuizResponse, error) {
	vocabulary, err := s.vocabCache.GetVocabulary(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.generate(vocabulary, numQuestions, zap.String("userID", userID))
}

// GenerateDemo builds a quiz from the starter deck.
func (s *quizService) GenerateDemo(ctx context.Context, numQuestions int) (*dto.QuizResponse, error) {
	return s.generate(starter.Vocabulary(), numQuestions, zap.String("source", FlashcardSourceStarter))
}

func (s *quizService) generate(vocabulary []domain.VocabularyItem, numQuestions int, who zap.Field) (*dto.QuizResponse, error) {
	quiz, err := s.generator.Generate(s.rng, vocabulary, numQuestions)
	if err != nil {
		if domain.IsCode(err, domain.CodeInsufficientVocabulary) {
			logger.Get().Info("Quiz not generated: vocabulary too small", who, zap.Int("vocabulary", len(vocabulary)))
		}
		return nil, err
	}
	if quiz.Clamped() {
		logger.Get().Warn("Quiz request clamped to vocabulary size",
			who,
			zap.Int("requested", quiz.RequestedCount),
			zap.Int("generated", len(quiz.Questions)),
		)
	}
	return toQuizResponse(quiz), nil
}

// GetFlashcards returns the user's vocabulary, or the starter deck when userID is empty.
func (s *quizService) GetFlashcards(ctx context.Context, userID string) (*dto.FlashcardListResponse, error) {
	if userID == "" {
		return toFlashcards(starter.Vocabulary(), FlashcardSourceStarter), nil
	}
	vocabulary, err := s.vocabCache.GetVocabulary(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toFlashcards(vocabulary, FlashcardSourceUser), nil
}

func toQuizResponse(quiz *domain.Quiz) *dto.QuizResponse {
	resp := &dto.QuizResponse{
		Questions:       make([]dto.QuizQuestionResponse, 0, len(quiz.Questions)),
		TotalVocabulary: quiz.TotalVocabulary,
		RequestedCount:  quiz.RequestedCount,
		QuestionCount:   len(quiz.Questions),
	}
	for _, q := range quiz.Questions {
		resp.Questions = append(resp.Questions, dto.QuizQuestionResponse{
			Question: q.Prompt,
			Answer:   q.Answer,
			Choices:  q.Choices,
		})
	}
	return resp
}

func toFlashcards(items []domain.VocabularyItem, source string) *dto.FlashcardListResponse {
	resp := &dto.FlashcardListResponse{
		Flashcards: make([]dto.FlashcardResponse, 0, len(items)),
		Source:     source,
	}
	for _, item := range items {
		resp.Flashcards = append(resp.Flashcards, dto.FlashcardResponse{
			ID:      item.ID,
			Word:    item.Word,
			Meaning: item.Meaning,
			Example: item.Example,
		})
	}
	return resp
}
