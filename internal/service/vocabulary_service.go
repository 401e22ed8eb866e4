package service

import (
	"context"
	"database/sql"
	"errors"
	"time"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
	"vocab-quiz/internal/logger"
	"vocab-quiz/internal/util"

	"go.uber.org/zap"
)

// VocabularyService manages a user's vocabulary. Requests are expected to be validated and sanitized already.
type VocabularyService interface {
	List(ctx context.Context, userID string, skip, limit int) (*dto.VocabularyListResponse, error)
	Get(ctx context.Context, userID, id string) (*dto.VocabularyResponse, error)
	Create(ctx context.Context, userID string, req dto.VocabularyRequest) (*dto.VocabularyResponse, error)
	CreateBatch(ctx context.Context, userID string, req dto.VocabularyBatchRequest) ([]dto.VocabularyResponse, error)
	Update(ctx context.Context, userID, id string, req dto.VocabularyRequest) (*dto.VocabularyResponse, error)
	Delete(ctx context.Context, userID, id string) error
}

type vocabularyServiceImpl struct {
	repo       domain.VocabularyRepository
	txManager  domain.TransactionManager
	vocabCache VocabularyCacheService
	examples   domain.ExampleGenerator // nil when LLM examples are disabled
}

// NewVocabularyService creates a new instance of VocabularyService.
func NewVocabularyService(
	repo domain.VocabularyRepository,
	txManager domain.TransactionManager,
	vocabCache VocabularyCacheService,
	examples domain.ExampleGenerator,
) VocabularyService {
	return &vocabularyServiceImpl{
		repo:       repo,
		txManager:  txManager,
		vocabCache: vocabCache,
		examples:   examples,
	}
}

func (s *vocabularyServiceImpl) List(ctx context.Context, userID string, skip, limit int) (*dto.VocabularyListResponse, error) {
	items, err := s.repo.ListByUser(ctx, userID, skip, limit)
	if err != nil {
		return nil, domain.NewInternalError("failed to list vocabulary", err)
	}
	total, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to count vocabulary", err)
	}

	resp := &dto.VocabularyListResponse{
		Items: make([]dto.VocabularyResponse, 0, len(items)),
		Total: total,
		Skip:  skip,
		Limit: limit,
	}
	for i := range items {
		resp.Items = append(resp.Items, toVocabularyResponse(&items[i]))
	}
	return resp, nil
}

func (s *vocabularyServiceImpl) Get(ctx context.Context, userID, id string) (*dto.VocabularyResponse, error) {
	item, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get vocabulary item", err)
	}
	if item == nil {
		return nil, domain.NewVocabularyNotFoundError(id)
	}
	resp := toVocabularyResponse(item)
	return &resp, nil
}

// Create stores one item. A missing example is filled in by the example generator when one is configured.
func (s *vocabularyServiceImpl) Create(ctx context.Context, userID string, req dto.VocabularyRequest) (*dto.VocabularyResponse, error) {
	item := domain.NewVocabularyItem(userID, req.Word, req.Meaning, req.Example)
	item.ID = util.NewULID()

	if item.Example == "" && s.examples != nil {
		example, err := s.examples.GenerateExample(ctx, item.Word, item.Meaning)
		if err != nil {
			logger.Get().Warn("Example generation failed, storing item without one",
				zap.String("userID", userID), zap.String("word", item.Word), zap.Error(err))
		} else {
			item.Example = example
		}
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, domain.NewInternalError("failed to create vocabulary item", err)
	}
	s.vocabCache.Invalidate(ctx, userID)

	logger.Get().Info("Vocabulary item created", zap.String("userID", userID), zap.String("id", item.ID))
	resp := toVocabularyResponse(item)
	return &resp, nil
}

// CreateBatch stores all items in one transaction. Examples are not generated for batches.
func (s *vocabularyServiceImpl) CreateBatch(ctx context.Context, userID string, req dto.VocabularyBatchRequest) ([]dto.VocabularyResponse, error) {
	items := make([]*domain.VocabularyItem, 0, len(req.Items))
	for _, r := range req.Items {
		item := domain.NewVocabularyItem(userID, r.Word, r.Meaning, r.Example)
		item.ID = util.NewULID()
		items = append(items, item)
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.CreateBatch(txCtx, items)
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to create vocabulary batch", err)
	}
	s.vocabCache.Invalidate(ctx, userID)

	logger.Get().Info("Vocabulary batch created", zap.String("userID", userID), zap.Int("count", len(items)))
	resp := make([]dto.VocabularyResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toVocabularyResponse(item))
	}
	return resp, nil
}

// Update replaces word, meaning and example of an owned item.
func (s *vocabularyServiceImpl) Update(ctx context.Context, userID, id string, req dto.VocabularyRequest) (*dto.VocabularyResponse, error) {
	item, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to get vocabulary item", err)
	}
	if item == nil {
		return nil, domain.NewVocabularyNotFoundError(id)
	}

	item.Word = req.Word
	item.Meaning = req.Meaning
	item.Example = req.Example
	item.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewVocabularyNotFoundError(id)
		}
		return nil, domain.NewInternalError("failed to update vocabulary item", err)
	}
	s.vocabCache.Invalidate(ctx, userID)

	resp := toVocabularyResponse(item)
	return &resp, nil
}

func (s *vocabularyServiceImpl) Delete(ctx context.Context, userID, id string) error {
	deleted, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		return domain.NewInternalError("failed to delete vocabulary item", err)
	}
	if !deleted {
		return domain.NewVocabularyNotFoundError(id)
	}
	s.vocabCache.Invalidate(ctx, userID)
	logger.Get().Info("Vocabulary item deleted", zap.String("userID", userID), zap.String("id", id))
	return nil
}

func toVocabularyResponse(item *domain.VocabularyItem) dto.VocabularyResponse {
	return dto.VocabularyResponse{
		ID:        item.ID,
		Word:      item.Word,
		Meaning:   item.Meaning,
		Example:   item.Example,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}
