package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"
	"vocab-quiz/internal/cache"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultVocabularyCacheExpiration is used when no TTL is configured.
const DefaultVocabularyCacheExpiration = 10 * time.Minute

// cachedVocabularyItem is the JSON shape of an item in the per-user list cache.
type cachedVocabularyItem struct {
	ID        string    `json:"id"`
	Word      string    `json:"word"`
	Meaning   string    `json:"meaning"`
	Example   string    `json:"example,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VocabularyCacheService loads a user's complete vocabulary, caching it per user.
type VocabularyCacheService interface {
	GetVocabulary(ctx context.Context, userID string) ([]domain.VocabularyItem, error)
	Invalidate(ctx context.Context, userID string)
}

type vocabularyCacheServiceImpl struct {
	cache domain.Cache // may be nil
	repo  domain.VocabularyRepository
	ttl   time.Duration
	group singleflight.Group

	mu          sync.Mutex
	generations map[string]uint64 // bumped by Invalidate
}

// NewVocabularyCacheService creates a new instance of VocabularyCacheService. A nil cache always reads through to repo.
func NewVocabularyCacheService(cache domain.Cache, repo domain.VocabularyRepository, ttl time.Duration) VocabularyCacheService {
	if ttl <= 0 {
		ttl = DefaultVocabularyCacheExpiration
	}
	return &vocabularyCacheServiceImpl{
		cache:       cache,
		repo:        repo,
		ttl:         ttl,
		generations: make(map[string]uint64),
	}
}

// GetVocabulary returns the cached list, falling back to the repository on a miss or a cache failure.
// Concurrent loads for the same user share one repository query. The shared load
// is detached from the first caller's cancellation. A load that overlaps an
// Invalidate still answers its callers but is not written to the cache.
func (s *vocabularyCacheServiceImpl) GetVocabulary(ctx context.Context, userID string) ([]domain.VocabularyItem, error) {
	if items, ok := s.fromCache(ctx, userID); ok {
		return items, nil
	}

	v, err, shared := s.group.Do(userID, func() (interface{}, error) {
		loadCtx := context.WithoutCancel(ctx)
		gen := s.generation(userID)
		items, err := s.repo.ListAllByUser(loadCtx, userID)
		if err != nil {
			return nil, err
		}
		if s.generation(userID) == gen {
			s.store(loadCtx, userID, items)
		} else {
			logger.Get().Debug("VocabularyCacheService: list changed during load, not caching", zap.String("userID", userID))
		}
		return items, nil
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to load vocabulary", err)
	}
	if shared {
		logger.Get().Debug("VocabularyCacheService: shared in-flight load", zap.String("userID", userID))
	}

	items := v.([]domain.VocabularyItem)
	// callers may reorder the slice; give each its own copy
	out := make([]domain.VocabularyItem, len(items))
	copy(out, items)
	return out, nil
}

// Invalidate drops the cached list for userID. Failures are logged; the entry then expires on its own.
func (s *vocabularyCacheServiceImpl) Invalidate(ctx context.Context, userID string) {
	s.mu.Lock()
	s.generations[userID]++
	s.mu.Unlock()
	s.group.Forget(userID)

	if s.cache == nil {
		return
	}
	key := cache.VocabularyListKey(userID)
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Get().Warn("VocabularyCacheService: failed to invalidate cache", zap.String("key", key), zap.Error(err))
	}
}

func (s *vocabularyCacheServiceImpl) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generations[userID]
}

func (s *vocabularyCacheServiceImpl) fromCache(ctx context.Context, userID string) ([]domain.VocabularyItem, bool) {
	if s.cache == nil {
		return nil, false
	}
	key := cache.VocabularyListKey(userID)
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("VocabularyCacheService: cache get failed, reading from database", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var cached []cachedVocabularyItem
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		logger.Get().Warn("VocabularyCacheService: failed to unmarshal cached vocabulary", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	items := make([]domain.VocabularyItem, len(cached))
	for i, c := range cached {
		items[i] = domain.VocabularyItem{
			ID:        c.ID,
			UserID:    userID,
			Word:      c.Word,
			Meaning:   c.Meaning,
			Example:   c.Example,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		}
	}
	logger.Get().Debug("VocabularyCacheService: cache hit", zap.String("key", key), zap.Int("items", len(items)))
	return items, true
}

func (s *vocabularyCacheServiceImpl) store(ctx context.Context, userID string, items []domain.VocabularyItem) {
	if s.cache == nil {
		return
	}
	cached := make([]cachedVocabularyItem, len(items))
	for i, it := range items {
		cached[i] = cachedVocabularyItem{
			ID:        it.ID,
			Word:      it.Word,
			Meaning:   it.Meaning,
			Example:   it.Example,
			CreatedAt: it.CreatedAt,
			UpdatedAt: it.UpdatedAt,
		}
	}
	data, err := json.Marshal(cached)
	if err != nil {
		logger.Get().Error("VocabularyCacheService: failed to marshal vocabulary", zap.String("userID", userID), zap.Error(err))
		return
	}
	key := cache.VocabularyListKey(userID)
	if err := s.cache.Set(ctx, key, string(data), s.ttl); err != nil {
		logger.Get().Warn("VocabularyCacheService: failed to write cache", zap.String("key", key), zap.Error(err))
	}
}
