package service

import (
	"context"
	"sync"
	"time"
	"vocab-quiz/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockUserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// --- MockVocabularyRepository ---
type MockVocabularyRepository struct {
	mock.Mock
}

func (m *MockVocabularyRepository) Create(ctx context.Context, item *domain.VocabularyItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockVocabularyRepository) CreateBatch(ctx context.Context, items []*domain.VocabularyItem) error {
	args := m.Called(ctx, items)
	return args.Error(0)
}

func (m *MockVocabularyRepository) GetByID(ctx context.Context, userID, id string) (*domain.VocabularyItem, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VocabularyItem), args.Error(1)
}

func (m *MockVocabularyRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.VocabularyItem, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VocabularyItem), args.Error(1)
}

func (m *MockVocabularyRepository) ListAllByUser(ctx context.Context, userID string) ([]domain.VocabularyItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VocabularyItem), args.Error(1)
}

func (m *MockVocabularyRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockVocabularyRepository) Update(ctx context.Context, item *domain.VocabularyItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockVocabularyRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	args := m.Called(ctx, userID, id)
	return args.Bool(0), args.Error(1)
}

// --- MockTransactionManager ---
type MockTransactionManager struct {
	mock.Mock
}

// WithTransaction runs fn directly unless an error is configured for the call.
func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if len(m.ExpectedCalls) > 0 {
		args := m.Called(ctx)
		if err := args.Error(0); err != nil {
			return err
		}
	}
	return fn(ctx)
}

// --- MockExampleGenerator ---
type MockExampleGenerator struct {
	mock.Mock
}

func (m *MockExampleGenerator) GenerateExample(ctx context.Context, word, meaning string) (string, error) {
	args := m.Called(ctx, word, meaning)
	return args.String(0), args.Error(1)
}

// --- MockVocabularyCacheService ---
type MockVocabularyCacheService struct {
	mock.Mock
}

func (m *MockVocabularyCacheService) GetVocabulary(ctx context.Context, userID string) ([]domain.VocabularyItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.VocabularyItem), args.Error(1)
}

func (m *MockVocabularyCacheService) Invalidate(ctx context.Context, userID string) {
	m.Called(ctx, userID)
}

// memoryCache is an in-memory domain.Cache. Setting err makes every call fail.
type memoryCache struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	v, ok := c.data[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return v, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.data[key] = value
	c.ttls[key] = expiration
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	_, ok := c.data[key]
	return ok, nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	delete(c.data, key)
	delete(c.ttls, key)
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error {
	return c.err
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}
