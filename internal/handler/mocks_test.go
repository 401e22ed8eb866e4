package handler_test

import (
	"context"
	"time"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
)

// --- Manual Mocks ---

// MockAuthService
type MockAuthService struct {
	RegisterFunc             func(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, *domain.User, error)
	LoginFunc                func(ctx context.Context, login, password string) (*dto.TokenResponse, *domain.User, error)
	GetGoogleLoginURLFunc    func(state string) string
	HandleGoogleCallbackFunc func(ctx context.Context, code, receivedState, expectedState string) (*dto.TokenResponse, *domain.User, error)
	ValidateJWTFunc          func(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	RefreshTokenFunc         func(ctx context.Context, refreshTokenString string) (*dto.TokenResponse, error)
	VerifyTokenFunc          func(ctx context.Context, tokenString string) (*dto.VerifyTokenResponse, error)
	LogoutFunc               func(ctx context.Context, accessToken, refreshToken string) error
}

func (m *MockAuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, *domain.User, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	panic("MockAuthService.RegisterFunc not implemented")
}

func (m *MockAuthService) Login(ctx context.Context, login, password string) (*dto.TokenResponse, *domain.User, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, login, password)
	}
	panic("MockAuthService.LoginFunc not implemented")
}

func (m *MockAuthService) GetGoogleLoginURL(state string) string {
	if m.GetGoogleLoginURLFunc != nil {
		return m.GetGoogleLoginURLFunc(state)
	}
	panic("MockAuthService.GetGoogleLoginURLFunc not implemented")
}

func (m *MockAuthService) HandleGoogleCallback(ctx context.Context, code, receivedState, expectedState string) (*dto.TokenResponse, *domain.User, error) {
	if m.HandleGoogleCallbackFunc != nil {
		return m.HandleGoogleCallbackFunc(ctx, code, receivedState, expectedState)
	}
	panic("MockAuthService.HandleGoogleCallbackFunc not implemented")
}

func (m *MockAuthService) CreateJWT(ctx context.Context, user *domain.User, ttl time.Duration, tokenType string) (string, error) {
	panic("MockAuthService.CreateJWT not implemented")
}

func (m *MockAuthService) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	if m.ValidateJWTFunc != nil {
		return m.ValidateJWTFunc(ctx, tokenString)
	}
	panic("MockAuthService.ValidateJWTFunc not implemented")
}

func (m *MockAuthService) ValidateAccessToken(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	return m.ValidateJWT(ctx, tokenString)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*dto.TokenResponse, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshTokenString)
	}
	panic("MockAuthService.RefreshTokenFunc not implemented")
}

func (m *MockAuthService) VerifyToken(ctx context.Context, tokenString string) (*dto.VerifyTokenResponse, error) {
	if m.VerifyTokenFunc != nil {
		return m.VerifyTokenFunc(ctx, tokenString)
	}
	panic("MockAuthService.VerifyTokenFunc not implemented")
}

func (m *MockAuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, accessToken, refreshToken)
	}
	panic("MockAuthService.LogoutFunc not implemented")
}

// MockVocabularyService
type MockVocabularyService struct {
	ListFunc        func(ctx context.Context, userID string, skip, limit int) (*dto.VocabularyListResponse, error)
	GetFunc         func(ctx context.Context, userID, id string) (*dto.VocabularyResponse, error)
	CreateFunc      func(ctx context.Context, userID string, req dto.VocabularyRequest) (*dto.VocabularyResponse, error)
	CreateBatchFunc func(ctx context.Context, userID string, req dto.VocabularyBatchRequest) ([]dto.VocabularyResponse, error)
	UpdateFunc      func(ctx context.Context, userID, id string, req dto.VocabularyRequest) (*dto.VocabularyResponse, error)
	DeleteFunc      func(ctx context.Context, userID, id string) error
}

func (m *MockVocabularyService) List(ctx context.Context, userID string, skip, limit int) (*dto.VocabularyListResponse, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, skip, limit)
	}
	panic("MockVocabularyService.ListFunc not implemented")
}

func (m *MockVocabularyService) Get(ctx context.Context, userID, id string) (*dto.VocabularyResponse, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, userID, id)
	}
	panic("MockVocabularyService.GetFunc not implemented")
}

func (m *MockVocabularyService) Create(ctx context.Context, userID string, req dto.VocabularyRequest) (*dto.VocabularyResponse, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, req)
	}
	panic("MockVocabularyService.CreateFunc not implemented")
}

func (m *MockVocabularyService) CreateBatch(ctx context.Context, userID string, req dto.VocabularyBatchRequest) ([]dto.VocabularyResponse, error) {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, userID, req)
	}
	panic("MockVocabularyService.CreateBatchFunc not implemented")
}

func (m *MockVocabularyService) Update(ctx context.Context, userID, id string, req dto.VocabularyRequest) (*dto.VocabularyResponse, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, id, req)
	}
	panic("MockVocabularyService.UpdateFunc not implemented")
}

func (m *MockVocabularyService) Delete(ctx context.Context, userID, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	panic("MockVocabularyService.DeleteFunc not implemented")
}

// MockQuizService
type MockQuizService struct {
	GenerateForUserFunc func(ctx context.Context, userID string, numQuestions int) (*dto.QuizResponse, error)
	GenerateDemoFunc    func(ctx context.Context, numQuestions int) (*dto.QuizResponse, error)
	GetFlashcardsFunc   func(ctx context.Context, userID string) (*dto.FlashcardListResponse, error)
}

func (m *MockQuizService) GenerateForUser(ctx context.Context, userID string, numQuestions int) (*dto.QuizResponse, error) {
	if m.GenerateForUserFunc != nil {
		return m.GenerateForUserFunc(ctx, userID, numQuestions)
	}
	panic("MockQuizService.GenerateForUserFunc not implemented")
}

func (m *MockQuizService) GenerateDemo(ctx context.Context, numQuestions int) (*dto.QuizResponse, error) {
	if m.GenerateDemoFunc != nil {
		return m.GenerateDemoFunc(ctx, numQuestions)
	}
	panic("MockQuizService.GenerateDemoFunc not implemented")
}

func (m *MockQuizService) GetFlashcards(ctx context.Context, userID string) (*dto.FlashcardListResponse, error) {
	if m.GetFlashcardsFunc != nil {
		return m.GetFlashcardsFunc(ctx, userID)
	}
	panic("MockQuizService.GetFlashcardsFunc not implemented")
}

// MockUserService
type MockUserService struct {
	GetUserProfileFunc func(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
}

func (m *MockUserService) GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	if m.GetUserProfileFunc != nil {
		return m.GetUserProfileFunc(ctx, userID)
	}
	panic("MockUserService.GetUserProfileFunc not implemented")
}

// stubPinger is a handler.Pinger returning err.
type stubPinger struct{ err error }

func (p stubPinger) PingContext(ctx context.Context) error { return p.err }

// stubCache is a domain.Cache whose Ping returns err; other methods are unused.
type stubCache struct{ err error }

func (c stubCache) Get(ctx context.Context, key string) (string, error) {
	return "", domain.ErrCacheMiss
}
func (c stubCache) Set(ctx context.Context, key, value string, expiration time.Duration) error {
	return nil
}
func (c stubCache) Exists(ctx context.Context, key string) (bool, error) { return false, nil }
func (c stubCache) Delete(ctx context.Context, key string) error { return nil }
func (c stubCache) Ping(ctx context.Context) error { return c.err }
