package service

import (
	"context"
	"errors"
	"testing"
	"time"
	"vocab-quiz/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_GetUserProfile(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("success", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		vocabRepo := new(MockVocabularyRepository)
		svc := NewUserService(userRepo, vocabRepo)

		userRepo.On("GetUserByID", mock.Anything, "u1").Return(&domain.User{
			ID: "u1", Email: "a@example.com", Username: "alice", FullName: "Alice", CreatedAt: created,
		}, nil)
		vocabRepo.On("CountByUser", mock.Anything, "u1").Return(7, nil)

		profile, err := svc.GetUserProfile(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "u1", profile.ID)
		assert.Equal(t, "alice", profile.Username)
		assert.Equal(t, "Alice", profile.FullName)
		assert.Equal(t, created, profile.CreatedAt)
		assert.Equal(t, 7, profile.VocabularyCount)
	})

	t.Run("not found", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		svc := NewUserService(userRepo, new(MockVocabularyRepository))
		userRepo.On("GetUserByID", mock.Anything, "ghost").Return(nil, nil)

		_, err := svc.GetUserProfile(ctx, "ghost")
		assertCode(t, err, domain.CodeNotFound)
	})

	t.Run("count fails", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		vocabRepo := new(MockVocabularyRepository)
		svc := NewUserService(userRepo, vocabRepo)
		dbErr := errors.New("timeout")
		userRepo.On("GetUserByID", mock.Anything, "u1").Return(&domain.User{ID: "u1"}, nil)
		vocabRepo.On("CountByUser", mock.Anything, "u1").Return(0, dbErr)

		_, err := svc.GetUserProfile(ctx, "u1")
		assertCode(t, err, domain.CodeInternal)
		assert.ErrorIs(t, err, dbErr)
	})
}
