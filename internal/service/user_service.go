package service

import (
	"context"
	"fmt"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/dto"
)

// UserService defines the interface for user-related operations.
type UserService interface {
	GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error)
}

type userServiceImpl struct {
	userRepo  domain.UserRepository
	vocabRepo domain.VocabularyRepository
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo domain.UserRepository, vocabRepo domain.VocabularyRepository) UserService {
	return &userServiceImpl{
		userRepo:  userRepo,
		vocabRepo: vocabRepo,
	}
}

// GetUserProfile retrieves a user's profile along with the size of their vocabulary.
func (s *userServiceImpl) GetUserProfile(ctx context.Context, userID string) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to get user by id from repository", err)
	}
	if user == nil {
		return nil, domain.NewNotFoundError(fmt.Sprintf("user %s not found", userID))
	}

	count, err := s.vocabRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to count vocabulary", err)
	}

	return &dto.UserProfileResponse{
		ID:                user.ID,
		Email:             user.Email,
		Username:          user.Username,
		FullName:          user.FullName,
		ProfilePictureURL: user.ProfilePictureURL,
		CreatedAt:         user.CreatedAt,
		VocabularyCount:   count,
	}, nil
}
