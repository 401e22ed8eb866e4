package domain

import (
	"context"
	"strings"
	"time"
)

// VocabularyItem is a word the user is learning.
type VocabularyItem struct {
	ID        string
	UserID    string
	Word      string
	Meaning   string
	Example   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewVocabularyItem creates an item owned by userID. The ID is assigned by the caller.
func NewVocabularyItem(userID, word, meaning, example string) *VocabularyItem {
	now := time.Now()
	return &VocabularyItem{
		UserID:    userID,
		Word:      word,
		Meaning:   meaning,
		Example:   example,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// QuizEligible reports whether the item can be asked about in a quiz.
func (v VocabularyItem) QuizEligible() bool {
	return strings.TrimSpace(v.Meaning) != ""
}

// VocabularyRepository defines persistence for vocabulary items. Every query is scoped to the owner.
type VocabularyRepository interface {
	Create(ctx context.Context, item *VocabularyItem) error
	CreateBatch(ctx context.Context, items []*VocabularyItem) error
	GetByID(ctx context.Context, userID, id string) (*VocabularyItem, error)
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]VocabularyItem, error)
	ListAllByUser(ctx context.Context, userID string) ([]VocabularyItem, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, item *VocabularyItem) error
	Delete(ctx context.Context, userID, id string) (bool, error)
}

// ExampleGenerator writes an example sentence for a word.
type ExampleGenerator interface {
	GenerateExample(ctx context.Context, word, meaning string) (string, error)
}
