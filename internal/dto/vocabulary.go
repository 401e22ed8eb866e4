package dto

import "time"

// VocabularyRequest is the body for creating or replacing a vocabulary item.
// @Description Vocabulary item input
type VocabularyRequest struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Example string `json:"example,omitempty"`
}

// VocabularyBatchRequest creates several items at once.
// @Description Batch of vocabulary items
type VocabularyBatchRequest struct {
	Items []VocabularyRequest `json:"items"`
}

// VocabularyResponse is a stored vocabulary item.
// @Description Vocabulary item
type VocabularyResponse struct {
	ID        string    `json:"id"`
	Word      string    `json:"word"`
	Meaning   string    `json:"meaning"`
	Example   string    `json:"example,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VocabularyListResponse is one page of a user's vocabulary.
// @Description Paginated vocabulary list
type VocabularyListResponse struct {
	Items []VocabularyResponse `json:"items"`
	Total int                  `json:"total"`
	Skip  int                  `json:"skip"`
	Limit int                  `json:"limit"`
}

// FlashcardResponse is a word shown on a flashcard.
// @Description Flashcard
type FlashcardResponse struct {
	ID      string `json:"id"`
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Example string `json:"example,omitempty"`
}

// FlashcardListResponse lists flashcards. Source is "user" or "starter".
// @Description Flashcards for the caller
type FlashcardListResponse struct {
	Flashcards []FlashcardResponse `json:"flashcards"`
	Source     string              `json:"source"`
}
