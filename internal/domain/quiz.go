package domain

import (
	"fmt"
	"math/rand/v2"
)

const (
	// MinQuizVocabulary is the smallest vocabulary a quiz can be generated from.
	MinQuizVocabulary = 2
	// MaxDistractors is the number of wrong choices offered when the vocabulary allows it.
	MaxDistractors = 3
)

// Randomizer is the source of uniform random integers used by the quiz generator.
// *rand.Rand from math/rand/v2 satisfies it.
type Randomizer interface {
	// IntN returns a uniform value in [0, n). It panics if n <= 0.
	IntN(n int) int
}

type globalRandomizer struct{}

func (globalRandomizer) IntN(n int) int { return rand.IntN(n) }

// DefaultRandomizer draws from the process-wide math/rand/v2 source, which is safe for concurrent use.
var DefaultRandomizer Randomizer = globalRandomizer{}

// QuizQuestion is a single multiple-choice question. It is never persisted.
type QuizQuestion struct {
	VocabularyID string
	Word         string
	Prompt       string
	Answer       string
	Choices      []string
}

// Quiz is the result of one generation request.
type Quiz struct {
	Questions       []QuizQuestion
	TotalVocabulary int
	RequestedCount  int
}

// Clamped reports whether fewer questions were produced than requested.
func (q *Quiz) Clamped() bool {
	return q.RequestedCount > len(q.Questions)
}

// QuizGenerator builds multiple-choice quizzes from a vocabulary list.
// It holds no mutable state and can be shared between goroutines.
type QuizGenerator struct {
	minVocabulary int
}

// NewQuizGenerator returns a generator requiring at least minVocabulary eligible items.
// Values below MinQuizVocabulary are raised to it.
func NewQuizGenerator(minVocabulary int) *QuizGenerator {
	if minVocabulary < MinQuizVocabulary {
		minVocabulary = MinQuizVocabulary
	}
	return &QuizGenerator{minVocabulary: minVocabulary}
}

// MinVocabulary returns the effective minimum vocabulary size.
func (g *QuizGenerator) MinVocabulary() int {
	return g.minVocabulary
}

// Generate draws up to requestedCount distinct items and builds one question per item.
// A nil r uses DefaultRandomizer. Negative counts are treated as zero and counts above
// the eligible vocabulary size are clamped to it.
func (g *QuizGenerator) Generate(r Randomizer, vocabulary []VocabularyItem, requestedCount int) (*Quiz, error) {
	if r == nil {
		r = DefaultRandomizer
	}

	eligible := EligibleVocabulary(vocabulary)
	if len(eligible) < g.minVocabulary {
		return nil, NewInsufficientVocabularyError(len(eligible), g.minVocabulary)
	}

	if requestedCount < 0 {
		requestedCount = 0
	}
	count := min(requestedCount, len(eligible))

	quiz := &Quiz{
		Questions:       make([]QuizQuestion, 0, count),
		TotalVocabulary: len(eligible),
		RequestedCount:  requestedCount,
	}
	for _, idx := range sampleIndices(r, len(eligible), count) {
		quiz.Questions = append(quiz.Questions, buildQuestion(r, eligible, idx))
	}
	return quiz, nil
}

// QuestionPrompt formats the prompt shown for word.
func QuestionPrompt(word string) string {
	return fmt.Sprintf("What is the meaning of '%s'?", word)
}

// EligibleVocabulary keeps items with a non-blank meaning, dropping repeated ids.
// Items without an id are never treated as duplicates of each other.
func EligibleVocabulary(vocabulary []VocabularyItem) []VocabularyItem {
	seen := make(map[string]struct{}, len(vocabulary))
	eligible := make([]VocabularyItem, 0, len(vocabulary))
	for _, item := range vocabulary {
		if !item.QuizEligible() {
			continue
		}
		if item.ID != "" {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
		}
		eligible = append(eligible, item)
	}
	return eligible
}

func buildQuestion(r Randomizer, eligible []VocabularyItem, self int) QuizQuestion {
	item := eligible[self]

	// The distractor pool is every other index; pool position p maps to p or p+1.
	poolSize := len(eligible) - 1
	picks := sampleIndices(r, poolSize, min(MaxDistractors, poolSize))

	choices := make([]string, 0, len(picks)+1)
	choices = append(choices, item.Meaning)
	for _, p := range picks {
		if p >= self {
			p++
		}
		choices = append(choices, eligible[p].Meaning)
	}
	shuffle(r, choices)

	return QuizQuestion{
		VocabularyID: item.ID,
		Word:         item.Word,
		Prompt:       QuestionPrompt(item.Word),
		Answer:       item.Meaning,
		Choices:      choices,
	}
}

// sampleIndices returns k distinct indices from [0, n) in draw order.
// It runs a partial Fisher-Yates shuffle over a sparse table so the cost is O(k).
func sampleIndices(r Randomizer, n, k int) []int {
	if k <= 0 || n <= 0 {
		return nil
	}
	k = min(k, n)

	swapped := make(map[int]int, k)
	out := make([]int, k)
	for i := 0; i < k; i++ {
		j := i + r.IntN(n-i)

		vj, ok := swapped[j]
		if !ok {
			vj = j
		}
		vi, ok := swapped[i]
		if !ok {
			vi = i
		}
		swapped[j] = vi
		out[i] = vj
	}
	return out
}

func shuffle(r Randomizer, s []string) {
	for i := len(s) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
