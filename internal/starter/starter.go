// Package starter ships the built-in word list used for demo quizzes, anonymous flashcards and seeding.
package starter

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"vocab-quiz/internal/domain"
)

//go:embed words.json
var wordsJSON []byte

// Entry is one word of a deck file.
type Entry struct {
	Word    string `json:"word"`
	Meaning string `json:"meaning"`
	Example string `json:"example,omitempty"`
}

var deck []domain.VocabularyItem

func init() {
	entries, err := parse(wordsJSON)
	if err != nil {
		panic(fmt.Sprintf("starter: invalid embedded deck: %v", err))
	}
	deck = toItems(entries)
}

// Vocabulary returns a copy of the starter deck. Items carry stable ids of the form "starter-NN".
func Vocabulary() []domain.VocabularyItem {
	out := make([]domain.VocabularyItem, len(deck))
	copy(out, deck)
	return out
}

// Entries returns the starter deck as deck-file entries.
func Entries() []Entry {
	out := make([]Entry, len(deck))
	for i, item := range deck {
		out[i] = Entry{Word: item.Word, Meaning: item.Meaning, Example: item.Example}
	}
	return out
}

// ReadEntries parses a JSON deck file: an array of {word, meaning, example}.
func ReadEntries(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}
	return parse(data)
}

func parse(data []byte) ([]Entry, error) {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode deck: %w", err)
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Word) == "" || strings.TrimSpace(e.Meaning) == "" {
			return nil, fmt.Errorf("deck entry %d: word and meaning are required", i)
		}
	}
	return entries, nil
}

func toItems(entries []Entry) []domain.VocabularyItem {
	items := make([]domain.VocabularyItem, len(entries))
	for i, e := range entries {
		items[i] = domain.VocabularyItem{
			ID:      fmt.Sprintf("starter-%02d", i+1),
			Word:    e.Word,
			Meaning: e.Meaning,
			Example: e.Example,
		}
	}
	return items
}
