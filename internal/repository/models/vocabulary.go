package models

import (
	"database/sql"
	"time"
)

// VocabularyItem is the vocabulary_items table row.
type VocabularyItem struct {
	ID        string         `db:"id"` // ULID
	UserID    string         `db:"user_id"`
	Word      string         `db:"word"`
	Meaning   string         `db:"meaning"`
	Example   sql.NullString `db:"example"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// TableName returns the table name for VocabularyItem.
func (VocabularyItem) TableName() string {
	return "vocabulary_items"
}
