package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/repository/models"
	"vocab-quiz/internal/util"
)

const vocabularyColumns = `id, user_id, word, meaning, example, created_at, updated_at`

type sqlxVocabularyRepository struct {
	db DBTX
}

// NewSQLXVocabularyRepository creates a vocabulary repository. Every query is scoped by owner.
func NewSQLXVocabularyRepository(db DBTX) domain.VocabularyRepository {
	return &sqlxVocabularyRepository{db: db}
}

func (r *sqlxVocabularyRepository) Create(ctx context.Context, item *domain.VocabularyItem) error {
	return r.insert(ctx, GetExecutor(ctx, r.db), item)
}

// CreateBatch inserts items one by one on the executor in ctx.
// Run it inside TransactionManager.WithTransaction to make the batch atomic.
func (r *sqlxVocabularyRepository) CreateBatch(ctx context.Context, items []*domain.VocabularyItem) error {
	exec := GetExecutor(ctx, r.db)
	for i, item := range items {
		if err := r.insert(ctx, exec, item); err != nil {
			return fmt.Errorf("batch item %d: %w", i, err)
		}
	}
	return nil
}

func (r *sqlxVocabularyRepository) insert(ctx context.Context, exec DBTX, item *domain.VocabularyItem) error {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	m := fromDomainVocabulary(item)

	query := exec.Rebind(`INSERT INTO vocabulary_items (id, user_id, word, meaning, example, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := exec.ExecContext(ctx, query, m.ID, m.UserID, m.Word, m.Meaning, m.Example, m.CreatedAt, m.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create vocabulary item: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create vocabulary item: %w", err)
	}
	return nil
}

// GetByID returns nil, nil when the item does not exist or belongs to another user.
func (r *sqlxVocabularyRepository) GetByID(ctx context.Context, userID, id string) (*domain.VocabularyItem, error) {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT ` + vocabularyColumns + ` FROM vocabulary_items WHERE id = ? AND user_id = ?`)

	var m models.VocabularyItem
	if err := exec.GetContext(ctx, &m, query, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get vocabulary item: %w", err)
	}
	return toDomainVocabulary(&m), nil
}

// ListByUser returns one page ordered by creation time.
func (r *sqlxVocabularyRepository) ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.VocabularyItem, error) {
	exec := GetExecutor(ctx, r.db)
	clause, pageArgs := paginate(exec.DriverName(), offset, limit)
	query := exec.Rebind(`SELECT ` + vocabularyColumns + ` FROM vocabulary_items WHERE user_id = ? ORDER BY created_at, id` + clause)

	args := append([]interface{}{userID}, pageArgs...)
	return r.selectItems(ctx, exec, query, args...)
}

// ListAllByUser returns the user's whole vocabulary ordered by creation time.
func (r *sqlxVocabularyRepository) ListAllByUser(ctx context.Context, userID string) ([]domain.VocabularyItem, error) {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT ` + vocabularyColumns + ` FROM vocabulary_items WHERE user_id = ? ORDER BY created_at, id`)
	return r.selectItems(ctx, exec, query, userID)
}

func (r *sqlxVocabularyRepository) selectItems(ctx context.Context, exec DBTX, query string, args ...interface{}) ([]domain.VocabularyItem, error) {
	var rows []models.VocabularyItem
	if err := exec.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list vocabulary items: %w", err)
	}

	items := make([]domain.VocabularyItem, 0, len(rows))
	for i := range rows {
		items = append(items, *toDomainVocabulary(&rows[i]))
	}
	return items, nil
}

func (r *sqlxVocabularyRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT COUNT(*) FROM vocabulary_items WHERE user_id = ?`)

	var count int
	if err := exec.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("failed to count vocabulary items: %w", err)
	}
	return count, nil
}

// Update overwrites word, meaning and example. It returns sql.ErrNoRows when nothing matched.
func (r *sqlxVocabularyRepository) Update(ctx context.Context, item *domain.VocabularyItem) error {
	item.UpdatedAt = time.Now().UTC()
	m := fromDomainVocabulary(item)

	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`UPDATE vocabulary_items SET word = ?, meaning = ?, example = ?, updated_at = ? WHERE id = ? AND user_id = ?`)

	result, err := exec.ExecContext(ctx, query, m.Word, m.Meaning, m.Example, m.UpdatedAt, m.ID, m.UserID)
	if err != nil {
		return fmt.Errorf("failed to update vocabulary item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes the item and reports whether a row owned by userID was deleted.
func (r *sqlxVocabularyRepository) Delete(ctx context.Context, userID, id string) (bool, error) {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`DELETE FROM vocabulary_items WHERE id = ? AND user_id = ?`)

	result, err := exec.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete vocabulary item: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func toDomainVocabulary(m *models.VocabularyItem) *domain.VocabularyItem {
	if m == nil {
		return nil
	}
	return &domain.VocabularyItem{
		ID:        m.ID,
		UserID:    m.UserID,
		Word:      m.Word,
		Meaning:   m.Meaning,
		Example:   util.NullStringToString(m.Example),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromDomainVocabulary(v *domain.VocabularyItem) *models.VocabularyItem {
	if v == nil {
		return nil
	}
	return &models.VocabularyItem{
		ID:        v.ID,
		UserID:    v.UserID,
		Word:      v.Word,
		Meaning:   v.Meaning,
		Example:   util.StringToNullString(v.Example),
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
