package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/repository/models"
	"vocab-quiz/internal/util"
)

const userColumns = `id, google_id, email, username, full_name, password_hash, profile_picture_url, created_at, updated_at, deleted_at`

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db DBTX
}

// NewSQLXUserRepository creates a new instance of sqlxUserRepository.
func NewSQLXUserRepository(db DBTX) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

// CreateUser inserts a new user. A duplicate email, username or google id yields domain.ErrAlreadyExists.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	m := fromDomainUser(user)

	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`INSERT INTO users (id, google_id, email, username, full_name, password_hash, profile_picture_url, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := exec.ExecContext(ctx, query,
		m.ID, m.GoogleID, m.Email, m.Username, m.FullName, m.PasswordHash, m.ProfilePictureURL, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create user: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their internal ID.
func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.getOne(ctx, "id", userID)
}

// GetUserByGoogleID retrieves a user by their Google ID.
func (r *sqlxUserRepository) GetUserByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	return r.getOne(ctx, "google_id", googleID)
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (r *sqlxUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

// GetUserByUsername retrieves a user by username.
func (r *sqlxUserRepository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, "username", strings.TrimSpace(username))
}

// getOne returns nil, nil when no live user matches column = value.
func (r *sqlxUserRepository) getOne(ctx context.Context, column, value string) (*domain.User, error) {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(fmt.Sprintf(`SELECT %s FROM users WHERE %s = ? AND deleted_at IS NULL`, userColumns, column))

	var user models.User
	if err := exec.GetContext(ctx, &user, query, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	return toDomainUser(&user), nil
}

// UpdateUser updates the mutable profile and credential fields of a user.
func (r *sqlxUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	m := fromDomainUser(user)

	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`UPDATE users SET
				google_id = ?,
				email = ?,
				username = ?,
				full_name = ?,
				password_hash = ?,
				profile_picture_url = ?,
				updated_at = ?
			  WHERE id = ? AND deleted_at IS NULL`)

	result, err := exec.ExecContext(ctx, query,
		m.GoogleID, m.Email, m.Username, m.FullName, m.PasswordHash, m.ProfilePictureURL, m.UpdatedAt, m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to update user: %w", domain.ErrAlreadyExists)
		}
		return fmt.Errorf("failed to update user: %w", err)
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

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:                m.ID,
		GoogleID:          util.NullStringToString(m.GoogleID),
		Email:             m.Email,
		Username:          util.NullStringToString(m.Username),
		FullName:          util.NullStringToString(m.FullName),
		PasswordHash:      util.NullStringToString(m.PasswordHash),
		ProfilePictureURL: util.NullStringToString(m.ProfilePictureURL),
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
		DeletedAt:         util.NullTimeToPtr(m.DeletedAt),
	}
}

func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	m := &models.User{
		ID:                u.ID,
		GoogleID:          util.StringToNullString(u.GoogleID),
		Email:             u.Email,
		Username:          util.StringToNullString(u.Username),
		FullName:          util.StringToNullString(u.FullName),
		PasswordHash:      util.StringToNullString(u.PasswordHash),
		ProfilePictureURL: util.StringToNullString(u.ProfilePictureURL),
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
	if u.DeletedAt != nil {
		m.DeletedAt = util.TimeToNullTime(*u.DeletedAt)
	}
	return m
}
