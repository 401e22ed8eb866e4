package models

import (
	"database/sql"
	"time"
)

// User is the users table row.
type User struct {
	ID                string         `db:"id"` // ULID
	GoogleID          sql.NullString `db:"google_id"`
	Email             string         `db:"email"`
	Username          sql.NullString `db:"username"`
	FullName          sql.NullString `db:"full_name"`
	PasswordHash      sql.NullString `db:"password_hash"` // bcrypt, NULL for Google-only accounts
	ProfilePictureURL sql.NullString `db:"profile_picture_url"`
	CreatedAt         time.Time      `db:"created_at"`
	UpdatedAt         time.Time      `db:"updated_at"`
	DeletedAt         sql.NullTime   `db:"deleted_at"`
}

// TableName returns the table name for User.
func (User) TableName() string {
	return "users"
}
