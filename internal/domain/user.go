package domain

import (
	"context"
	"strings"
	"time"
)

// User represents a domain user object
type User struct {
	ID                string
	GoogleID          string
	Email             string
	Username          string
	FullName          string
	PasswordHash      string
	ProfilePictureURL string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	DeletedAt         *time.Time
}

// NewUser creates a new User instance
func NewUser(email, username string) *User {
	now := time.Now()
	return &User{
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Username:  strings.TrimSpace(username),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Validate validates the user
func (u *User) Validate() error {
	var errs ValidationErrors
	if u.Email == "" {
		errs.Add("email", "email is required")
	}
	if u.GoogleID == "" && u.PasswordHash == "" {
		errs.Add("credentials", "either a google account or a password is required")
	}
	return errs.OrNil()
}

// HasPassword reports whether the user can log in with local credentials.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// UserRepository defines the interface for user data persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByID(ctx context.Context, userID string) (*User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	UpdateUser(ctx context.Context, user *User) error
}
