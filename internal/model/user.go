package model

import (
	"context"
	"time"
)

// Role names stored on user records and carried in tokens.
const (
	RoleUser  = "User"
	RoleAdmin = "Admin"
)

// UserStore defines persistence operations for users.
type UserStore interface {
	// FindByUserName matches userName case-insensitively.
	FindByUserName(ctx context.Context, userName string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	// Create returns ErrConflict when the username is taken.
	Create(ctx context.Context, user User) (User, error)
	// Update persists profile fields only: first name, last name and email.
	Update(ctx context.Context, user User) (User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]User, error)
	Ping(ctx context.Context) error
}

// User represents a stored user with its credential.
type User struct {
	ID           string
	UserName     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	Role         string
	// IsOwner is stored and returned but takes no part in authorization.
	IsOwner   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Principal returns the token identity derived from the persisted record.
func (u User) Principal() Principal {
	return Principal{
		SubjectID: u.ID,
		Name:      u.UserName,
		Role:      u.Role,
	}
}
