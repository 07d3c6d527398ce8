package auth

import (
	"context"
	"errors"
	"time"
)

// User is a stored credential record. Hash and salt are opaque base64
// strings produced by HashPassword; the record is never updated after
// creation.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	PasswordSalt string
	CreatedAt    time.Time
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// UserStore is the persistence collaborator for credential records. The auth
// core only ever looks records up by email or inserts new ones.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) error
}
