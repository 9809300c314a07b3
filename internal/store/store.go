// Package store defines the persistence collaborator used by the services.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ahmetcoskunkizilkaya/caltrack/internal/models"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// UserSummary is a user row with the number of entries they have logged.
type UserSummary struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	EntryCount int64     `json:"entry_count"`
}

type Store interface {
	// CreateUser inserts the user together with its profile.
	CreateUser(ctx context.Context, user *models.User, profile *models.Profile) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// ListUsers returns all users newest first with their entry counts.
	ListUsers(ctx context.Context) ([]UserSummary, error)
	SetRole(ctx context.Context, email, role string) error
	// DeleteUser removes the user and everything it owns.
	DeleteUser(ctx context.Context, id uuid.UUID) error

	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	SaveProfile(ctx context.Context, profile *models.Profile) error

	CreateEntry(ctx context.Context, entry *models.Entry) error
	// ListEntriesSince returns the user's entries dated on or after since, newest first.
	ListEntriesSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]models.Entry, error)
	CountEntries(ctx context.Context) (int64, error)

	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	RevokeSession(ctx context.Context, id uuid.UUID) error

	Ping(ctx context.Context) error
}
