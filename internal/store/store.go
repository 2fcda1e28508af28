package store

import (
	"context"
	"errors"

	"github.com/lu-zhengda/assist/internal/domain"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for the application.
type Store interface {
	// Profiles
	EnsureProfile(ctx context.Context, baseURL string) (*domain.Profile, error)
	GetProfile(ctx context.Context, baseURL string) (*domain.Profile, error)
	ListProfiles(ctx context.Context) ([]domain.Profile, error)
	DeleteProfile(ctx context.Context, id string) error

	// Mail paging sessions
	GetMailSession(ctx context.Context, profileID string) (*domain.MailSession, error)
	SaveMailSession(ctx context.Context, profileID string, s domain.MailSession) error
	ClearMailSession(ctx context.Context, profileID string) error

	// Lifecycle
	Close() error
}
