package ports

import (
	"context"

	"github.com/mygenetics/reportnav/pkg/domain"
)

// SessionStore defines the interface for persisting navigation sessions.
// It holds a single current value per user with last-write-wins semantics;
// inactivity expiry is owned by the implementation.
type SessionStore interface {
	// Load retrieves the session for a user.
	// Returns domain.ErrSessionNotFound if the user has no (unexpired) session.
	Load(ctx context.Context, userID string) (*domain.Session, error)

	// Save persists the session, refreshing its inactivity deadline.
	Save(ctx context.Context, session *domain.Session) error

	// Expire removes the session for a user. Expiring a missing session is not an error.
	Expire(ctx context.Context, userID string) error

	// List returns the IDs of users with an active session.
	List(ctx context.Context) ([]string, error)
}
