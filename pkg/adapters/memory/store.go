package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mygenetics/reportnav/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]entry
	mu   sync.RWMutex

	ttl time.Duration
	now func() time.Time
}

type entry struct {
	session   *domain.Session
	expiresAt time.Time
}

// StoreOption configures the Store.
type StoreOption func(*Store)

// WithTTL expires sessions after ttl of inactivity. Zero disables expiry.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		data: make(map[string]entry),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

// Save persists a copy of the session and refreshes its inactivity deadline.
func (s *Store) Save(ctx context.Context, session *domain.Session) error {
	e := entry{session: session.Snapshot()}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[session.UserID] = e
	return nil
}

// Load retrieves a copy of the session from memory.
func (s *Store) Load(ctx context.Context, userID string) (*domain.Session, error) {
	s.mu.RLock()
	e, ok := s.data[userID]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if s.expired(e) {
		s.mu.Lock()
		if cur, ok := s.data[userID]; ok && s.expired(cur) {
			delete(s.data, userID)
		}
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}

	return e.session.Snapshot(), nil
}

// Expire removes the session.
func (s *Store) Expire(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, userID)
	return nil
}

// List returns users with an unexpired session.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]string, 0, len(s.data))
	for id, e := range s.data {
		if !s.expired(e) {
			users = append(users, id)
		}
	}
	return users, nil
}
