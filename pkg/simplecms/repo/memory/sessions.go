package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// SessionStore implements simplecms.SessionStore in memory.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*simplecms.Session // token hash -> session
	now      func() time.Time
}

// NewSessionStore creates an empty session store. now defaults to the wall
// clock when nil.
func NewSessionStore(now func() time.Time) *SessionStore {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &SessionStore{
		sessions: make(map[string]*simplecms.Session),
		now:      now,
	}
}

var _ simplecms.SessionStore = (*SessionStore)(nil)

func (s *SessionStore) Create(ctx context.Context, userID uuid.UUID, ttl time.Duration) (string, *simplecms.Session, error) {
	token, hash, err := simplecms.NewSessionToken()
	if err != nil {
		return "", nil, err
	}
	if ttl <= 0 {
		ttl = simplecms.DefaultSessionTTL
	}
	now := s.now()
	sess := &simplecms.Session{
		TokenHash: hash,
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[hash] = sess
	sessCopy := *sess
	return token, &sessCopy, nil
}

func (s *SessionStore) Lookup(ctx context.Context, token string) (*simplecms.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, exists := s.sessions[simplecms.HashSessionToken(token)]
	if !exists || !sess.ExpiresAt.After(s.now()) {
		return nil, simplecms.ErrNotFound
	}
	sessCopy := *sess
	return &sessCopy, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, simplecms.HashSessionToken(token))
	return nil
}

// DeleteExpired removes sessions whose expiry is before now.
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for hash, sess := range s.sessions {
		if sess.ExpiresAt.Before(now) {
			delete(s.sessions, hash)
			n++
		}
	}
	return n, nil
}
