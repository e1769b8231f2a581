package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// SessionStore keeps admin sessions in the sessions table.
type SessionStore struct {
	db  DBTX
	now func() time.Time
}

// NewSessionStore creates a session store over db.
func NewSessionStore(db DBTX) *SessionStore {
	return &SessionStore{db: db, now: func() time.Time { return time.Now().UTC() }}
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
	now := s.now().Truncate(time.Microsecond)
	sess := &simplecms.Session{
		TokenHash: hash,
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO sessions (token_hash, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		sess.TokenHash, sess.UserID, sess.ExpiresAt, sess.CreatedAt)
	if err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}
	return token, sess, nil
}

func (s *SessionStore) Lookup(ctx context.Context, token string) (*simplecms.Session, error) {
	var sess simplecms.Session
	err := s.db.QueryRow(ctx, `
		SELECT token_hash, user_id, expires_at, created_at
		FROM sessions WHERE token_hash = $1 AND expires_at > $2`,
		simplecms.HashSessionToken(token), s.now()).
		Scan(&sess.TokenHash, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, simplecms.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE token_hash = $1`, simplecms.HashSessionToken(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
