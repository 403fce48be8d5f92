package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store on PostgreSQL. Pair it with a periodic
// DeleteExpired call; Postgres has no TTL eviction of its own.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed session store. The sessions
// table must exist; see the migrations directory.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	data, err := json.Marshal(session.Data)
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO sessions (id, token, user_id, tenant_id, login_tenant_id, ip, user_agent, fingerprint, data, expires_at, last_activity_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		session.ID, session.Token, session.UserID, session.TenantID, session.LoginTenantID,
		session.IP, session.UserAgent, session.Fingerprint, data, session.ExpiresAt, session.LastActivityAt, session.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PGStore) Get(ctx context.Context, token string) (*Session, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, token, user_id, tenant_id, login_tenant_id, ip, user_agent, fingerprint, data, expires_at, last_activity_at, created_at
		FROM sessions
		WHERE token = $1`, token)

	var (
		session Session
		data    []byte
	)
	err := row.Scan(&session.ID, &session.Token, &session.UserID, &session.TenantID, &session.LoginTenantID,
		&session.IP, &session.UserAgent, &session.Fingerprint, &data, &session.ExpiresAt, &session.LastActivityAt, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &session.Data); err != nil {
			return nil, fmt.Errorf("unmarshal session data: %w", err)
		}
	}

	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	return &session, nil
}

func (s *PGStore) Update(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	data, err := json.Marshal(session.Data)
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err)
	}

	tag, err := s.pool.Exec(ctx, `
		UPDATE sessions
		SET token = $2, user_id = $3, tenant_id = $4, login_tenant_id = $5, ip = $6, user_agent = $7,
		    fingerprint = $8, data = $9, expires_at = $10, last_activity_at = $11
		WHERE id = $1`,
		session.ID, session.Token, session.UserID, session.TenantID, session.LoginTenantID,
		session.IP, session.UserAgent, session.Fingerprint, data, session.ExpiresAt, session.LastActivityAt)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *PGStore) UpdateActivity(ctx context.Context, token string, lastActivity time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET last_activity_at = $2 WHERE token = $1`, token, lastActivity)
	if err != nil {
		return fmt.Errorf("update session activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *PGStore) Delete(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *PGStore) DeleteExpired(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at < now()`); err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	return nil
}

func (s *PGStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete sessions by user: %w", err)
	}
	return nil
}

func (s *PGStore) DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE tenant_id = $1`, tenantID); err != nil {
		return fmt.Errorf("delete sessions by tenant: %w", err)
	}
	return nil
}
