package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on Redis. Expiry rides on Redis TTLs;
// secondary sets index sessions by user and tenant for bulk deletes.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithRedisKeyPrefix overrides the default "session:" key prefix.
func WithRedisKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) { s.keyPrefix = prefix }
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		client:    client,
		keyPrefix: "session:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(token string) string {
	return s.keyPrefix + token
}

func (s *RedisStore) userKey(userID uuid.UUID) string {
	return s.keyPrefix + "user:" + userID.String()
}

func (s *RedisStore) tenantKey(tenantID uuid.UUID) string {
	return s.keyPrefix + "tenant:" + tenantID.String()
}

func (s *RedisStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionExpired
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(session.Token), data, ttl)
	if session.UserID != nil {
		pipe.SAdd(ctx, s.userKey(*session.UserID), session.Token)
		pipe.Expire(ctx, s.userKey(*session.UserID), ttl)
	}
	if session.TenantID != nil {
		pipe.SAdd(ctx, s.tenantKey(*session.TenantID), session.Token)
		pipe.Expire(ctx, s.tenantKey(*session.TenantID), ttl)
	}

	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Get(ctx context.Context, token string) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	if session.IsExpired() {
		_ = s.Delete(ctx, token)
		return nil, ErrSessionExpired
	}

	return &session, nil
}

func (s *RedisStore) Update(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	exists, err := s.client.Exists(ctx, s.key(session.Token)).Result()
	if err != nil {
		return fmt.Errorf("redis exists: %w", err)
	}
	if exists == 0 {
		return ErrSessionNotFound
	}

	return s.Create(ctx, session)
}

func (s *RedisStore) UpdateActivity(ctx context.Context, token string, lastActivity time.Time) error {
	session, err := s.Get(ctx, token)
	if err != nil {
		return err
	}

	session.LastActivityAt = lastActivity
	return s.Update(ctx, session)
}

func (s *RedisStore) Delete(ctx context.Context, token string) error {
	session, err := s.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionExpired) {
			return s.client.Del(ctx, s.key(token)).Err()
		}
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(token))
	if session.UserID != nil {
		pipe.SRem(ctx, s.userKey(*session.UserID), token)
	}
	if session.TenantID != nil {
		pipe.SRem(ctx, s.tenantKey(*session.TenantID), token)
	}

	_, err = pipe.Exec(ctx)
	return err
}

// DeleteExpired is a no-op: Redis TTLs remove expired sessions.
func (s *RedisStore) DeleteExpired(ctx context.Context) error {
	return nil
}

func (s *RedisStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	return s.deleteBySet(ctx, s.userKey(userID))
}

func (s *RedisStore) DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) error {
	return s.deleteBySet(ctx, s.tenantKey(tenantID))
}

func (s *RedisStore) deleteBySet(ctx context.Context, setKey string) error {
	tokens, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("redis smembers: %w", err)
	}

	pipe := s.client.TxPipeline()
	for _, token := range tokens {
		pipe.Del(ctx, s.key(token))
	}
	pipe.Del(ctx, setKey)

	_, err = pipe.Exec(ctx)
	return err
}
