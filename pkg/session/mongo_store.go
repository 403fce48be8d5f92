package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore implements Store on a MongoDB collection. EnsureIndexes
// installs a TTL index so expired sessions are evicted server-side.
type MongoStore struct {
	collection *mongo.Collection
}

type mongoSession struct {
	ID             string         `bson:"_id"`
	Token          string         `bson:"token"`
	UserID         *string        `bson:"user_id,omitempty"`
	TenantID       *string        `bson:"tenant_id,omitempty"`
	LoginTenantID  *string        `bson:"login_tenant_id,omitempty"`
	IP             string         `bson:"ip,omitempty"`
	UserAgent      string         `bson:"user_agent,omitempty"`
	Fingerprint    string         `bson:"fingerprint,omitempty"`
	Data           map[string]any `bson:"data,omitempty"`
	ExpiresAt      time.Time      `bson:"expires_at"`
	LastActivityAt time.Time      `bson:"last_activity_at"`
	CreatedAt      time.Time      `bson:"created_at"`
}

// NewMongoStore creates a MongoDB-backed session store using the given
// collection.
func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

// EnsureIndexes creates the token and TTL indexes. Call once at startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{{Key: "tenant_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	})
	if err != nil {
		return fmt.Errorf("create session indexes: %w", err)
	}
	return nil
}

func toMongoSession(session *Session) mongoSession {
	doc := mongoSession{
		ID:             session.ID.String(),
		Token:          session.Token,
		IP:             session.IP,
		UserAgent:      session.UserAgent,
		Fingerprint:    session.Fingerprint,
		Data:           session.Data,
		ExpiresAt:      session.ExpiresAt,
		LastActivityAt: session.LastActivityAt,
		CreatedAt:      session.CreatedAt,
	}
	if session.UserID != nil {
		id := session.UserID.String()
		doc.UserID = &id
	}
	if session.TenantID != nil {
		id := session.TenantID.String()
		doc.TenantID = &id
	}
	if session.LoginTenantID != nil {
		id := session.LoginTenantID.String()
		doc.LoginTenantID = &id
	}
	return doc
}

func (d mongoSession) toSession() (*Session, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("parse session id: %w", err)
	}

	session := &Session{
		ID:             id,
		Token:          d.Token,
		IP:             d.IP,
		UserAgent:      d.UserAgent,
		Fingerprint:    d.Fingerprint,
		Data:           d.Data,
		ExpiresAt:      d.ExpiresAt,
		LastActivityAt: d.LastActivityAt,
		CreatedAt:      d.CreatedAt,
	}

	for _, p := range []struct {
		raw  *string
		dest **uuid.UUID
	}{
		{d.UserID, &session.UserID},
		{d.TenantID, &session.TenantID},
		{d.LoginTenantID, &session.LoginTenantID},
	} {
		if p.raw == nil {
			continue
		}
		parsed, err := uuid.Parse(*p.raw)
		if err != nil {
			return nil, fmt.Errorf("parse session uuid field: %w", err)
		}
		*p.dest = &parsed
	}

	return session, nil
}

func (s *MongoStore) Create(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	_, err := s.collection.InsertOne(ctx, toMongoSession(session))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, token string) (*Session, error) {
	var doc mongoSession
	err := s.collection.FindOne(ctx, bson.M{"token": token}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}

	session, err := doc.toSession()
	if err != nil {
		return nil, err
	}

	// TTL eviction runs on a timer, so a just-expired document can
	// still be returned by the server.
	if session.IsExpired() {
		return nil, ErrSessionExpired
	}

	return session, nil
}

func (s *MongoStore) Update(ctx context.Context, session *Session) error {
	if session == nil || session.Token == "" {
		return ErrInvalidSession
	}

	result, err := s.collection.ReplaceOne(ctx, bson.M{"_id": session.ID.String()}, toMongoSession(session))
	if err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *MongoStore) UpdateActivity(ctx context.Context, token string, lastActivity time.Time) error {
	result, err := s.collection.UpdateOne(ctx,
		bson.M{"token": token},
		bson.M{"$set": bson.M{"last_activity_at": lastActivity}})
	if err != nil {
		return fmt.Errorf("update session activity: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, token string) error {
	_, err := s.collection.DeleteOne(ctx, bson.M{"token": token})
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteExpired(ctx context.Context) error {
	_, err := s.collection.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lt": time.Now()}})
	if err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	_, err := s.collection.DeleteMany(ctx, bson.M{"user_id": userID.String()})
	if err != nil {
		return fmt.Errorf("delete sessions by user: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteByTenantID(ctx context.Context, tenantID uuid.UUID) error {
	_, err := s.collection.DeleteMany(ctx, bson.M{"tenant_id": tenantID.String()})
	if err != nil {
		return fmt.Errorf("delete sessions by tenant: %w", err)
	}
	return nil
}
