// internal/session/session.go
//
// Package session keeps administrator login sessions in Redis as opaque
// uuid tokens with a TTL. Like the application store, a missing session is
// the (nil, nil) sentinel rather than an error.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clearance-portal/internal/common/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Session is a live administrator session.
type Session struct {
	Token     string    `json:"token"`
	AdminID   string    `json:"adminId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// Manager creates, resolves, and destroys admin sessions.
type Manager struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewManager constructs a session manager over an established Redis client.
func NewManager(client *redis.Client, ttl time.Duration, log logger.Logger) *Manager {
	return &Manager{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "session"}),
	}
}

// Create opens a session for the given admin and returns it.
func (m *Manager) Create(ctx context.Context, adminID, username string) (*Session, error) {
	sess := &Session{
		Token:     uuid.New().String(),
		AdminID:   adminID,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}

	if err := m.client.Set(ctx, keyPrefix+sess.Token, payload, m.ttl).Err(); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	m.logger.Info("session created", map[string]interface{}{
		"adminId":  adminID,
		"username": username,
	})

	return sess, nil
}

// Get resolves a token to its session, or (nil, nil) when the token is
// unknown or expired.
func (m *Manager) Get(ctx context.Context, token string) (*Session, error) {
	payload, err := m.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}

// Destroy removes a session. Destroying an unknown token is a no-op.
func (m *Manager) Destroy(ctx context.Context, token string) error {
	if err := m.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}
