package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mpesa-paywall/internal/core/domain"

	goredis "github.com/redis/go-redis/v9"
)

// SessionStore implements ports.SessionStore. Markers are JSON values that
// Redis expires on its own; readers still check ExpiresAt.
type SessionStore struct {
	client *goredis.Client
	prefix string
}

// NewSessionStore creates a new Redis-backed paid-session store.
func NewSessionStore(client *goredis.Client) *SessionStore {
	return &SessionStore{
		client: client,
		prefix: keyPrefix + "paid_session:",
	}
}

func (s *SessionStore) key(clientID, serviceType string, action domain.ActionType) string {
	return fmt.Sprintf("%s%s:%s:%s", s.prefix, clientID, serviceType, action)
}

// Save writes the marker, replacing any earlier one for the same key.
func (s *SessionStore) Save(ctx context.Context, session *domain.PaidSession, ttl time.Duration) error {
	val, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal paid session: %w", err)
	}
	key := s.key(session.ClientID, session.ServiceType, session.ActionType)
	if err := s.client.Set(ctx, key, val, ttl).Err(); err != nil {
		return fmt.Errorf("redis paid session set: %w", err)
	}
	return nil
}

// Get returns the marker or nil, nil if there is none.
func (s *SessionStore) Get(ctx context.Context, clientID, serviceType string, action domain.ActionType) (*domain.PaidSession, error) {
	val, err := s.client.Get(ctx, s.key(clientID, serviceType, action)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis paid session get: %w", err)
	}

	var session domain.PaidSession
	if err := json.Unmarshal(val, &session); err != nil {
		return nil, fmt.Errorf("unmarshal paid session: %w", err)
	}
	return &session, nil
}
