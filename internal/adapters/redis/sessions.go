package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/adapters/observability"
	"github.com/SkanderGasmi/xrwvm-fullstack-developer-capstone/internal/domain"
)

const sessionPrefix = "session:"

// SessionStore keeps sessions as JSON under session:<token>; Redis expiry is the session lifetime.
type SessionStore struct{ c *redis.Client }

func NewSessionStore(c *redis.Client) *SessionStore { return &SessionStore{c: c} }

func (s *SessionStore) Create(ctx context.Context, sess domain.Session, ttl time.Duration) error {
	if sess.Token == "" {
		return errors.New("session token is empty")
	}
	b, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	observability.ObserveSession("create")
	return s.c.Set(ctx, sessionPrefix+sess.Token, b, ttl).Err()
}

func (s *SessionStore) Get(ctx context.Context, token string) (domain.Session, bool, error) {
	v, err := s.c.Get(ctx, sessionPrefix+token).Bytes()
	if err == redis.Nil {
		observability.ObserveSession("miss")
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, err
	}
	var sess domain.Session
	if err := json.Unmarshal(v, &sess); err != nil {
		return domain.Session{}, false, fmt.Errorf("decode session: %w", err)
	}
	observability.ObserveSession("hit")
	sess.Token = token
	return sess, true, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	observability.ObserveSession("delete")
	return s.c.Del(ctx, sessionPrefix+token).Err()
}
