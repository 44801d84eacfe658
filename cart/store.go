package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Store persists carts per session for the lifetime of that session.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore keeps carts in process. Used when no Redis is configured.
type MemoryStore struct {
	mu    sync.Mutex
	carts map[string]*Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]*Cart)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.carts[sessionID]; ok {
		return c.clone(), nil
	}
	return &Cart{}, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.IsEmpty() {
		delete(s.carts, sessionID)
		return nil
	}
	s.carts[sessionID] = c.clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}

// RedisStore keeps each cart as a JSON value that expires ttl after its last write.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *RedisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	data, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Cart{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get cart")
	}
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	return &c, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID string, c *Cart) error {
	if c.IsEmpty() {
		return s.Delete(ctx, sessionID)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := s.client.Set(ctx, s.key(sessionID), data, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set cart")
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return errors.Wrap(err, "redis delete cart")
	}
	return nil
}
