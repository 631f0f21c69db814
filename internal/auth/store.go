package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a credential value is not in the store.
var ErrNotFound = errors.New("auth: not found")

// SessionStore persists the per-browser credential strings: the bearer token,
// the transient PKCE verifier, and the playback device id. Nothing else is
// persisted; reloading the page loses game progress by design.
type SessionStore interface {
	SetToken(ctx context.Context, sessionID, token string) error
	Token(ctx context.Context, sessionID string) (string, error)
	ClearToken(ctx context.Context, sessionID string) error

	SetVerifier(ctx context.Context, sessionID, verifier string) error
	Verifier(ctx context.Context, sessionID string) (string, error)
	ClearVerifier(ctx context.Context, sessionID string) error

	SetDeviceID(ctx context.Context, sessionID, deviceID string) error
	DeviceID(ctx context.Context, sessionID string) (string, error)

	Clear(ctx context.Context, sessionID string) error
}

const (
	tokenTTL    = 55 * time.Minute // provider access tokens live one hour
	verifierTTL = 10 * time.Minute
	deviceTTL   = 12 * time.Hour
)

// RedisStore keeps credential state in Redis under session-scoped keys.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) key(sessionID, field string) string {
	return "session:" + sessionID + ":" + field
}

func (s *RedisStore) get(ctx context.Context, key string) (string, error) {
	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *RedisStore) SetToken(ctx context.Context, sessionID, token string) error {
	return s.rdb.Set(ctx, s.key(sessionID, "token"), token, tokenTTL).Err()
}

func (s *RedisStore) Token(ctx context.Context, sessionID string) (string, error) {
	return s.get(ctx, s.key(sessionID, "token"))
}

func (s *RedisStore) ClearToken(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, s.key(sessionID, "token")).Err()
}

func (s *RedisStore) SetVerifier(ctx context.Context, sessionID, verifier string) error {
	return s.rdb.Set(ctx, s.key(sessionID, "verifier"), verifier, verifierTTL).Err()
}

func (s *RedisStore) Verifier(ctx context.Context, sessionID string) (string, error) {
	return s.get(ctx, s.key(sessionID, "verifier"))
}

func (s *RedisStore) ClearVerifier(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx, s.key(sessionID, "verifier")).Err()
}

func (s *RedisStore) SetDeviceID(ctx context.Context, sessionID, deviceID string) error {
	return s.rdb.Set(ctx, s.key(sessionID, "device"), deviceID, deviceTTL).Err()
}

func (s *RedisStore) DeviceID(ctx context.Context, sessionID string) (string, error) {
	return s.get(ctx, s.key(sessionID, "device"))
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	return s.rdb.Del(ctx,
		s.key(sessionID, "token"),
		s.key(sessionID, "verifier"),
		s.key(sessionID, "device"),
	).Err()
}

// MemoryStore is the in-process fallback used when Redis is not configured,
// and by tests.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

func (s *MemoryStore) set(sessionID, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID+":"+field] = value
	return nil
}

func (s *MemoryStore) get(sessionID, field string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[sessionID+":"+field]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) del(sessionID string, fields ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range fields {
		delete(s.data, sessionID+":"+f)
	}
	return nil
}

func (s *MemoryStore) SetToken(_ context.Context, sessionID, token string) error {
	return s.set(sessionID, "token", token)
}

func (s *MemoryStore) Token(_ context.Context, sessionID string) (string, error) {
	return s.get(sessionID, "token")
}

func (s *MemoryStore) ClearToken(_ context.Context, sessionID string) error {
	return s.del(sessionID, "token")
}

func (s *MemoryStore) SetVerifier(_ context.Context, sessionID, verifier string) error {
	return s.set(sessionID, "verifier", verifier)
}

func (s *MemoryStore) Verifier(_ context.Context, sessionID string) (string, error) {
	return s.get(sessionID, "verifier")
}

func (s *MemoryStore) ClearVerifier(_ context.Context, sessionID string) error {
	return s.del(sessionID, "verifier")
}

func (s *MemoryStore) SetDeviceID(_ context.Context, sessionID, deviceID string) error {
	return s.set(sessionID, "device", deviceID)
}

func (s *MemoryStore) DeviceID(_ context.Context, sessionID string) (string, error) {
	return s.get(sessionID, "device")
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	return s.del(sessionID, "token", "verifier", "device")
}
