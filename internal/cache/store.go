package cache

import (
	"context"
	"sync"
	"time"

	"github.com/cinelog/backend/internal/logger"
)

// Store is a small TTL key/value cache. Implementations must treat every
// operation as best-effort: a failed Get is a miss, a failed Set is a no-op.
type Store interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

// NewStore connects to Redis, falling back to an in-process store when
// Redis is unreachable so a missing cache never takes the app down.
func NewStore(host, port, password string) Store {
	rc, err := NewRedisClient(host, port, password)
	if err != nil {
		logger.WarnWithFields("Redis unavailable, using in-process cache", err)
		return NewMemoryStore()
	}
	return &redisStore{client: rc}
}

type redisStore struct {
	client *RedisClient
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool) {
	val, err := s.client.Get(ctx, key)
	if err != nil {
		if !IsMiss(err) {
			logger.WarnWithFields("cache get failed", err)
		}
		return "", false
	}
	return val, true
}

func (s *redisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	if err := s.client.SetEx(ctx, key, value, ttl); err != nil {
		logger.WarnWithFields("cache set failed", err)
	}
}

func (s *redisStore) Delete(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key); err != nil {
		logger.WarnWithFields("cache delete failed", err)
	}
}

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded map with per-entry expiry. Entries are
// reaped lazily on read and opportunistically on write.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

func (s *MemoryStore) Set(ctx context.Context, key string, value string, ttl time.Duration) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = memoryEntry{value: value, expiresAt: now.Add(ttl)}
}

func (s *MemoryStore) Delete(ctx context.Context, key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}
