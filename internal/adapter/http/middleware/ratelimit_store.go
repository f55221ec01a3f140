package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// RateLimitStore counts hits for a key inside a fixed window.
type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (count int, resetTime time.Time, err error)
}

type rateLimitEntry struct {
	Count     int
	ResetTime time.Time
}

type MemoryRateLimitStore struct {
	cache *cache.Cache
	mutex sync.Mutex
	now   func() time.Time
}

func NewMemoryRateLimitStore() *MemoryRateLimitStore {
	return &MemoryRateLimitStore{
		cache: cache.New(5*time.Minute, 10*time.Minute),
		now:   time.Now,
	}
}

func (s *MemoryRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	now := s.now()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if item, found := s.cache.Get(key); found {
		entry := item.(rateLimitEntry)

		if now.Before(entry.ResetTime) {
			entry.Count++
			s.cache.Set(key, entry, entry.ResetTime.Sub(now))
			return entry.Count, entry.ResetTime, nil
		}
	}

	entry := rateLimitEntry{Count: 1, ResetTime: now.Add(window)}
	s.cache.Set(key, entry, window)

	return entry.Count, entry.ResetTime, nil
}

func (s *MemoryRateLimitStore) ItemCount() int {
	return s.cache.ItemCount()
}

// RedisRateLimitStore shares counters between API replicas.
type RedisRateLimitStore struct {
	client *redis.Client
}

func NewRedisRateLimitStore(client *redis.Client) *RedisRateLimitStore {
	return &RedisRateLimitStore{client: client}
}

func (s *RedisRateLimitStore) Increment(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, window)
		ttl = pipe.PTTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, time.Time{}, err
	}

	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}

	return int(incr.Val()), time.Now().Add(remaining), nil
}
