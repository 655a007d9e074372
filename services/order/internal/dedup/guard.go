// Package dedup is a fast-path filter for replayed webhook events. It only saves
// work: the processed_events ledger written in the order transaction stays the
// source of truth, and an event is marked here only after that transaction
// has committed.
package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "webhook:event:"
	defaultTTL = 24 * time.Hour
)

type Guard interface {
	// Seen reports whether the event id was marked as processed.
	Seen(ctx context.Context, eventID string) (bool, error)
	// Mark records an event id whose effects are already committed.
	Mark(ctx context.Context, eventID string) error
}

type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(redisURL string) (*RedisGuard, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisGuard{client: client, ttl: defaultTTL}, nil
}

func (g *RedisGuard) Seen(ctx context.Context, eventID string) (bool, error) {
	n, err := g.client.Exists(ctx, keyPrefix+eventID).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (g *RedisGuard) Mark(ctx context.Context, eventID string) error {
	if err := g.client.Set(ctx, keyPrefix+eventID, time.Now().UTC().Unix(), g.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (g *RedisGuard) Close() error {
	return g.client.Close()
}

// Memory is a process-local Guard used when REDIS_URL is empty. Marks expire after
// the same TTL the Redis guard uses; expired entries are swept on Mark.
type Memory struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	seen      map[string]time.Time
	lastSweep time.Time
}

func NewMemory() *Memory {
	return NewMemoryTTL(defaultTTL)
}

func NewMemoryTTL(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, seen: make(map[string]time.Time)}
}

func (m *Memory) Seen(_ context.Context, eventID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	exp, ok := m.seen[eventID]
	return ok && m.now().Before(exp), nil
}

func (m *Memory) Mark(_ context.Context, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) >= m.ttl/4 {
		for id, exp := range m.seen {
			if !now.Before(exp) {
				delete(m.seen, id)
			}
		}
		m.lastSweep = now
	}
	m.seen[eventID] = now.Add(m.ttl)
	return nil
}

// Len returns the number of marks currently held, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.seen)
}
