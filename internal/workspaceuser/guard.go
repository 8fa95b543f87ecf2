package workspaceuser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard admits at most one activation sweep per user per TTL window.
type Guard interface {
	TryAcquire(ctx context.Context, userID string) (bool, error)
	// Release forgets userID so the next request may sweep again.
	Release(ctx context.Context, userID string) error
}

type MemoryGuard struct {
	mu    sync.Mutex
	ttl   time.Duration
	until map[string]time.Time
	now   func() time.Time
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{
		ttl:   ttl,
		until: make(map[string]time.Time),
		now:   time.Now,
	}
}

func (g *MemoryGuard) TryAcquire(_ context.Context, userID string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if exp, ok := g.until[userID]; ok && now.Before(exp) {
		return false, nil
	}
	for id, exp := range g.until {
		if !now.Before(exp) {
			delete(g.until, id)
		}
	}
	g.until[userID] = now.Add(g.ttl)
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.until, userID)
	return nil
}

const redisGuardPrefix = "taskboard:activation:"

// RedisGuard shares the window across server replicas.
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) TryAcquire(ctx context.Context, userID string) (bool, error) {
	ok, err := g.client.SetNX(ctx, redisGuardPrefix+userID, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire activation guard: %w", err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, userID string) error {
	if err := g.client.Del(ctx, redisGuardPrefix+userID).Err(); err != nil {
		return fmt.Errorf("failed to release activation guard: %w", err)
	}
	return nil
}
