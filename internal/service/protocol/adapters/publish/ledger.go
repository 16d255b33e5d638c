package publish

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Ledger remembers which bundle ids have been published.
type Ledger interface {
	// Claim records id and reports whether this call was the first to do so.
	Claim(ctx context.Context, id string) (bool, error)
	// Release forgets id so a failed publish can be retried.
	Release(ctx context.Context, id string) error
}

const ledgerKeyPrefix = "fhir:published:"

// RedisLedger keeps claims in Redis with a TTL.
type RedisLedger struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLedger(client *redis.Client, ttl time.Duration) *RedisLedger {
	return &RedisLedger{client: client, ttl: ttl}
}

func (r *RedisLedger) Claim(ctx context.Context, id string) (bool, error) {
	ok, err := r.client.SetNX(ctx, ledgerKeyPrefix+id, time.Now().UTC().Format(time.RFC3339), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", id, err)
	}
	return ok, nil
}

func (r *RedisLedger) Release(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, ledgerKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("release %s: %w", id, err)
	}
	return nil
}

// MemoryLedger is the in-process ledger used when Redis is not configured.
type MemoryLedger struct {
	mu     sync.Mutex
	claims map[string]struct{}
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{claims: make(map[string]struct{})}
}

func (m *MemoryLedger) Claim(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.claims[id]; ok {
		return false, nil
	}
	m.claims[id] = struct{}{}
	return true, nil
}

func (m *MemoryLedger) Release(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, id)
	return nil
}
