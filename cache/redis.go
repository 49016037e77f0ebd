package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avisharm-alt/curesite/payment"
)

func NewClient(addr string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	log.Println("Redis connected")
	return rdb
}

// StatusCache caches reconciliation results for completed sessions.
// Completed is a terminal, immutable state, so entries never need
// invalidation; the TTL only bounds memory.
type StatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStatusCache(rdb *redis.Client) *StatusCache {
	return &StatusCache{rdb: rdb, ttl: 12 * time.Hour}
}

func statusKey(sessionID string) string {
	return "payment:status:" + sessionID
}

func (c *StatusCache) Get(ctx context.Context, sessionID string) (*payment.ReconciliationResult, bool) {
	cached, err := c.rdb.Get(ctx, statusKey(sessionID)).Result()
	if err != nil {
		return nil, false
	}

	var res payment.ReconciliationResult
	if err := json.Unmarshal([]byte(cached), &res); err != nil {
		return nil, false
	}
	return &res, true
}

func (c *StatusCache) Set(ctx context.Context, sessionID string, res *payment.ReconciliationResult) {
	js, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, statusKey(sessionID), js, c.ttl).Err(); err != nil {
		log.Printf("failed to cache payment status for %s: %v", sessionID, err)
	}
}
