// Package cache holds the redis-backed read cache for availability lookups.
// Slot listings are advisory: the admission path re-validates under locks, so
// a short TTL of staleness is acceptable. A nil client disables caching and
// every call degrades to a miss/no-op.
package cache

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// NewRedisClient connects using the configured address. Returns nil when the
// address is empty or the server is unreachable; callers keep working without
// a cache.
func NewRedisClient(addr, password string) *redis.Client {
	if addr == "" {
		return nil
	}

	var tlsConf *tls.Config
	if strings.HasPrefix(addr, "rediss://") {
		addr = strings.TrimPrefix(addr, "rediss://")
		tlsConf = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(&redis.Options{
		Addr:      addr,
		Password:  password,
		TLSConfig: tlsConf,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable, availability cache disabled: %v", err)
		return nil
	}
	return client
}

type AvailabilityCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAvailabilityCache(rdb *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &AvailabilityCache{rdb: rdb, ttl: ttl}
}

func (c *AvailabilityCache) key(salonID, professionalID uint, date string, serviceID uint) string {
	return fmt.Sprintf("avail:%d:%d:%s:%d", salonID, professionalID, date, serviceID)
}

// Get loads a cached result into v. False means miss (including disabled
// cache or decode failure).
func (c *AvailabilityCache) Get(ctx context.Context, salonID, professionalID uint, date string, serviceID uint, v any) bool {
	if c == nil || c.rdb == nil {
		return false
	}

	raw, err := c.rdb.Get(ctx, c.key(salonID, professionalID, date, serviceID)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

func (c *AvailabilityCache) Set(ctx context.Context, salonID, professionalID uint, date string, serviceID uint, v any) {
	if c == nil || c.rdb == nil {
		return
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key(salonID, professionalID, date, serviceID), raw, c.ttl).Err(); err != nil {
		log.Printf("availability cache set failed: %v", err)
	}
}

// InvalidateDay drops every cached listing for one professional-day (one key
// per service). Called after admissions, cancellations and completions.
func (c *AvailabilityCache) InvalidateDay(ctx context.Context, salonID, professionalID uint, date string) {
	c.deleteByPattern(ctx, dayPattern(salonID, professionalID, date))
}

// InvalidateProfessional drops every cached listing for a professional
// across all days. Used when the weekly schedule itself changes.
func (c *AvailabilityCache) InvalidateProfessional(ctx context.Context, salonID, professionalID uint) {
	c.deleteByPattern(ctx, professionalPattern(salonID, professionalID))
}

func (c *AvailabilityCache) deleteByPattern(ctx context.Context, pattern string) {
	if c == nil || c.rdb == nil {
		return
	}

	keys, err := c.rdb.Keys(ctx, pattern).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Printf("availability cache invalidation failed: %v", err)
	}
}

func dayPattern(salonID, professionalID uint, date string) string {
	return fmt.Sprintf("avail:%d:%d:%s:*", salonID, professionalID, date)
}

func professionalPattern(salonID, professionalID uint) string {
	return fmt.Sprintf("avail:%d:%d:*", salonID, professionalID)
}
