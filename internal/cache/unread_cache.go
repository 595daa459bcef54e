package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// UnreadCache keeps per-user unread counters in Redis so the topbar badge
// read path does not hit postgres on every poll. The cache is strictly an
// accelerator: a nil client or any Redis failure degrades to the database.
type UnreadCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewUnreadCache(redisAddr, password string, ttl time.Duration) (*UnreadCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         redisAddr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &UnreadCache{client: rdb, ttl: ttl}, nil
}

// Disabled returns a cache whose every method is a no-op, for deployments
// without Redis and for tests.
func Disabled() *UnreadCache {
	return &UnreadCache{}
}

func unreadKey(userID string) string {
	return fmt.Sprintf("notif:unread:%s", userID)
}

// GetUnread returns the cached unread count. ok is false on miss, disabled
// cache, or any Redis error.
func (c *UnreadCache) GetUnread(ctx context.Context, userID string) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}

	val, err := c.client.Get(ctx, unreadKey(userID)).Result()
	if err != nil {
		return 0, false
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return count, true
}

// SetUnread stores the unread count with the configured TTL.
func (c *UnreadCache) SetUnread(ctx context.Context, userID string, count int64) {
	if c == nil || c.client == nil {
		return
	}
	// best effort, the DB remains authoritative
	c.client.Set(ctx, unreadKey(userID), count, c.ttl)
}

// Invalidate drops the cached counter after any mutation so the next read
// recomputes from the database.
func (c *UnreadCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, unreadKey(userID))
}

// Close releases the underlying Redis connection.
func (c *UnreadCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
