// Package auth holds token revocation backends shared by the auth service
// and middleware.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JesperSolutions/agritectum-platform-sub017/internal/port"
)

const blacklistPrefix = "taklaget:blacklist:"

// RedisBlacklist revokes tokens through a shared Redis instance, so logout
// takes effect across all API instances at once.
type RedisBlacklist struct {
	client *redis.Client
	// maxTTL bounds user invalidation keys; tokens older than this are
	// expired anyway.
	maxTTL time.Duration
}

// NewRedisBlacklist connects to Redis and verifies the connection.
func NewRedisBlacklist(addr, password string, db int, maxTokenTTL time.Duration) (*RedisBlacklist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis blacklist: %w", err)
	}

	return &RedisBlacklist{client: client, maxTTL: maxTokenTTL}, nil
}

func (b *RedisBlacklist) jtiKey(jti string) string {
	return blacklistPrefix + "jti:" + jti
}

func (b *RedisBlacklist) userKey(userID string) string {
	return blacklistPrefix + "user:" + userID
}

func (b *RedisBlacklist) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("blacklist token: %w", err)
	}
	return nil
}

func (b *RedisBlacklist) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := b.client.Exists(ctx, b.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("check blacklist: %w", err)
	}
	return n > 0, nil
}

func (b *RedisBlacklist) InvalidateUser(ctx context.Context, userID string, at time.Time) error {
	err := b.client.Set(ctx, b.userKey(userID), strconv.FormatInt(at.Unix(), 10), b.maxTTL).Err()
	if err != nil {
		return fmt.Errorf("invalidate user tokens: %w", err)
	}
	return nil
}

func (b *RedisBlacklist) IsUserInvalidated(ctx context.Context, userID string, issuedAt time.Time) (bool, error) {
	val, err := b.client.Get(ctx, b.userKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user invalidation: %w", err)
	}
	cutoff, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return false, fmt.Errorf("parse invalidation timestamp: %w", err)
	}
	return issuedAt.Unix() <= cutoff, nil
}

// Close releases the Redis connection.
func (b *RedisBlacklist) Close() error {
	return b.client.Close()
}

var _ port.TokenBlacklist = (*RedisBlacklist)(nil)

// MemoryBlacklist is a single-process fallback used when Redis is not
// configured, and in tests.
type MemoryBlacklist struct {
	mu          sync.Mutex
	jtis        map[string]time.Time
	invalidated map[string]time.Time
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{
		jtis:        make(map[string]time.Time),
		invalidated: make(map[string]time.Time),
	}
}

func (b *MemoryBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jtis[jti] = time.Now().Add(ttl)
	return nil
}

func (b *MemoryBlacklist) IsTokenBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	expiry, ok := b.jtis[jti]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(b.jtis, jti)
		return false, nil
	}
	return true, nil
}

func (b *MemoryBlacklist) InvalidateUser(_ context.Context, userID string, at time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.invalidated[userID] = at
	return nil
}

func (b *MemoryBlacklist) IsUserInvalidated(_ context.Context, userID string, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	cutoff, ok := b.invalidated[userID]
	if !ok {
		return false, nil
	}
	return !issuedAt.After(cutoff), nil
}

var _ port.TokenBlacklist = (*MemoryBlacklist)(nil)
