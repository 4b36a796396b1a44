// Package redis holds the Redis-backed progress cache and journal creation lock.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrCacheConnection is returned when Redis cannot be reached at startup.
var ErrCacheConnection = errors.New("cache: connection failed")

// Key prefixes for namespacing Redis keys.
const (
	PrefixProgress = "progress:"
	PrefixLock     = "lock:"
)

// Config holds Redis connection configuration.
type Config struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// NewClient opens a client and pings the server once.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %v", ErrCacheConnection, err)
	}
	return client, nil
}

// LockKey generates a key for a distributed lock.
func LockKey(resource string) string {
	return PrefixLock + resource
}

// progressVersionKey holds the per-group counter bumped on every write.
func progressVersionKey(groupID string) string {
	return PrefixProgress + "ver:" + groupID
}

// progressDataKey addresses one cached view; week 0 is the all-weeks view.
func progressDataKey(groupID string, version int64, week int) string {
	return fmt.Sprintf("%s%s:v%d:w%d", PrefixProgress, groupID, version, week)
}
