package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/edu_center_app/internal/core/domain"
	portsrepo "github.com/SscSPs/edu_center_app/internal/core/ports/repositories"
	"github.com/redis/go-redis/v9"
)

// ProgressCache caches computed group totals under a per-group version. Invalidation bumps the
// version so every older key becomes unreachable and ages out through its TTL.
type ProgressCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ portsrepo.ProgressCache = (*ProgressCache)(nil)

// NewProgressCache creates a cache whose entries live for ttl.
func NewProgressCache(client redis.Cmdable, ttl time.Duration) *ProgressCache {
	return &ProgressCache{client: client, ttl: ttl}
}

func (c *ProgressCache) version(ctx context.Context, groupID string) (int64, error) {
	v, err := c.client.Get(ctx, progressVersionKey(groupID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read progress version of group %s: %w", groupID, err)
	}
	return v, nil
}

// GetGroupTotals returns the cached totals, or nil on a miss.
func (c *ProgressCache) GetGroupTotals(ctx context.Context, groupID string, week int) (*domain.GroupWeeklyTotals, error) {
	ver, err := c.version(ctx, groupID)
	if err != nil {
		return nil, err
	}
	data, err := c.client.Get(ctx, progressDataKey(groupID, ver, week)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read progress totals of group %s: %w", groupID, err)
	}
	var totals domain.GroupWeeklyTotals
	if err := json.Unmarshal(data, &totals); err != nil {
		return nil, fmt.Errorf("decode progress totals of group %s: %w", groupID, err)
	}
	return &totals, nil
}

// SetGroupTotals stores totals under the group's current version.
func (c *ProgressCache) SetGroupTotals(ctx context.Context, groupID string, week int, totals *domain.GroupWeeklyTotals) error {
	if totals == nil {
		return nil
	}
	ver, err := c.version(ctx, groupID)
	if err != nil {
		return err
	}
	data, err := json.Marshal(totals)
	if err != nil {
		return fmt.Errorf("encode progress totals of group %s: %w", groupID, err)
	}
	return c.client.Set(ctx, progressDataKey(groupID, ver, week), data, c.ttl).Err()
}

// InvalidateGroup bumps the group's version.
func (c *ProgressCache) InvalidateGroup(ctx context.Context, groupID string) error {
	if err := c.client.Incr(ctx, progressVersionKey(groupID)).Err(); err != nil {
		return fmt.Errorf("bump progress version of group %s: %w", groupID, err)
	}
	return nil
}
