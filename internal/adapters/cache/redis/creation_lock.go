package redis

import (
	"context"
	"fmt"
	"time"

	portsrepo "github.com/SscSPs/edu_center_app/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CreationLock is a SET NX lock with an expiry, so a crashed holder cannot block generation forever.
type CreationLock struct {
	client lockClient
	ttl    time.Duration
}

var _ portsrepo.CreationLocker = (*CreationLock)(nil)

// lockClient is the subset of the client the lock needs.
type lockClient interface {
	redis.Scripter
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// NewCreationLock creates a lock whose holders expire after ttl.
func NewCreationLock(client lockClient, ttl time.Duration) *CreationLock {
	return &CreationLock{client: client, ttl: ttl}
}

// Acquire tries once to take the lock for key.
func (l *CreationLock) Acquire(ctx context.Context, key string) (func(context.Context) error, bool, error) {
	lockKey := LockKey(key)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", lockKey, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err(); err != nil {
			return fmt.Errorf("release lock %s: %w", lockKey, err)
		}
		return nil
	}
	return release, true, nil
}
