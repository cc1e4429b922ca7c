package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if this owner still holds it.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// PollLock implements ports.PollLock using Redis SET NX. Each process has
// its own owner token so a lock that expired and was re-taken elsewhere is
// never released by the old holder.
type PollLock struct {
	client *goredis.Client
	prefix string
	owner  string
}

// NewPollLock creates a new Redis-backed poll lock.
func NewPollLock(client *goredis.Client) *PollLock {
	return &PollLock{
		client: client,
		prefix: keyPrefix + "poll_lock:",
		owner:  uuid.NewString(),
	}
}

// Acquire takes the lock for transactionID.
// Returns false if another poller already holds it.
func (l *PollLock) Acquire(ctx context.Context, transactionID string, ttl time.Duration) (bool, error) {
	result, err := l.client.SetArgs(ctx, l.prefix+transactionID, l.owner, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis poll lock acquire: %w", err)
	}
	return result == "OK", nil
}

// Release drops the lock if this process owns it.
func (l *PollLock) Release(ctx context.Context, transactionID string) error {
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + transactionID}, l.owner).Err(); err != nil {
		return fmt.Errorf("redis poll lock release: %w", err)
	}
	return nil
}
