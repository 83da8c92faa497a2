// Package runlock serializes phonefix runs against one directory. Two
// concurrent bulk updates over the same accounts would race each other's
// reads, so a run takes a Redis lease before querying and releases it on the
// way out. Deployments without Redis simply skip the lock.
package runlock

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"phonefix/pkg/sentinel"
)

const lockKey = "phonefix:run-lock"

// releaseScript deletes the lease only when this owner still holds it. The
// get and del must be one atomic step: between a plain GET and DEL another
// run could acquire an expired lease and lose it to our delete.
const releaseScript = `if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`

// locker is the subset of *redis.Client the lock needs.
type locker interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Lock is a single-holder lease. The TTL bounds how long a crashed run can
// block the next one.
type Lock struct {
	client locker
	owner  string
	ttl    time.Duration
}

// New builds a lock owned by the given token, typically the run ID.
func New(client locker, owner string, ttl time.Duration) *Lock {
	return &Lock{client: client, owner: owner, ttl: ttl}
}

// Acquire takes the lease. It does not block: a held lock returns ErrLocked
// immediately so the operator can decide whether to wait or investigate.
func (l *Lock) Acquire(ctx context.Context) error {
	ok, err := l.client.SetNX(ctx, lockKey, l.owner, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another run holds the directory lock: %w", sentinel.ErrLocked)
	}
	return nil
}

// Release drops the lease only if this run still owns it. A lease that
// expired and was re-acquired by another run is left alone, so a stale
// deferred Release can never free a lock someone else is relying on.
func (l *Lock) Release(ctx context.Context) error {
	if err := l.client.Eval(ctx, releaseScript, []string{lockKey}, l.owner).Err(); err != nil {
		return fmt.Errorf("release run lock: %w", err)
	}
	return nil
}
