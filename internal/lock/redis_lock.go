// Package lock implements the single named exclusive lock that guards all
// ledger and audit mutations.  The lock lives in Redis so that several
// server processes sharing the same database exclude each other, and it is
// lease based: the key expires after its TTL, so a crashed holder can
// block other writers only until the lease runs out.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when the lock is still held by someone else
// when the acquisition timeout elapses.
var ErrNotAcquired = errors.New("lock not acquired within timeout")

// retryInterval is how often acquisition is retried while the lock is
// held elsewhere.
const retryInterval = 50 * time.Millisecond

// releaseScript deletes the lock key only when it still carries the
// caller's owner token, so a holder whose lease expired cannot release a
// lock that has since been granted to someone else.
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
    return redis.call('DEL', KEYS[1])
end
return 0
`)

// BookingLock is a lease-based exclusive lock on a single Redis key.
type BookingLock struct {
	rdb            *redis.Client
	key            string
	ttl            time.Duration
	acquireTimeout time.Duration
}

// NewBookingLock returns a lock on the given key.  ttl bounds how long a
// crashed holder can keep the lock; acquireTimeout bounds how long Acquire
// waits before giving up with ErrNotAcquired.
func NewBookingLock(rdb *redis.Client, key string, ttl, acquireTimeout time.Duration) *BookingLock {
	if rdb == nil {
		panic("nil redis client passed to NewBookingLock")
	}
	return &BookingLock{rdb: rdb, key: key, ttl: ttl, acquireTimeout: acquireTimeout}
}

// Acquire takes the lock, retrying until the acquisition timeout elapses.
// On success it returns a function that releases the lock; the release is
// safe to call even after the lease has expired.
func (l *BookingLock) Acquire(ctx context.Context) (func(), error) {
	owner := uuid.NewString()
	deadline := time.Now().Add(l.acquireTimeout)
	for {
		ok, err := l.rdb.SetNX(ctx, l.key, owner, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			break
		}
		if !time.Now().Before(deadline) {
			return nil, ErrNotAcquired
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	release := func() {
		// Detached context: the lock must be released even when the
		// request that took it has been cancelled.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(rctx, l.rdb, []string{l.key}, owner).Err()
	}
	return release, nil
}
