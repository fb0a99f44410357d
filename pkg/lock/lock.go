package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// DefaultPrefix namespaces the lock keys of every server on one catalog.
	DefaultPrefix = "easy_fm:write_lock"
	// DefaultTTL bounds how long a crashed holder blocks the others. Live
	// holders keep extending it.
	DefaultTTL = 30 * time.Second
	// DefaultAcquireTimeout is how long a caller waits for the lock.
	DefaultAcquireTimeout = 30 * time.Second

	// CatalogName is the lock taken around datastore registration changes.
	CatalogName = "datastores"
)

// ErrTimeout is returned by Acquire when the lock stayed taken past the
// acquire timeout.
var ErrTimeout = errors.New("timeout acquiring write lock")

// Unlock gives a lease back.
type Unlock func(ctx context.Context) error

// Locker hands out exclusive leases on named locks.
type Locker interface {
	Acquire(ctx context.Context, name string) (Unlock, error)
}

// DatastoreName is the lock name guarding writes to one datastore.
func DatastoreName(dsid uint) string {
	return fmt.Sprintf("datastore:%d", dsid)
}

// DistributedLock implements Locker on top of Redis SETNX. Each name maps to
// its own key, so leases on different names never contend.
type DistributedLock struct {
	client         redis.UniversalClient
	prefix         string
	lockTTL        time.Duration
	acquireTimeout time.Duration
}

var _ Locker = (*DistributedLock)(nil)

// New creates a DistributedLock. An empty prefix and zero ttl or
// acquireTimeout take the defaults.
func New(client redis.UniversalClient, prefix string, ttl, acquireTimeout time.Duration) *DistributedLock {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if acquireTimeout <= 0 {
		acquireTimeout = DefaultAcquireTimeout
	}
	return &DistributedLock{
		client:         client,
		prefix:         prefix,
		lockTTL:        ttl,
		acquireTimeout: acquireTimeout,
	}
}

// Key returns the Redis key backing name.
func (l *DistributedLock) Key(name string) string {
	return l.prefix + ":" + name
}

// Acquire blocks with exponential backoff until the lock is obtained, the
// acquire timeout passes or ctx is done. While the lease is held its TTL is
// extended every third of the TTL, until the returned Unlock is called.
func (l *DistributedLock) Acquire(ctx context.Context, name string) (Unlock, error) {
	key := l.Key(name)
	lockID := uuid.NewString()
	deadline := time.Now().Add(l.acquireTimeout)
	backoff := 50 * time.Millisecond

	for {
		ok, err := l.client.SetNX(ctx, key, lockID, l.lockTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("redis setnx: %w", err)
		}
		if ok {
			break
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w %s after %s", ErrTimeout, name, l.acquireTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		backoff *= 2
		if backoff > 500*time.Millisecond {
			backoff = 500 * time.Millisecond
		}
	}

	keepCtx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.keepAlive(keepCtx, key, lockID)
	}()

	var once sync.Once
	return func(ctx context.Context) error {
		var err error
		once.Do(func() {
			stop()
			<-done
			err = l.release(ctx, key, lockID)
		})
		return err
	}, nil
}

func (l *DistributedLock) keepAlive(ctx context.Context, key, lockID string) {
	ticker := time.NewTicker(l.lockTTL / 3)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		n, err := refreshScript.Run(ctx, l.client, []string{key}, lockID, l.lockTTL.Milliseconds()).Int()
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			hlog.Warnf("[WriteLock] failed to extend %s: %v", key, err)
		case n == 0:
			hlog.Errorf("[WriteLock] lost %s before release", key)
			return
		}
	}
}

// refreshScript extends the key only while it still holds the caller's id.
var refreshScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("pexpire", KEYS[1], ARGV[2])
else
    return 0
end
`)

// releaseScript deletes the key only while it still holds the caller's id.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

func (l *DistributedLock) release(ctx context.Context, key, lockID string) error {
	n, err := releaseScript.Run(ctx, l.client, []string{key}, lockID).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock: %w", err)
	}
	if n == 0 {
		hlog.CtxWarnf(ctx, "[WriteLock] %s was no longer held at release", key)
	}
	return nil
}
