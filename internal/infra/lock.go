package infra

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotObtained is returned when another writer holds the key past the wait budget.
var ErrLockNotObtained = errors.New("lock: recurso ocupado por otra operación")

// Locker grants exclusive ownership of a key across processes.
// The returned release func must be called exactly once.
type Locker interface {
	Obtain(ctx context.Context, key string) (release func(), err error)
}

// ClienteLockKey is the key serializing settlements of one client.
func ClienteLockKey(clienteID string) string { return "lock:cliente:" + clienteID }

type redisLocker struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
}

// NewRedisLocker backs Locker with redislock. Waiting callers retry every
// 100ms until ttl elapses or ctx is done.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisLocker{
		client: redislock.New(rdb),
		ttl:    ttl,
		retry:  redislock.LimitRetry(redislock.LinearBackoff(100*time.Millisecond), int(ttl/(100*time.Millisecond))),
	}
}

func (l *redisLocker) Obtain(ctx context.Context, key string) (func(), error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{RetryStrategy: l.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, err
	}
	return func() {
		// the lock may already have expired; redislock reports ErrLockNotHeld
		_ = lock.Release(context.Background())
	}, nil
}

type localLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

// NewLocalLocker serializes keys inside a single process. Used by tests and
// by single-instance deployments without Redis.
func NewLocalLocker() Locker {
	return &localLocker{held: make(map[string]chan struct{})}
}

func (l *localLocker) Obtain(ctx context.Context, key string) (func(), error) {
	for {
		l.mu.Lock()
		ch, busy := l.held[key]
		if !busy {
			ch = make(chan struct{})
			l.held[key] = ch
			l.mu.Unlock()
			return func() {
				l.mu.Lock()
				delete(l.held, key)
				l.mu.Unlock()
				close(ch)
			}, nil
		}
		l.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ErrLockNotObtained
		}
	}
}
