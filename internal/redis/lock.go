package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	ErrLockNotAcquired = errors.New("booking lock not acquired")
)

// BookingLocker is a Redis mutex shared by every api-server replica.
type BookingLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewBookingLocker creates a locker that holds a key for at most ttl and
// waits up to wait, polling every retry, for a busy key to free up.
func NewBookingLocker(client *redis.Client, ttl, wait, retry time.Duration) *BookingLocker {
	if retry <= 0 {
		retry = 50 * time.Millisecond
	}
	return &BookingLocker{
		client: client,
		ttl:    ttl,
		wait:   wait,
		retry:  retry,
	}
}

func (l *BookingLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	key = "lock:booking:" + key
	token := uuid.NewString()

	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}

	defer func() {
		// release on a fresh context so a cancelled caller still frees the key
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = l.release(releaseCtx, key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	return fn(ctxWithTimeout)
}

func (l *BookingLocker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire booking lock: %w", err)
		}
		if ok {
			return nil
		}
		if !time.Now().Add(l.retry).Before(deadline) {
			return ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *BookingLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release booking lock: %w", err)
	}
	return nil
}
