package redisclient

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestBookingLocker_RunsAndReleases(t *testing.T) {
	mr, rdb := newTestRedis(t)
	locker := NewBookingLocker(rdb, 5*time.Second, 0, 10*time.Millisecond)

	ran := false
	err := locker.WithLock(context.Background(), "dentist:2026-10-19", func(ctx context.Context) error {
		ran = true
		assert.True(t, mr.Exists("lock:booking:dentist:2026-10-19"))
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, mr.Exists("lock:booking:dentist:2026-10-19"))
}

func TestBookingLocker_PropagatesCallbackError(t *testing.T) {
	_, rdb := newTestRedis(t)
	locker := NewBookingLocker(rdb, time.Second, 0, 10*time.Millisecond)
	boom := errors.New("boom")

	err := locker.WithLock(context.Background(), "k", func(context.Context) error { return boom })

	assert.ErrorIs(t, err, boom)
}

func TestBookingLocker_FailsFastWhenHeldAndNoWait(t *testing.T) {
	mr, rdb := newTestRedis(t)
	require.NoError(t, mr.Set("lock:booking:k", "someone-else"))

	locker := NewBookingLocker(rdb, time.Second, 0, 10*time.Millisecond)
	err := locker.WithLock(context.Background(), "k", func(context.Context) error {
		t.Fatal("callback must not run without the lock")
		return nil
	})

	assert.ErrorIs(t, err, ErrLockNotAcquired)
	got, _ := mr.Get("lock:booking:k")
	assert.Equal(t, "someone-else", got, "foreign lock must not be released")
}

func TestBookingLocker_SerializesContenders(t *testing.T) {
	_, rdb := newTestRedis(t)
	locker := NewBookingLocker(rdb, 5*time.Second, 5*time.Second, 5*time.Millisecond)

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), "same-day", func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
}

func TestReminderStore_MarkSentOnce(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewReminderStore(rdb, time.Hour)
	ctx := context.Background()

	first, err := store.MarkSent(ctx, "appt-1:24h")
	require.NoError(t, err)
	second, err := store.MarkSent(ctx, "appt-1:24h")
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	assert.True(t, mr.Exists("reminder:appt-1:24h"))
	assert.Equal(t, time.Hour, mr.TTL("reminder:appt-1:24h"))
}
