package appointment

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/FabiQuint18/Dental-Clinic-Management-System/internal/caltime"
)

// Locker guards the check-then-insert section of a booking.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// BookingLockKey scopes the booking lock to one dentist's day.
func BookingLockKey(dentistID uuid.UUID, date caltime.Date) string {
	return fmt.Sprintf("%s:%s", dentistID, date)
}

type localEntry struct {
	mu   sync.Mutex
	refs int
}

// LocalLocker is an in-process keyed mutex. Entries are dropped once no
// caller holds or waits on them.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localEntry
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localEntry)}
}

func (l *LocalLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()
	defer l.release(key, e)

	return fn(ctx)
}

func (l *LocalLocker) release(key string, e *localEntry) {
	e.mu.Unlock()

	l.mu.Lock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
	l.mu.Unlock()
}

// held reports the number of keys currently tracked.
func (l *LocalLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
