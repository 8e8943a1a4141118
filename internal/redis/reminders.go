package redisclient

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ReminderStore remembers which reminders went out so replicas of the
// reminder worker do not send the same one twice.
type ReminderStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReminderStore(client *redis.Client, ttl time.Duration) *ReminderStore {
	return &ReminderStore{client: client, ttl: ttl}
}

// MarkSent claims key and reports whether this caller was first.
func (s *ReminderStore) MarkSent(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, "reminder:"+key, time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	return ok, nil
}
