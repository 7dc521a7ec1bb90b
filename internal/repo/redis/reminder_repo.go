package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ReminderRepo remembers which renewal reminders went out for a billing period.
type ReminderRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewReminderRepo(client *goredis.Client, ttl time.Duration) *ReminderRepo {
	if ttl <= 0 {
		ttl = 8 * 24 * time.Hour
	}
	return &ReminderRepo{client: client, ttl: ttl}
}

// MarkSent records the reminder and reports whether it was new.
func (r *ReminderRepo) MarkSent(ctx context.Context, userID, periodKey string) (bool, error) {
	if r.client == nil {
		return true, nil
	}
	if userID == "" || periodKey == "" {
		return false, fmt.Errorf("invalid reminder payload")
	}

	ok, err := r.client.SetNX(ctx, reminderKey(userID, periodKey), time.Now().UTC().Unix(), r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark reminder sent: %w", err)
	}
	return ok, nil
}

// Forget drops the marker so a failed send can be retried on the next run.
func (r *ReminderRepo) Forget(ctx context.Context, userID, periodKey string) error {
	if r.client == nil {
		return nil
	}
	if err := r.client.Del(ctx, reminderKey(userID, periodKey)).Err(); err != nil {
		return fmt.Errorf("forget reminder: %w", err)
	}
	return nil
}

func reminderKey(userID, periodKey string) string {
	return "billing:reminder:" + userID + ":" + periodKey
}
