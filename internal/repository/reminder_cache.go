package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/loan-engine/internal/domain"
)

const (
	milestoneKeyPrefix = "notification:milestone:"
	lastRunKey         = "reminders:last_run"
)

type redisReminderCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReminderCache keeps emitted milestone keys for ttl. The database unique index
// stays authoritative; a miss here only means the database gets asked.
func NewReminderCache(client *redis.Client, ttl time.Duration) ReminderCache {
	return &redisReminderCache{client: client, ttl: ttl}
}

func (c *redisReminderCache) Seen(ctx context.Context, key string) (bool, error) {
	n, err := c.client.Exists(ctx, milestoneKeyPrefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *redisReminderCache) Remember(ctx context.Context, key string) error {
	return c.client.Set(ctx, milestoneKeyPrefix+key, 1, c.ttl).Err()
}

func (c *redisReminderCache) SaveReport(ctx context.Context, report *domain.RunReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, lastRunKey, payload, 0).Err()
}

// LastReport returns nil, nil when no run has been recorded yet
func (c *redisReminderCache) LastReport(ctx context.Context) (*domain.RunReport, error) {
	payload, err := c.client.Get(ctx, lastRunKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var report domain.RunReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, err
	}

	return &report, nil
}
