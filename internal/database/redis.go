package database

import (
	"github.com/redis/go-redis/v9"

	"github.com/segyhp/loan-engine/internal/config"
)

// NewRedis returns a client for the reminder dedup cache. It does not dial;
// an unreachable server only degrades the reminder fast path.
func NewRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
