package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/auto-featured-image/internal/config"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

func NewRedisClient(cfg config.Config, log logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("can not connect Redis: %w", err)
	}

	log.Info("Connect Redis successfully.")
	return rdb, nil
}

// RedisGuard marks a post as being resolved with SET NX so parallel workers
// skip it. The TTL bounds how long a crashed worker can hold the mark.
type RedisGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisGuard(rdb *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{rdb: rdb, ttl: ttl}
}

func guardKey(postID uuid.UUID) string {
	return "featured-image:resolving:" + postID.String()
}

func (g *RedisGuard) Acquire(ctx context.Context, postID uuid.UUID) (bool, error) {
	ok, err := g.rdb.SetNX(ctx, guardKey(postID), 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire guard: %w", err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, postID uuid.UUID) error {
	if err := g.rdb.Del(ctx, guardKey(postID)).Err(); err != nil {
		return fmt.Errorf("release guard: %w", err)
	}
	return nil
}
