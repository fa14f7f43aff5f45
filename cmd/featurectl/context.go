package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/auto-featured-image/adapters/persistence"
	"github.com/khoahotran/auto-featured-image/internal/application/usecase/featured"
	"github.com/khoahotran/auto-featured-image/internal/config"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
)

// commandContext loads configuration once and opens stores only for the
// commands that need them.
type commandContext struct {
	configDir *string

	cfg    *config.Config
	log    logger.Logger
	pool   *pgxpool.Pool
	redis  *redis.Client
	assign *featured.AssignUseCase
}

func newCommandContext(configDir *string) *commandContext {
	return &commandContext{configDir: configDir}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.LoadConfig(*c.configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	c.cfg = &cfg
	c.log = logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel)
	return c.cfg, nil
}

func (c *commandContext) assignUseCase(ctx context.Context) (*featured.AssignUseCase, error) {
	if c.assign != nil {
		return c.assign, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	pool, err := persistence.NewPostgresPool(*cfg, c.log)
	if err != nil {
		return nil, err
	}
	c.pool = pool

	var guard featured.Guard
	if cfg.Redis.Addr != "" {
		rdb, err := persistence.NewRedisClient(*cfg, c.log)
		if err != nil {
			return nil, err
		}
		c.redis = rdb
		guard = persistence.NewRedisGuard(rdb, cfg.Redis.GuardTTL)
	}

	policy, err := featured.ParsePolicy(cfg.Resolver.Policy)
	if err != nil {
		return nil, err
	}
	attachmentRepo := persistence.NewPostgresAttachmentRepo(pool)
	resolver := featured.NewResolver(featured.NewAttachmentLookup(attachmentRepo, cfg.Resolver.TitleMarker), policy, c.log)

	c.assign = featured.NewAssignUseCase(
		persistence.NewPostgresPostRepo(pool),
		persistence.NewPostgresMetaRepo(pool),
		persistence.NewPostgresTermRepo(pool),
		resolver,
		guard,
		c.log,
	)
	return c.assign, nil
}

func (c *commandContext) backfillUseCase(ctx context.Context) (*featured.BackfillUseCase, error) {
	assign, err := c.assignUseCase(ctx)
	if err != nil {
		return nil, err
	}
	return featured.NewBackfillUseCase(persistence.NewPostgresPostRepo(c.pool), assign, c.log), nil
}

func (c *commandContext) close() {
	if c.pool != nil {
		c.pool.Close()
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
	if c.log != nil {
		_ = c.log.Sync()
	}
}
