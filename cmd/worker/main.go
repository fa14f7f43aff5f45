package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khoahotran/auto-featured-image/adapters/event"
	"github.com/khoahotran/auto-featured-image/adapters/media_storage"
	"github.com/khoahotran/auto-featured-image/adapters/persistence"
	"github.com/khoahotran/auto-featured-image/internal/application/hook"
	"github.com/khoahotran/auto-featured-image/internal/application/usecase/featured"
	mediaUC "github.com/khoahotran/auto-featured-image/internal/application/usecase/media"
	postUC "github.com/khoahotran/auto-featured-image/internal/application/usecase/post"
	"github.com/khoahotran/auto-featured-image/internal/config"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
	"github.com/khoahotran/auto-featured-image/pkg/tracing"
)

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel)
	defer appLogger.Sync()
	appLogger.Info("Starting Auto Featured Image Worker...")

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "featured-image-worker")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}
	defer shutdownTracing(context.Background())

	// Database
	dbPool, err := persistence.NewPostgresPool(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot connect Postgres", err)
	}
	defer dbPool.Close()

	var guard featured.Guard
	if cfg.Redis.Addr != "" {
		redisClient, err := persistence.NewRedisClient(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("cannot connect Redis", err)
		}
		defer redisClient.Close()
		guard = persistence.NewRedisGuard(redisClient, cfg.Redis.GuardTTL)
	}

	// Cloudinary Uploader
	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	// Repositories
	postRepo := persistence.NewPostgresPostRepo(dbPool)
	metaRepo := persistence.NewPostgresMetaRepo(dbPool)
	termRepo := persistence.NewPostgresTermRepo(dbPool)
	attachmentRepo := persistence.NewPostgresAttachmentRepo(dbPool)

	policy, err := featured.ParsePolicy(cfg.Resolver.Policy)
	if err != nil {
		appLogger.Fatal("invalid resolver policy", err)
	}
	resolver := featured.NewResolver(featured.NewAttachmentLookup(attachmentRepo, cfg.Resolver.TitleMarker), policy, appLogger)

	// Worker Use Cases
	assignUseCase := featured.NewAssignUseCase(postRepo, metaRepo, termRepo, resolver, guard, appLogger)
	socialCardUseCase := postUC.NewSocialCardUseCase(metaRepo, attachmentRepo, uploader, appLogger)
	processMediaUseCase := mediaUC.NewProcessMediaUseCase(attachmentRepo, uploader, appLogger)

	dispatcher := hook.NewDispatcher(appLogger)
	postUC.RegisterHooks(dispatcher, assignUseCase, socialCardUseCase)
	processPostEventUseCase := postUC.NewProcessPostEventUseCase(dispatcher, appLogger)

	// Kafka Consumers
	postConsumer := event.NewConsumer(
		event.NewKafkaReader(cfg, event.TopicPostEvents),
		func(ctx context.Context, msg kafka.Message) error {
			payload, err := event.Decode[event.PostEventPayload](msg)
			if err != nil {
				return err
			}
			return processPostEventUseCase.Execute(ctx, payload)
		},
		appLogger,
	)
	defer postConsumer.Close()

	mediaConsumer := event.NewConsumer(
		event.NewKafkaReader(cfg, event.TopicMediaEvents),
		func(ctx context.Context, msg kafka.Message) error {
			payload, err := event.Decode[event.MediaEventPayload](msg)
			if err != nil {
				return err
			}
			return processMediaUseCase.Execute(ctx, payload)
		},
		appLogger,
	)
	defer mediaConsumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appLogger.Info("Worker listening",
		zap.Strings("topics", []string{event.TopicPostEvents, event.TopicMediaEvents}),
		zap.String("policy", policy.String()),
		zap.Strings("transition_handlers", dispatcher.Handlers(hook.TransitionPostStatus)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return postConsumer.Run(gctx) })
	g.Go(func() error { return mediaConsumer.Run(gctx) })

	if err := g.Wait(); err != nil {
		appLogger.Error("Worker stopped with error", err)
		return
	}
	appLogger.Info("Worker stopped")
}
