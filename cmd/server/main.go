package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/auto-featured-image/adapters/event"
	httpAdapter "github.com/khoahotran/auto-featured-image/adapters/http"
	"github.com/khoahotran/auto-featured-image/adapters/media_storage"
	"github.com/khoahotran/auto-featured-image/adapters/persistence"
	"github.com/khoahotran/auto-featured-image/internal/application/usecase/featured"
	mediaUC "github.com/khoahotran/auto-featured-image/internal/application/usecase/media"
	postUC "github.com/khoahotran/auto-featured-image/internal/application/usecase/post"
	"github.com/khoahotran/auto-featured-image/internal/config"
	"github.com/khoahotran/auto-featured-image/pkg/auth"
	"github.com/khoahotran/auto-featured-image/pkg/logger"
	"github.com/khoahotran/auto-featured-image/pkg/tracing"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("cannot load config: " + err.Error())
	}

	appLogger := logger.NewZapLogger(cfg.App.Env, cfg.App.LogLevel)
	defer appLogger.Sync()
	appLogger.Info("Start Auto Featured Image API Server...", zap.String("env", cfg.App.Env))

	shutdownTracing, err := tracing.Setup(cfg, appLogger, "featured-image-api")
	if err != nil {
		appLogger.Fatal("cannot init tracing", err)
	}
	defer shutdownTracing(context.Background())

	// Initialize dependencies
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

	kafkaClient, err := event.NewKafkaProducerClient(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("cannot init Kafka", err)
	}
	defer kafkaClient.Close()

	// Repositories
	postRepo := persistence.NewPostgresPostRepo(dbPool)
	metaRepo := persistence.NewPostgresMetaRepo(dbPool)
	termRepo := persistence.NewPostgresTermRepo(dbPool)
	attachmentRepo := persistence.NewPostgresAttachmentRepo(dbPool)

	// Services
	jwtSvc := auth.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenLifespan)
	uploader, err := media_storage.NewCloudinaryAdapter(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize uploader", err)
	}

	policy, err := featured.ParsePolicy(cfg.Resolver.Policy)
	if err != nil {
		appLogger.Fatal("invalid resolver policy", err)
	}
	resolver := featured.NewResolver(featured.NewAttachmentLookup(attachmentRepo, cfg.Resolver.TitleMarker), policy, appLogger)

	// Use Cases
	assignUseCase := featured.NewAssignUseCase(postRepo, metaRepo, termRepo, resolver, guard, appLogger)
	createPostUseCase := postUC.NewCreatePostUseCase(postRepo, termRepo, kafkaClient, appLogger)
	listPostsUseCase := postUC.NewListPostsUseCase(postRepo)
	updatePostStatusUseCase := postUC.NewUpdatePostStatusUseCase(postRepo, kafkaClient, appLogger)
	getPostUseCase := postUC.NewGetPostUseCase(postRepo, termRepo, metaRepo, attachmentRepo, appLogger)
	rssUseCase := postUC.NewRSSUseCase(postRepo, metaRepo, attachmentRepo, cfg, appLogger)
	uploadMediaUseCase := mediaUC.NewUploadMediaUseCase(attachmentRepo, uploader, kafkaClient, appLogger)
	listMediaUseCase := mediaUC.NewListMediaUseCase(attachmentRepo)
	renameMediaUseCase := mediaUC.NewRenameMediaUseCase(attachmentRepo, appLogger)
	trashMediaUseCase := mediaUC.NewTrashMediaUseCase(attachmentRepo, appLogger)

	// HTTP Handlers
	handlers := httpAdapter.Handlers{
		Post: httpAdapter.NewPostHandler(
			createPostUseCase,
			listPostsUseCase,
			updatePostStatusUseCase,
			getPostUseCase,
			assignUseCase,
		),
		Media: httpAdapter.NewMediaHandler(
			uploadMediaUseCase,
			listMediaUseCase,
			renameMediaUseCase,
			trashMediaUseCase,
			appLogger,
		),
		RSS: httpAdapter.NewRSSHandler(rssUseCase, appLogger),
	}
	router := httpAdapter.NewRouter(handlers, jwtSvc, appLogger)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Info("Server running", zap.String("port", cfg.App.Port), zap.String("policy", policy.String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("Cannot run server", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
}
