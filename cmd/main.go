package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mansoorceksport/gymcard/internal/config"
	"github.com/mansoorceksport/gymcard/internal/domain"
	"github.com/mansoorceksport/gymcard/internal/logger"
	"github.com/mansoorceksport/gymcard/internal/membership"
	"github.com/mansoorceksport/gymcard/internal/repository"
	"github.com/mansoorceksport/gymcard/internal/server"
	"github.com/mansoorceksport/gymcard/internal/service"
	"github.com/mansoorceksport/gymcard/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	zl.Info("starting gym member card service", zap.String("store", cfg.Store.Driver))

	ctx := context.Background()

	otelProvider, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:  cfg.OTEL.ServiceName,
		Environment:  os.Getenv("APP_ENV"),
		OTLPEndpoint: cfg.OTEL.Endpoint,
		Insecure:     true,
		Enabled:      cfg.OTEL.Enabled,
	}, zl)
	if err != nil {
		zl.Warn("failed to initialize opentelemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelProvider.Shutdown(shutdownCtx); err != nil {
			zl.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	var members domain.MemberRepository
	switch cfg.Store.Driver {
	case config.StoreFirebase:
		app, err := repository.NewFirebaseApp(ctx, cfg.Firebase)
		if err != nil {
			zl.Fatal("failed to initialize firebase", zap.Error(err))
		}
		repo, err := repository.NewFirebaseMemberRepository(ctx, app)
		if err != nil {
			zl.Fatal("failed to open realtime database", zap.Error(err))
		}
		members = repo
		zl.Info("firebase realtime database ready")

	case config.StoreMongo:
		mongoCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		mongoOpts := options.Client().ApplyURI(cfg.MongoDB.URI)
		if cfg.OTEL.Enabled {
			mongoOpts.SetMonitor(otelmongo.NewMonitor())
		}
		client, err := mongo.Connect(mongoCtx, mongoOpts)
		if err != nil {
			zl.Fatal("failed to connect to mongodb", zap.Error(err))
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				zl.Warn("mongodb disconnect", zap.Error(err))
			}
		}()
		if err := client.Ping(mongoCtx, nil); err != nil {
			zl.Fatal("failed to ping mongodb", zap.Error(err))
		}
		members = repository.NewMongoMemberRepository(client.Database(cfg.MongoDB.Database))
		zl.Info("mongodb connected", zap.String("database", cfg.MongoDB.Database))

	default:
		members = repository.NewMemoryMemberRepository()
		zl.Warn("using in-memory member store; data is lost on restart")
	}

	// Redis is optional: it fronts member reads and backs idempotent admin writes
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(ctx).Err(); err != nil {
			zl.Fatal("failed to connect to redis", zap.Error(err))
		}
		cache := repository.NewRedisCacheRepository(redisClient)
		// entries cached by a previous deploy may come from another store driver
		if err := cache.InvalidateMembers(ctx); err != nil {
			zl.Warn("failed to clear member cache", zap.Error(err))
		}
		members = repository.NewCachedMemberRepository(members, cache, cfg.Redis.CacheTTL, zl)
		zl.Info("redis connected", zap.Duration("cache_ttl", cfg.Redis.CacheTTL))
	}

	var photos domain.PhotoRepository
	if cfg.S3.Endpoint != "" {
		s3Repo, err := repository.NewSeaweedS3Repository(ctx, cfg.S3)
		if err != nil {
			zl.Fatal("failed to initialize photo storage", zap.Error(err))
		}
		photos = s3Repo
		zl.Info("photo storage ready", zap.String("bucket", cfg.S3.Bucket))
	}

	clock := membership.SystemClock{}
	metrics := telemetry.NewMetrics()
	refresher := service.NewRemainingRefresher(members, membership.NewCalculator(clock), metrics, zl)
	if cfg.Refresh.Schedule != "" {
		if err := refresher.Start(cfg.Refresh.Schedule); err != nil {
			zl.Fatal("invalid refresh schedule", zap.String("schedule", cfg.Refresh.Schedule), zap.Error(err))
		}
		defer refresher.Stop()
	}

	app := server.NewApp(server.AppDependencies{
		Config:      cfg,
		Members:     members,
		Photos:      photos,
		RedisClient: redisClient,
		Clock:       clock,
		Logger:      zl,
		Metrics:     metrics,
		Refresher:   refresher,
	})

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		zl.Info("shutting down gracefully")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zl.Warn("server shutdown", zap.Error(err))
		}
	}()

	zl.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}
}
