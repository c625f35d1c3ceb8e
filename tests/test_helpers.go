package tests

import (
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/mansoorceksport/gymcard/internal/config"
	"github.com/mansoorceksport/gymcard/internal/domain"
	"github.com/mansoorceksport/gymcard/internal/membership"
	"github.com/mansoorceksport/gymcard/internal/repository"
	"github.com/mansoorceksport/gymcard/internal/server"
	"github.com/mansoorceksport/gymcard/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const testSecret = "test-secret-key-123"

// testNow is 2016-01-21 in the Ethiopian calendar
var testNow = time.Date(2023, time.October, 2, 9, 30, 0, 0, time.UTC)

// SetupTestDB spins up a fresh MongoDB container and returns the database connection
// along with a cleanup function.
func SetupTestDB(t *testing.T) (*mongo.Database, func()) {
	ctx := context.Background()

	mongodbContainer, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	endpoint, err := mongodbContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	return mongoClient.Database("test_db"), func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
		if err := mongodbContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
}

// offlineFetcher fails every image download so PDFs use their text fallbacks
type offlineFetcher struct{}

func (offlineFetcher) Fetch(context.Context, string) ([]byte, error) {
	return nil, errors.New("offline")
}

// memoryPhotos records uploads in memory
type memoryPhotos struct {
	uploads map[string][]byte
}

func (p *memoryPhotos) Upload(_ context.Context, file []byte, filename, _ string) (string, error) {
	if p.uploads == nil {
		p.uploads = map[string][]byte{}
	}
	p.uploads[filename] = file
	return "https://photos.test/" + filename, nil
}

type testEnv struct {
	App   *fiber.App
	Redis *miniredis.Miniredis
	Store domain.MemberRepository
}

// newTestEnv builds the full app around store, fronted by a miniredis cache and a
// clock frozen at testNow.
func newTestEnv(t *testing.T, store domain.MemberRepository) *testEnv {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	cfg := &config.Config{}
	cfg.Server.BaseURL = "https://cards.test"
	cfg.Server.QRServiceURL = "https://qr.test/create"
	cfg.Server.MaxUploadSizeMB = 2
	cfg.Server.ScanRatePerSec = 100
	cfg.Server.ScanBurst = 100
	cfg.JWT.Secret = testSecret

	members := repository.NewCachedMemberRepository(store, repository.NewRedisCacheRepository(redisClient), time.Minute, nil)

	app := server.NewApp(server.AppDependencies{
		Config:      cfg,
		Members:     members,
		Photos:      &memoryPhotos{},
		RedisClient: redisClient,
		Clock:       membership.ClockFunc(func() time.Time { return testNow }),
		Metrics:     telemetry.NewMetrics(),
		Fetcher:     offlineFetcher{},
	})

	return &testEnv{App: app, Redis: mr, Store: store}
}
