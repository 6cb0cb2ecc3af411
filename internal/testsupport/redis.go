package testsupport

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/config"
)

// NewRedisClient creates a redis client for integration tests. Keys under
// prefix are deleted before and after the test.
func NewRedisClient(t *testing.T, cfg config.RedisConfig, prefix string) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("failed to connect to redis: %v", err)
	}

	deletePrefix(ctx, client, prefix)
	t.Cleanup(func() {
		deletePrefix(context.Background(), client, prefix)
		_ = client.Close()
	})

	return client
}

func deletePrefix(ctx context.Context, client *redis.Client, prefix string) {
	iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		_ = client.Del(ctx, iter.Val()).Err()
	}
}
