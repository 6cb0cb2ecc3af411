package main

import (
	"context"
	"flag"
	"time"

	chclient "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/clickhouse"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/config"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/kafka"
	pgclient "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/postgres"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

func main() {
	// Parse flags
	withTopics := flag.Bool("topics", true, "Create the pipeline Kafka topics")
	withClickHouse := flag.Bool("clickhouse", true, "Apply the ClickHouse schema")
	withPostgres := flag.Bool("postgres", true, "Apply the embedding schema when POSTGRES_HOST is set")
	partitions := flag.Int("partitions", 3, "Partitions per created topic")
	replication := flag.Int("replication", 1, "Replication factor per created topic")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall migration timeout")
	flag.Parse()

	// Load config
	cfg, err := config.LoadShared()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get().With("component", "migrate")
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *withTopics {
		specs := make([]kafka.TopicSpec, 0, len(cfg.Topics.All()))
		for _, name := range cfg.Topics.All() {
			specs = append(specs, kafka.TopicSpec{
				Name:              name,
				Partitions:        *partitions,
				ReplicationFactor: *replication,
			})
		}
		if err := kafka.EnsureTopics(ctx, cfg.Kafka.Brokers, specs); err != nil {
			log.Fatalf("Failed to create topics: %v", err)
		}
		log.Infow("✅ Kafka topics ready", "topics", cfg.Topics.All())
	}

	if *withClickHouse {
		ch, err := chclient.NewClient(ctx, cfg.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to connect to ClickHouse: %v", err)
		}
		defer ch.Close()

		if err := ch.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate ClickHouse: %v", err)
		}
		log.Infow("✅ ClickHouse schema applied", "tables", len(chclient.Schema))
	}

	if *withPostgres {
		if !cfg.Postgres.Enabled() {
			log.Info("POSTGRES_HOST not set, skipping embedding schema")
			return
		}

		pg, err := pgclient.NewClient(ctx, cfg.Postgres)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer pg.Close()

		if err := pg.Migrate(ctx); err != nil {
			log.Fatalf("Failed to migrate PostgreSQL: %v", err)
		}
		log.Info("✅ Embedding schema applied")
	}
}
