package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/uuid"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/config"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/kafka"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/marketdata"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents/coordinator"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

func main() {
	// Parse flags
	tickers := flag.String("tickers", "", "Comma separated tickers (default: NIFTY 50)")
	prefix := flag.String("request-prefix", "backfill", "Prefix for generated request ids")
	delay := flag.Duration("delay", 15*time.Second, "Pause between published requests")
	dryRun := flag.Bool("dry-run", false, "Log the requests without publishing")
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

	log := logger.Get().With("component", "backfill")

	universe := marketdata.Nifty50
	if *tickers != "" {
		universe = marketdata.ParseTickers(*tickers)
	}
	requests := buildRequests(universe, *prefix, uuid.NewString)

	log.Infow("Starting backfill",
		"tickers", len(requests),
		"topic", cfg.Topics.CoordinatorRequests,
		"dry_run", *dryRun,
	)

	if *dryRun {
		for _, req := range requests {
			log.Infow("Would publish", "request_id", req.RequestID, "ticker", req.Payload["ticker"])
		}
		log.Info("✅ Dry-run mode: requests validated")
		return
	}

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Source:  "backfill",
	})
	defer producer.Close()

	ctx := context.Background()
	published := 0
	for i, req := range requests {
		if i > 0 && *delay > 0 {
			time.Sleep(*delay)
		}

		payload, err := events.Encode(req)
		if err != nil {
			log.Errorw("Failed to encode request", "request_id", req.RequestID, "error", err)
			continue
		}
		if err := producer.Publish(ctx, cfg.Topics.CoordinatorRequests, req.RequestID, payload); err != nil {
			log.Errorw("Failed to publish request", "request_id", req.RequestID, "error", err)
			continue
		}

		published++
		log.Infow("Request published",
			"step", i+1,
			"total", len(requests),
			"request_id", req.RequestID,
			"ticker", req.Payload["ticker"],
		)
	}

	log.Infow("✅ Backfill finished", "published", published, "failed", len(requests)-published)
}

// buildRequests creates one financial_metrics coordinator request per ticker
func buildRequests(tickers []string, prefix string, newID func() string) []coordinator.Request {
	requests := make([]coordinator.Request, 0, len(tickers))
	for _, ticker := range tickers {
		requests = append(requests, coordinator.Request{
			RequestType: coordinator.TypeFinancialMetrics,
			Payload:     map[string]any{"ticker": ticker},
			RequestID:   prefix + "-" + newID(),
		})
	}
	return requests
}
