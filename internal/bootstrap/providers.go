package bootstrap

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/artifacts"
	chclient "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/clickhouse"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/config"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/embeddings"
	errnoop "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/errors/noop"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/errors/sentry"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/kafka"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/llm"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/marketdata"
	pgclient "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/postgres"
	redisclient "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/redis"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents/analyst"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents/coordinator"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents/fetcher"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents/reporter"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents/summarizer"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/api"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/api/dashboard"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/api/health"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/consumers"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	chrepo "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/repository/clickhouse"
	pgrepo "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/repository/postgres"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

const connectTimeout = 15 * time.Second

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	// Tracker first so every derived logger reports to it
	c.ErrorTracker = provideErrorTracker(cfg, logger.Get())
	logger.SetErrorTracker(c.ErrorTracker)

	c.Log = logger.Get().With("agent", cfg.Agent.Name)
	c.Log.Infof("Starting %s (%s) in %s mode", cfg.App.Name, cfg.Agent.Name, cfg.App.Env)

	metrics.Init()
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure connects the data stores the agent role uses
func (c *Container) MustInitInfrastructure() {
	ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
	defer cancel()

	var err error

	if usesWarehouse(c.Config.Agent.Name) {
		c.Log.Info("Connecting to ClickHouse...")
		c.CH, err = chclient.NewClient(ctx, c.Config.ClickHouse)
		if err != nil {
			c.Log.Fatalf("failed to connect clickhouse: %v", err)
		}
		c.Log.Info("✓ ClickHouse connected")
	}

	if storesEmbeddings(c.Config.Agent.Name) && c.Config.Postgres.Enabled() {
		c.Log.Info("Connecting to PostgreSQL...")
		c.PG, err = pgclient.NewClient(ctx, c.Config.Postgres)
		if err != nil {
			c.Log.Fatalf("failed to connect postgres: %v", err)
		}
		c.Log.Info("✓ PostgreSQL connected")
	}

	if c.Config.Agent.Name == config.RoleFinancialMetrics && c.Config.Redis.Enabled() {
		c.Log.Info("Connecting to Redis...")
		c.Redis, err = redisclient.NewClient(ctx, c.Config.Redis)
		if err != nil {
			// The cache is optional: fetch without it
			c.Log.Warnw("Redis unavailable, market data cache disabled", "error", err)
			c.Redis = nil
		} else {
			c.Log.Info("✓ Redis connected")
		}
	}

	if c.CH != nil {
		var pg *sqlx.DB
		if c.PG != nil {
			pg = c.PG.DB()
		}
		metrics.RegisterPipelineCollector(metrics.NewPipelineCollector(c.Log, c.CH.Conn(), pg))
	}
}

// ========================================
// Phase 3: Domain Layer - Repositories
// ========================================

// MustInitRepositories initializes all domain repositories
func (c *Container) MustInitRepositories() {
	if c.CH != nil {
		c.Repos.FinancialMetrics = chrepo.NewFinancialMetricsRepository(c.CH.Conn())
		c.Repos.Insights = chrepo.NewInsightRepository(c.CH.Conn())
		c.Repos.Reports = chrepo.NewReportMetadataRepository(c.CH.Conn())
	}
	if c.PG != nil {
		c.Repos.InsightEmbeddings = pgrepo.NewInsightEmbeddingRepository(c.PG.DB())
	}

	c.Log.Info("✓ Repositories initialized")
}

// ========================================
// Phase 4: External Adapters
// ========================================

// MustInitAdapters initializes external adapters (Kafka, LLM, Embeddings, Market data, Artifacts)
func (c *Container) MustInitAdapters() {
	var err error
	role := c.Config.Agent.Name

	// Kafka
	c.Adapters.KafkaProducer = provideKafkaProducer(c.Config, c.Log)

	switch role {
	case config.RoleNumericalSummarizer, config.RoleReportGenerator, config.RoleNewsAnalyzer:
		c.Adapters.Generator = llm.New(c.Context, c.Config.AI)
	}

	if storesEmbeddings(role) && c.Repos.InsightEmbeddings != nil {
		c.Adapters.EmbeddingProvider = provideEmbeddingProvider(c.Context, c.Config, c.Log)
	}

	if role == config.RoleNewsAnalyzer {
		c.Adapters.Research = marketdata.NewAlphaVantage(marketdata.AlphaVantageConfig{
			BaseURL:    c.Config.MarketData.AlphaVantageURL,
			APIKey:     c.Config.MarketData.AlphaVantageKey,
			HTTPClient: &http.Client{Timeout: c.Config.MarketData.Timeout},
		})
		c.Log.Info("✓ Research source initialized (alphavantage)")
	}

	if role == config.RoleFinancialMetrics {
		sessions := marketdata.NewSessions(c.Config.App.Location())
		provider, err := marketdata.New(c.Config.MarketData, sessions)
		if err != nil {
			c.Log.Fatalf("failed to create market data provider: %v", err)
		}
		if c.Redis != nil {
			provider = marketdata.NewCachedProvider(provider, c.Redis, c.Config.MarketData.CacheTTL)
		}
		c.Adapters.MarketData = provider
		c.Log.Infow("✓ Market data provider initialized",
			"provider", provider.Name(),
			"cached", c.Redis != nil,
		)
	}

	if role == config.RoleReportGenerator {
		c.Adapters.Artifacts, err = artifacts.New(c.Context, c.Config.Artifacts)
		if err != nil {
			c.Log.Fatalf("failed to open artifact store: %v", err)
		}
		c.Log.Infow("✓ Artifact store initialized", "backend", c.Adapters.Artifacts.Backend())
	}
}

// ========================================
// Phase 5: Business Logic
// ========================================

// MustInitBusiness builds the agent selected by AGENT_NAME
func (c *Container) MustInitBusiness() {
	cfg := c.Config
	producer := events.NewPublisher(c.Adapters.KafkaProducer, c.Log.With("component", "publisher"))

	switch cfg.Agent.Name {
	case config.RoleCoordinator:
		c.Business.Agent = coordinator.New(producer, coordinator.Config{
			Topics: coordinator.Topics{
				FinancialDataRequests:      cfg.Topics.FinancialDataRequests,
				NumericalSummariesRequests: cfg.Topics.NumericalSummariesRequests,
				ReportGenerationRequests:   cfg.Topics.ReportGenerationRequests,
				NumericalInsightsProcessed: cfg.Topics.NumericalInsightsProcessed,
				Status:                     cfg.Topics.DashboardUpdates,
			},
			AutoReport:     cfg.Agent.AutoReport,
			AutoReportType: cfg.Agent.AutoReportType,
		})

	case config.RoleFinancialMetrics:
		c.Business.Agent = fetcher.New(
			producer,
			c.Adapters.MarketData,
			c.Repos.FinancialMetrics,
			cfg.Topics.FinancialDataAvailable,
			cfg.Topics.DashboardUpdates,
		)

	case config.RoleNumericalSummarizer:
		s := summarizer.New(
			producer,
			c.Repos.FinancialMetrics,
			c.Repos.Insights,
			c.Adapters.Generator,
			summarizer.Config{
				ProcessedTopic: cfg.Topics.NumericalInsightsProcessed,
				StatusTopic:    cfg.Topics.DashboardUpdates,
				LookbackDays:   cfg.Agent.SummaryLookback,
			},
		)
		if c.Adapters.EmbeddingProvider != nil {
			s.WithEmbeddings(c.Adapters.EmbeddingProvider, c.Repos.InsightEmbeddings)
		}
		c.Business.Agent = s

	case config.RoleReportGenerator:
		c.Business.Agent = reporter.New(
			producer,
			c.Repos.Reports,
			c.Repos.FinancialMetrics,
			c.Repos.Insights,
			c.Adapters.Generator,
			c.Adapters.Artifacts,
			reporter.Config{
				CompletedTopic: cfg.Topics.ReportGenerationCompleted,
				StatusTopic:    cfg.Topics.DashboardUpdates,
				Location:       cfg.App.Location(),
				InsightDays:    cfg.Agent.ReportInsightAge,
			},
		)

	case config.RoleNewsAnalyzer:
		a := analyst.New(producer, c.Adapters.Research, c.Adapters.Generator, analyst.Config{
			GeneratedTopic: cfg.Topics.QualitativeInsightsGenerated,
			StatusTopic:    cfg.Topics.DashboardUpdates,
		})
		if c.Adapters.EmbeddingProvider != nil {
			a.WithEmbeddings(c.Adapters.EmbeddingProvider, c.Repos.InsightEmbeddings)
		}
		c.Business.Agent = a

	case config.RoleDashboardRelay:
		c.Log.Info("✓ Dashboard relay selected, no agent to build")
		return
	}

	c.Business.Handler = agents.NewHandler(c.Business.Agent, events.Codec{AllowEmptyData: cfg.Agent.AllowEmptyData})
	c.Log.Infow("✓ Agent initialized", "agent", c.Business.Agent.Name())
}

// ========================================
// Phase 6: Application Layer
// ========================================

// MustInitApplication wires health checks and the HTTP server
func (c *Container) MustInitApplication() {
	c.Application.HealthHandler = provideHealthHandler(c)

	serverCfg := api.ServerConfig{
		Port:         c.Config.HTTP.Port,
		ServiceName:  c.Config.App.Name + "/" + c.Config.Agent.Name,
		Version:      c.Config.App.Version,
		RouteTimeout: c.Config.HTTP.RouteTimeout,
	}
	if c.Business.Handler != nil {
		serverCfg.Delivery = c.Business.Handler
	}
	if c.Repos.Reports != nil && c.Config.Agent.Name == config.RoleReportGenerator {
		serverCfg.Reports = reporter.NewLookupHandler(c.Repos.Reports)
	}
	if c.Config.Agent.Name == config.RoleDashboardRelay {
		c.Application.DashboardHub = dashboard.NewHub(c.Config.Dashboard.HistorySize)
		serverCfg.Dashboard = c.Application.DashboardHub
	}

	c.Application.HTTPServer = api.NewServer(serverCfg, c.Application.HealthHandler, c.Log)
	c.Log.Info("✓ HTTP server initialized")
}

// ========================================
// Phase 7: Background Processing
// ========================================

// MustInitBackground creates the Kafka consumers feeding the agent
func (c *Container) MustInitBackground() {
	if !c.Config.Kafka.Consume {
		c.Log.Info("Kafka consumption disabled (KAFKA_CONSUME=false)")
		return
	}

	group := c.Config.Kafka.ConsumerGroup(c.Config.Agent.Name)

	if c.Config.Agent.Name == config.RoleDashboardRelay {
		consumer := provideKafkaConsumer(c.Config, c.Config.Topics.DashboardUpdates, c.Log)
		c.Adapters.Consumers = append(c.Adapters.Consumers, consumer)
		c.Background.Consumers = append(c.Background.Consumers, namedService{
			name: "dashboard_updates",
			svc:  consumers.NewDashboardConsumer(consumer, c.Application.DashboardHub, c.Log),
		})
		return
	}

	for _, topic := range subscribedTopics(c.Config) {
		consumer := provideKafkaConsumer(c.Config, topic, c.Log)
		c.Adapters.Consumers = append(c.Adapters.Consumers, consumer)
		c.Background.Consumers = append(c.Background.Consumers, namedService{
			name: topic,
			svc:  consumers.NewDeliveryConsumer(consumer, c.Business.Handler, group, c.Log),
		})
	}
}

// subscribedTopics lists the topics the configured agent reads
func subscribedTopics(cfg *config.Config) []string {
	t := cfg.Topics
	switch cfg.Agent.Name {
	case config.RoleCoordinator:
		topics := []string{t.CoordinatorRequests}
		if cfg.Agent.AutoReport {
			topics = append(topics, t.NumericalInsightsProcessed)
		}
		return topics
	case config.RoleFinancialMetrics:
		return []string{t.FinancialDataRequests}
	case config.RoleNumericalSummarizer:
		return []string{t.FinancialDataAvailable, t.NumericalSummariesRequests}
	case config.RoleReportGenerator:
		return []string{t.ReportGenerationRequests}
	case config.RoleNewsAnalyzer:
		return []string{t.QualitativeDataRequests}
	case config.RoleDashboardRelay:
		return []string{t.DashboardUpdates}
	default:
		return nil
	}
}

// storesEmbeddings reports whether role writes insight vectors to Postgres
func storesEmbeddings(role string) bool {
	return role == config.RoleNumericalSummarizer || role == config.RoleNewsAnalyzer
}

func usesWarehouse(role string) bool {
	switch role {
	case config.RoleFinancialMetrics, config.RoleNumericalSummarizer, config.RoleReportGenerator:
		return true
	default:
		return false
	}
}

// ========================================
// Providers
// ========================================

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment, cfg.App.Version)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

func provideKafkaProducer(cfg *config.Config, log *logger.Logger) *kafka.Producer {
	log.Info("Initializing Kafka producer...")
	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.Kafka.Brokers,
		Source:  cfg.Agent.Name,
	})
	log.Info("✓ Kafka producer initialized")
	return producer
}

func provideKafkaConsumer(cfg *config.Config, topic string, log *logger.Logger) *kafka.Consumer {
	log.Infow("Initializing Kafka consumer", "topic", topic)
	consumer := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Kafka.Brokers,
		GroupID: cfg.Kafka.ConsumerGroup(cfg.Agent.Name),
		Topic:   topic,
	})
	log.Infow("✓ Kafka consumer initialized", "topic", topic)
	return consumer
}

// provideEmbeddingProvider returns nil when no provider is configured or it
// cannot be created; summaries are then stored without vectors.
func provideEmbeddingProvider(ctx context.Context, cfg *config.Config, log *logger.Logger) embeddings.Provider {
	ecfg := embeddings.Config{
		Provider: embeddings.ProviderType(cfg.AI.EmbeddingProvider),
		Model:    cfg.AI.EmbeddingModel,
		Timeout:  cfg.AI.EmbeddingTimeout,
	}
	if !ecfg.Enabled() {
		log.Info("Embeddings disabled (EMBEDDING_PROVIDER empty)")
		return nil
	}

	switch ecfg.Provider {
	case embeddings.ProviderOpenAI:
		ecfg.APIKey = cfg.AI.OpenAIKey
	case embeddings.ProviderGemini:
		ecfg.APIKey = cfg.AI.GeminiKey
	}

	provider, err := embeddings.NewProvider(ctx, ecfg)
	if err != nil {
		log.Warnw("Embedding provider unavailable", "provider", ecfg.Provider, "error", err)
		return nil
	}

	log.Infof("✓ Embedding provider initialized: %s (%d dimensions)", provider.Name(), provider.Dimensions())
	return provider
}

func provideHealthHandler(c *Container) *health.Handler {
	h := health.New(c.Log, c.Config.App.Name+"/"+c.Config.Agent.Name, c.Config.App.Version)

	if c.CH != nil {
		h.Register("clickhouse", c.CH)
	}
	if c.PG != nil {
		h.Register("postgres", c.PG)
	}
	if c.Redis != nil {
		h.Register("redis", c.Redis)
	}
	if gen := c.Adapters.Generator; gen != nil {
		h.Register("llm", health.CheckFunc(func(context.Context) error {
			return llm.Ready(gen)
		}))
	}

	return h
}
