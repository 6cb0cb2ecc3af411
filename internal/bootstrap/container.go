package bootstrap

import (
	"context"
	"sync"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/artifacts"
	chclient "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/clickhouse"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/config"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/embeddings"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/kafka"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/llm"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/marketdata"
	pgclient "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/postgres"
	redisclient "github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/adapters/redis"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/api"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/api/dashboard"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/api/health"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/financial"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/insight"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/domain/report"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// Container wires one agent process. The role in Config.Agent.Name decides
// which stores, adapters and consumers get built; everything else stays nil.
type Container struct {
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	PG    *pgclient.Client // insight embeddings (summarizer, news analyzer)
	CH    *chclient.Client
	Redis *redisclient.Client // quote cache for the fetcher

	Repos       *Repositories
	Adapters    *Adapters
	Business    *Business
	Application *Application
	Background  *Background

	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Repositories are the warehouse tables the agents read and write
type Repositories struct {
	FinancialMetrics  financial.Repository
	Insights          insight.Repository
	Reports           report.Repository
	InsightEmbeddings insight.EmbeddingStore
}

// Adapters are clients for systems outside the process
type Adapters struct {
	KafkaProducer *kafka.Producer
	Consumers     []*kafka.Consumer

	Generator         llm.Generator
	EmbeddingProvider embeddings.Provider
	MarketData        marketdata.Provider
	Research          *marketdata.AlphaVantage // news analyzer only
	Artifacts         artifacts.Store
}

// Business is the agent this process runs and its envelope handler
type Business struct {
	Agent   agents.Agent
	Handler *agents.Handler
}

// Application is the HTTP surface
type Application struct {
	HTTPServer    *api.Server
	HealthHandler *health.Handler
	DashboardHub  *dashboard.Hub
}

// Background holds the topic consumers started by Start
type Background struct {
	Consumers []namedService
}

type namedService struct {
	name string
	svc  interface{ Start(context.Context) error }
}

func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Repos:       &Repositories{},
		Adapters:    &Adapters{},
		Business:    &Business{},
		Application: &Application{},
		Background:  &Background{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInit builds every layer bottom-up and panics on the first failure
func (c *Container) MustInit() {
	for _, step := range []func(){
		c.MustInitConfig,
		c.MustInitInfrastructure,
		c.MustInitRepositories,
		c.MustInitAdapters,
		c.MustInitBusiness,
		c.MustInitApplication,
		c.MustInitBackground,
	} {
		step()
	}
}

// Start launches the dashboard hub, the consumers and the HTTP server.
// A server failure cancels the container context.
func (c *Container) Start() error {
	agent := c.Config.Agent.Name
	c.Log.Infow("Starting agent...", "agent", agent)

	if hub := c.Application.DashboardHub; hub != nil {
		c.goRun(func() { hub.Run(c.Context) })
	}

	c.runConsumers()

	c.goRun(func() {
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorw("HTTP server stopped", "error", err)
			c.Cancel()
		}
	})

	c.Log.Infow("✓ Agent operational", "agent", agent, "port", c.Config.HTTP.Port)
	return nil
}

func (c *Container) runConsumers() {
	if len(c.Background.Consumers) == 0 {
		c.Log.Info("Kafka consumption disabled, accepting push deliveries only")
		return
	}

	names := make([]string, 0, len(c.Background.Consumers))
	for _, bg := range c.Background.Consumers {
		bg := bg
		names = append(names, bg.name)
		c.goRun(func() {
			if err := bg.svc.Start(c.Context); err != nil && c.Context.Err() == nil {
				c.Log.Errorw("Consumer stopped", "consumer", bg.name, "error", err)
			}
		})
	}

	c.Log.Infow("✓ Event consumers started", "consumers", names)
}

// goRun runs fn in a goroutine tracked by the container wait group
func (c *Container) goRun(fn func()) {
	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		fn()
	}()
}

// Shutdown stops everything Start launched and releases the stores
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")

	c.Lifecycle.Shutdown(c.WG, c.Cancel, resources{
		server:    c.Application.HTTPServer,
		consumers: c.Adapters.Consumers,
		producer:  c.Adapters.KafkaProducer,
		artifacts: c.Adapters.Artifacts,
		pg:        c.PG,
		ch:        c.CH,
		redis:     c.Redis,
		tracker:   c.ErrorTracker,
	}, c.Log)
}
