package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// Agent roles selectable with AGENT_NAME
const (
	RoleCoordinator         = "coordinator"
	RoleFinancialMetrics    = "financial_metrics"
	RoleNumericalSummarizer = "numerical_summarizer"
	RoleReportGenerator     = "report_generator"
	RoleDashboardRelay      = "dashboard_relay"
	RoleNewsAnalyzer        = "news_analyzer"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Agent         AgentConfig
	Kafka         KafkaConfig
	Topics        TopicsConfig
	ClickHouse    ClickHouseConfig
	Postgres      PostgresConfig
	Redis         RedisConfig
	AI            AIConfig
	MarketData    MarketDataConfig
	Artifacts     ArtifactsConfig
	Dashboard     DashboardConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name           string `envconfig:"APP_NAME" default:"asset-management-adk"`
	Env            string `envconfig:"APP_ENV" default:"development"`
	Version        string `envconfig:"APP_VERSION" default:"dev"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	Debug          bool   `envconfig:"DEBUG" default:"false"`
	MarketTimezone string `envconfig:"MARKET_TIMEZONE" default:"Asia/Kolkata"`
}

// Location resolves MarketTimezone, falling back to UTC
func (c AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.MarketTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type HTTPConfig struct {
	Port         int           `envconfig:"PORT" default:"8080"`
	RouteTimeout time.Duration `envconfig:"HTTP_ROUTE_TIMEOUT" default:"10s"`
}

type AgentConfig struct {
	Name             string `envconfig:"AGENT_NAME"`
	AllowEmptyData   bool   `envconfig:"ENVELOPE_ALLOW_EMPTY_DATA" default:"false"`
	AutoReport       bool   `envconfig:"COORDINATOR_AUTO_REPORT" default:"true"`
	AutoReportType   string `envconfig:"COORDINATOR_AUTO_REPORT_TYPE" default:"Executive Summary"`
	SummaryLookback  int    `envconfig:"SUMMARY_LOOKBACK_DAYS" default:"30"`
	ReportInsightAge int    `envconfig:"REPORT_INSIGHT_DAYS" default:"7"`
}

type KafkaConfig struct {
	Brokers []string `envconfig:"KAFKA_BROKERS" required:"true"`
	GroupID string   `envconfig:"KAFKA_GROUP_ID"`
	Consume bool     `envconfig:"KAFKA_CONSUME" default:"true"`
}

// ConsumerGroup returns the configured group or one derived from the agent name
func (c KafkaConfig) ConsumerGroup(agent string) string {
	if c.GroupID != "" {
		return c.GroupID
	}
	return "adk-" + agent
}

type TopicsConfig struct {
	CoordinatorRequests        string `envconfig:"TOPIC_COORDINATOR_REQUESTS" default:"coordinator-requests-topic"`
	FinancialDataRequests      string `envconfig:"TOPIC_FINANCIAL_DATA_REQUESTS" default:"financial-data-requests-topic"`
	FinancialDataAvailable     string `envconfig:"TOPIC_FINANCIAL_DATA_AVAILABLE" default:"financial-data-available-topic"`
	NumericalSummariesRequests string `envconfig:"TOPIC_NUMERICAL_SUMMARIES_REQUESTS" default:"numerical-summaries-requests-topic"`
	NumericalInsightsProcessed string `envconfig:"TOPIC_NUMERICAL_INSIGHTS_PROCESSED" default:"numerical-insights-processed-topic"`
	ReportGenerationRequests   string `envconfig:"TOPIC_REPORT_GENERATION_REQUESTS" default:"report-generation-requests-topic"`
	ReportGenerationCompleted  string `envconfig:"TOPIC_REPORT_GENERATION_COMPLETED" default:"report-generation-completed-topic"`
	DashboardUpdates           string `envconfig:"TOPIC_DASHBOARD_UPDATES" default:"dashboard-updates-topic"`

	QualitativeDataRequests      string `envconfig:"TOPIC_QUALITATIVE_DATA_REQUESTS" default:"qualitative-data-request-topic"`
	QualitativeInsightsGenerated string `envconfig:"TOPIC_QUALITATIVE_INSIGHTS_GENERATED" default:"qualitative-insights-generated-topic"`
}

// All lists every pipeline topic
func (t TopicsConfig) All() []string {
	return []string{
		t.CoordinatorRequests,
		t.FinancialDataRequests,
		t.FinancialDataAvailable,
		t.NumericalSummariesRequests,
		t.NumericalInsightsProcessed,
		t.ReportGenerationRequests,
		t.ReportGenerationCompleted,
		t.DashboardUpdates,
		t.QualitativeDataRequests,
		t.QualitativeInsightsGenerated,
	}
}

type ClickHouseConfig struct {
	Host     string `envconfig:"CLICKHOUSE_HOST"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"asset_management"`
}

type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"postgres"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB" default:"asset_management"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"10"`
}

// Enabled reports whether the embedding store is configured
func (c PostgresConfig) Enabled() bool {
	return c.Host != ""
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Enabled reports whether a cache is configured
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AIConfig struct {
	Provider        string  `envconfig:"LLM_PROVIDER" default:"gemini"`
	GeminiKey       string  `envconfig:"GEMINI_API_KEY"`
	GeminiModel     string  `envconfig:"GEMINI_MODEL" default:"gemini-1.5-flash"`
	UseVertex       bool    `envconfig:"GEMINI_USE_VERTEX" default:"false"`
	Project         string  `envconfig:"GOOGLE_CLOUD_PROJECT"`
	Location        string  `envconfig:"GOOGLE_CLOUD_LOCATION" default:"asia-south1"`
	OpenAIKey       string  `envconfig:"OPENAI_API_KEY"`
	OpenAIModel     string  `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	Temperature     float32 `envconfig:"LLM_TEMPERATURE" default:"0.7"`
	MaxOutputTokens int32   `envconfig:"LLM_MAX_OUTPUT_TOKENS" default:"1024"`

	EmbeddingProvider string        `envconfig:"EMBEDDING_PROVIDER"`
	EmbeddingModel    string        `envconfig:"EMBEDDING_MODEL"`
	EmbeddingTimeout  time.Duration `envconfig:"EMBEDDING_TIMEOUT" default:"30s"`
}

type MarketDataConfig struct {
	Provider         string        `envconfig:"MARKET_DATA_PROVIDER" default:"alphavantage"`
	AlphaVantageKey  string        `envconfig:"ALPHA_VANTAGE_API_KEY"`
	AlphaVantageURL  string        `envconfig:"ALPHA_VANTAGE_BASE_URL" default:"https://www.alphavantage.co/query"`
	YahooURL         string        `envconfig:"YAHOO_BASE_URL" default:"https://query1.finance.yahoo.com"`
	Timeout          time.Duration `envconfig:"MARKET_DATA_TIMEOUT" default:"30s"`
	CacheTTL         time.Duration `envconfig:"MARKET_DATA_CACHE_TTL" default:"15m"`
}

type ArtifactsConfig struct {
	Backend  string `envconfig:"ARTIFACT_BACKEND" default:"gcs"`
	Bucket   string `envconfig:"GCS_REPORTS_BUCKET"`
	LocalDir string `envconfig:"ARTIFACT_LOCAL_DIR" default:"./artifacts"`
}

type DashboardConfig struct {
	HistorySize int `envconfig:"DASHBOARD_HISTORY_SIZE" default:"100"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"true"`
	Provider    string `envconfig:"ERROR_TRACKING_PROVIDER" default:"sentry"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	cfg, err := LoadShared()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadShared reads the environment without role validation.
// Used by the operational commands, which run without an agent role.
func LoadShared() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	return &cfg, nil
}

// Validate checks the settings the selected agent role depends on
func (c *Config) Validate() error {
	var errs errors.MultiError

	switch c.Agent.Name {
	case RoleCoordinator, RoleDashboardRelay:
	case RoleFinancialMetrics:
		errs.Add(c.requireClickHouse())
		switch c.MarketData.Provider {
		case "alphavantage":
			if c.MarketData.AlphaVantageKey == "" {
				errs.Add(errors.NewValidationError("ALPHA_VANTAGE_API_KEY", "required for the alphavantage provider", nil))
			}
		case "yahoo":
		default:
			errs.Add(errors.NewValidationError("MARKET_DATA_PROVIDER", "unsupported provider", c.MarketData.Provider))
		}
	case RoleNumericalSummarizer:
		errs.Add(c.requireClickHouse())
	case RoleNewsAnalyzer:
		if c.MarketData.AlphaVantageKey == "" {
			errs.Add(errors.NewValidationError("ALPHA_VANTAGE_API_KEY", "required for agent "+c.Agent.Name, nil))
		}
	case RoleReportGenerator:
		errs.Add(c.requireClickHouse())
		switch c.Artifacts.Backend {
		case "gcs":
			if c.Artifacts.Bucket == "" {
				errs.Add(errors.NewValidationError("GCS_REPORTS_BUCKET", "required for the gcs artifact backend", nil))
			}
		case "local":
		default:
			errs.Add(errors.NewValidationError("ARTIFACT_BACKEND", "unsupported backend", c.Artifacts.Backend))
		}
	default:
		errs.Add(errors.NewValidationError("AGENT_NAME", "unknown agent role", c.Agent.Name))
	}

	if err := errs.ToError(); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	return nil
}

func (c *Config) requireClickHouse() error {
	if c.ClickHouse.Host == "" {
		return errors.NewValidationError("CLICKHOUSE_HOST", "required for agent "+c.Agent.Name, nil)
	}
	return nil
}
