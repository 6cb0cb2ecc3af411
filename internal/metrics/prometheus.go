package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Agent metrics
	AgentMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgmt_agent_messages_total",
			Help: "Total number of deliveries handled by agents",
		},
		[]string{"agent", "outcome"}, // outcome: processed|domain_error|decode_error|panic
	)

	AgentProcessing = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetmgmt_agent_processing_seconds",
			Help:    "Time spent in ProcessMessage",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"agent"},
	)

	StatusUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgmt_status_updates_total",
			Help: "Status updates emitted by agents",
		},
		[]string{"agent", "status"},
	)

	SummarizerSkips = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgmt_summarizer_skipped_total",
			Help: "Summary triggers dropped without a status update",
		},
		[]string{"reason"},
	)

	// Transport metrics
	Publishes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgmt_publish_total",
			Help: "Messages published to the broker",
		},
		[]string{"topic", "status"}, // status: success|error
	)

	KafkaMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgmt_kafka_messages_total",
			Help: "Kafka records delivered through the bridge",
		},
		[]string{"topic", "status"}, // status: http status code
	)

	// Provider metrics
	ProviderCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgmt_provider_calls_total",
			Help: "Market data provider requests",
		},
		[]string{"provider", "endpoint", "status"}, // status: success|error|rate_limited
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetmgmt_provider_latency_seconds",
			Help:    "Market data provider request latency",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider", "endpoint"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgmt_cache_lookups_total",
			Help: "Market data cache lookups",
		},
		[]string{"result"}, // result: hit|miss|error
	)

	// Model metrics
	LLMCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgmt_llm_calls_total",
			Help: "Language model generation calls",
		},
		[]string{"backend", "model", "status"}, // status: success|error|empty
	)

	LLMLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetmgmt_llm_latency_seconds",
			Help:    "Language model generation latency",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"backend", "model"},
	)

	EmbeddingCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgmt_embedding_calls_total",
			Help: "Embedding generation calls",
		},
		[]string{"provider", "status"},
	)

	// Storage metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgmt_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"database", "operation", "status"},
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assetmgmt_db_query_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"database", "operation"},
	)

	ArtifactWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assetmgmt_artifact_writes_total",
			Help: "Report artifacts written",
		},
		[]string{"backend", "status"},
	)

	// Dashboard metrics
	DashboardClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "assetmgmt_dashboard_clients",
			Help: "Connected dashboard websocket clients",
		},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(AgentMessages)
	prometheus.MustRegister(AgentProcessing)
	prometheus.MustRegister(StatusUpdates)
	prometheus.MustRegister(SummarizerSkips)

	prometheus.MustRegister(Publishes)
	prometheus.MustRegister(KafkaMessages)

	prometheus.MustRegister(ProviderCalls)
	prometheus.MustRegister(ProviderLatency)
	prometheus.MustRegister(CacheLookups)

	prometheus.MustRegister(LLMCalls)
	prometheus.MustRegister(LLMLatency)
	prometheus.MustRegister(EmbeddingCalls)

	prometheus.MustRegister(DBQueries)
	prometheus.MustRegister(DBQueryDuration)
	prometheus.MustRegister(ArtifactWrites)

	prometheus.MustRegister(DashboardClients)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordAgentMessage records one handled delivery
func RecordAgentMessage(agent, outcome string, duration time.Duration) {
	AgentMessages.WithLabelValues(agent, outcome).Inc()
	AgentProcessing.WithLabelValues(agent).Observe(duration.Seconds())
}

// RecordPublish records a broker publish
func RecordPublish(topic string, err error) {
	Publishes.WithLabelValues(topic, status(err)).Inc()
}

// RecordProviderCall records a market data provider request
func RecordProviderCall(provider, endpoint string, latency time.Duration, err error, rateLimited bool) {
	s := status(err)
	if rateLimited {
		s = "rate_limited"
	}
	ProviderCalls.WithLabelValues(provider, endpoint, s).Inc()
	ProviderLatency.WithLabelValues(provider, endpoint).Observe(latency.Seconds())
}

// RecordLLMCall records a generation call. An empty response is counted separately.
func RecordLLMCall(backend, model string, latency time.Duration, err error, empty bool) {
	s := status(err)
	if err == nil && empty {
		s = "empty"
	}
	LLMCalls.WithLabelValues(backend, model, s).Inc()
	LLMLatency.WithLabelValues(backend, model).Observe(latency.Seconds())
}

// RecordEmbedding records an embedding call
func RecordEmbedding(provider string, err error) {
	EmbeddingCalls.WithLabelValues(provider, status(err)).Inc()
}

// RecordDBQuery records a database query
func RecordDBQuery(database, operation string, duration time.Duration, err error) {
	DBQueries.WithLabelValues(database, operation, status(err)).Inc()
	DBQueryDuration.WithLabelValues(database, operation).Observe(duration.Seconds())
}

// RecordArtifactWrite records a report artifact write
func RecordArtifactWrite(backend string, err error) {
	ArtifactWrites.WithLabelValues(backend, status(err)).Inc()
}
