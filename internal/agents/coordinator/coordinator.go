package coordinator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
)

// Name is the coordinator's agent name on status updates
const Name = "coordinator"

// Request types accepted on the coordinator topic
const (
	TypeFinancialMetrics = "financial_metrics"
	TypeNumericalSummary = "numerical_summary"
	TypeGenerateReport   = "generate_report"
)

// Topics names the coordinator's outbound topics and the chaining source
type Topics struct {
	FinancialDataRequests      string
	NumericalSummariesRequests string
	ReportGenerationRequests   string
	NumericalInsightsProcessed string
	Status                     string
}

// Config controls routing and workflow chaining
type Config struct {
	Topics Topics
	// AutoReport requests a report whenever insights are announced
	AutoReport     bool
	AutoReportType string
}

// Request is a routing request
type Request struct {
	RequestType string         `json:"request_type"`
	Payload     map[string]any `json:"payload"`
	RequestID   string         `json:"request_id"`
}

// InsightsProcessed is the summarizer's completion trigger
type InsightsProcessed struct {
	Ticker        string `json:"ticker"`
	Date          string `json:"date"`
	InsightsCount int    `json:"insights_count"`
	RequestID     string `json:"request_id"`
}

// ReportRequest is what the coordinator sends when chaining into a report
type ReportRequest struct {
	ReportType    string `json:"report_type"`
	CompanyTicker string `json:"company_ticker"`
	RequestID     string `json:"request_id"`
	ReportDate    string `json:"report_date"`
}

type route struct {
	topic    string
	agent    string
	validate func(payload map[string]any) error
}

// Coordinator validates requests and forwards them to the agent that owns them
type Coordinator struct {
	*agents.Base
	cfg    Config
	routes map[string]route
}

var _ agents.Agent = (*Coordinator)(nil)

// New creates a coordinator publishing through publisher
func New(publisher agents.Publisher, cfg Config) *Coordinator {
	if cfg.AutoReportType == "" {
		cfg.AutoReportType = "Executive Summary"
	}

	return &Coordinator{
		Base: agents.NewBase(Name, publisher, cfg.Topics.Status),
		cfg:  cfg,
		routes: map[string]route{
			TypeFinancialMetrics: {
				topic:    cfg.Topics.FinancialDataRequests,
				agent:    "financial_metrics",
				validate: requireAll("ticker"),
			},
			TypeNumericalSummary: {
				topic:    cfg.Topics.NumericalSummariesRequests,
				agent:    "numerical_summarizer",
				validate: requireAny("ticker", "insight_type"),
			},
			TypeGenerateReport: {
				topic:    cfg.Topics.ReportGenerationRequests,
				agent:    "report_generator",
				validate: both(requireAll("report_type"), requireAny("ticker", "sector")),
			},
		},
	}
}

// ProcessMessage routes a request, or chains into report generation when the
// delivery is an insights notification.
func (c *Coordinator) ProcessMessage(ctx context.Context, msg *agents.Message) error {
	if c.cfg.AutoReport && c.isInsightsNotification(msg) {
		return c.chainReport(ctx, msg)
	}
	return c.route(ctx, msg)
}

// isInsightsNotification matches deliveries from the insights topic, and
// payloads that carry insights_count without a request_type when the push
// subscription dropped the topic attribute.
func (c *Coordinator) isInsightsNotification(msg *agents.Message) bool {
	if c.cfg.Topics.NumericalInsightsProcessed != "" &&
		msg.SourceTopic() == c.cfg.Topics.NumericalInsightsProcessed {
		return true
	}
	_, hasCount := msg.Payload["insights_count"]
	return hasCount && !present(msg.Payload, "request_type")
}

func (c *Coordinator) route(ctx context.Context, msg *agents.Message) error {
	req, err := agents.Decode[Request](msg)
	if err != nil {
		return c.Fail(ctx, stringField(msg.Payload, "request_id"), errors.Wrap(err, "invalid coordinator request"))
	}

	if strings.TrimSpace(req.RequestType) == "" {
		return c.Fail(ctx, req.RequestID, errors.NewValidationError("request_type", "is required", nil))
	}

	r, ok := c.routes[req.RequestType]
	if !ok {
		return c.Fail(ctx, req.RequestID, errors.NewValidationError("request_type", "unknown request type", req.RequestType))
	}

	if err := r.validate(req.Payload); err != nil {
		return c.Fail(ctx, req.RequestID, errors.Wrapf(err, "%s request rejected", req.RequestType))
	}

	forward := c.forwardPayload(req)
	key := stringField(forward, "request_id")

	if err := c.Publish(ctx, r.topic, key, forward); err != nil {
		return c.Fail(ctx, req.RequestID, errors.Wrapf(err, "failed to forward %s request", req.RequestType))
	}

	c.Log().Infow("Request routed",
		"request_id", req.RequestID,
		"request_type", req.RequestType,
		"topic", r.topic,
	)
	c.PublishStatus(ctx, events.StatusUpdate{
		RequestID: req.RequestID,
		Status:    events.StatusRouted,
		Message:   fmt.Sprintf("Request routed to %s agent", r.agent),
	})
	return nil
}

// forwardPayload copies the payload, threading the request id through and
// giving report requests the company_ticker field the generator reads
func (c *Coordinator) forwardPayload(req Request) map[string]any {
	out := make(map[string]any, len(req.Payload)+2)
	for k, v := range req.Payload {
		out[k] = v
	}
	if !present(out, "request_id") && req.RequestID != "" {
		out["request_id"] = req.RequestID
	}
	if req.RequestType == TypeGenerateReport && !present(out, "company_ticker") && present(out, "ticker") {
		out["company_ticker"] = out["ticker"]
	}
	return out
}

func (c *Coordinator) chainReport(ctx context.Context, msg *agents.Message) error {
	done, err := agents.Decode[InsightsProcessed](msg)
	if err != nil || done.Ticker == "" || done.Date == "" {
		c.Log().Warnw("Skipping insights notification without ticker or date",
			"message_id", msg.ID,
			"error", err,
		)
		return nil
	}

	req := ReportRequest{
		ReportType:    c.cfg.AutoReportType,
		CompanyTicker: done.Ticker,
		RequestID:     done.RequestID,
		ReportDate:    done.Date,
	}
	if err := c.Publish(ctx, c.cfg.Topics.ReportGenerationRequests, done.RequestID, req); err != nil {
		return c.Fail(ctx, done.RequestID, errors.Wrapf(err, "failed to request report for %s", done.Ticker))
	}

	c.PublishStatus(ctx, events.StatusUpdate{
		RequestID: done.RequestID,
		Status:    events.StatusCompleted,
		Message:   fmt.Sprintf("Orchestration completed for %s. Report generation initiated.", done.Ticker),
	})
	return nil
}

// present reports whether field exists and is neither null nor a blank string
func present(payload map[string]any, field string) bool {
	v, ok := payload[field]
	if !ok || v == nil {
		return false
	}
	if s, isString := v.(string); isString {
		return strings.TrimSpace(s) != ""
	}
	return true
}

func stringField(payload map[string]any, field string) string {
	s, _ := payload[field].(string)
	return s
}

func requireAll(fields ...string) func(map[string]any) error {
	return func(payload map[string]any) error {
		for _, f := range fields {
			if !present(payload, f) {
				return errors.NewValidationError(f, "is required", nil)
			}
		}
		return nil
	}
}

func requireAny(fields ...string) func(map[string]any) error {
	return func(payload map[string]any) error {
		for _, f := range fields {
			if present(payload, f) {
				return nil
			}
		}
		return errors.NewValidationError(strings.Join(fields, "|"), "one of these fields is required", nil)
	}
}

func both(checks ...func(map[string]any) error) func(map[string]any) error {
	return func(payload map[string]any) error {
		for _, check := range checks {
			if err := check(payload); err != nil {
				return err
			}
		}
		return nil
	}
}
