package agents

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/metrics"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/errors"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/pkg/logger"
)

// maxBodyBytes bounds a push delivery body
const maxBodyBytes = 10 << 20

type response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Handler is the push delivery endpoint of an agent. Decoding failures are
// rejected with 400; every decoded delivery is acknowledged with 200 whatever
// the agent did with it.
type Handler struct {
	agent Agent
	codec events.Codec
	log   *logger.Logger
}

// NewHandler creates a delivery handler for agent
func NewHandler(agent Agent, codec events.Codec) *Handler {
	return &Handler{
		agent: agent,
		codec: codec,
		log:   logger.Get().With("component", "delivery_handler", "agent", agent.Name()),
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, response{Status: "error", Message: "method not allowed"})
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{Status: "error", Message: "failed to read body"})
		return
	}

	if err := h.handle(r.Context(), body); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Status: "error", Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response{Status: "success", Message: "Message processed"})
}

// Deliver runs body through the same path as ServeHTTP and returns the status code it would answer with
func (h *Handler) Deliver(ctx context.Context, body []byte) int {
	if err := h.handle(ctx, body); err != nil {
		return http.StatusBadRequest
	}
	return http.StatusOK
}

// handle returns an error only for envelopes that could not be decoded
func (h *Handler) handle(ctx context.Context, body []byte) error {
	start := time.Now()

	d, err := h.codec.DecodeEnvelope(body)
	if err != nil {
		h.log.Warnw("Rejected delivery", "error", err)
		metrics.RecordAgentMessage(h.agent.Name(), "decode_error", time.Since(start))
		return err
	}

	outcome := h.process(ctx, messageFromDelivery(d))
	metrics.RecordAgentMessage(h.agent.Name(), outcome, time.Since(start))
	return nil
}

func (h *Handler) process(ctx context.Context, msg *Message) (outcome string) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Errorw("Agent panicked",
				"message_id", msg.ID,
				"error", errors.Newf("panic: %v", rec),
			)
			outcome = "panic"
		}
	}()

	if err := h.agent.ProcessMessage(ctx, msg); err != nil {
		h.log.Errorw("Message processing failed",
			"message_id", msg.ID,
			"error", err,
		)
		return "domain_error"
	}
	return "processed"
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
