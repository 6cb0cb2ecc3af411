package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/agents/coordinator"
	"github.com/Ashmit543/AssetManagement-DataAnalytics-ADK/internal/events"
)

func TestBuildRequests(t *testing.T) {
	n := 0
	newID := func() string {
		n++
		return fmt.Sprintf("%d", n)
	}

	reqs := buildRequests([]string{"RELIANCE.NS", "IBM"}, "bf", newID)
	require.Len(t, reqs, 2)

	assert.Equal(t, coordinator.TypeFinancialMetrics, reqs[0].RequestType)
	assert.Equal(t, "bf-1", reqs[0].RequestID)
	assert.Equal(t, "IBM", reqs[1].Payload["ticker"])

	raw, err := events.Encode(reqs[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"request_type":"financial_metrics","payload":{"ticker":"RELIANCE.NS"},"request_id":"bf-1"}`, string(raw))
}
