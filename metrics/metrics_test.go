package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTaskOperationsTotal(t *testing.T) {
	before := testutil.ToFloat64(TaskOperationsTotal.WithLabelValues("create"))
	TaskOperationsTotal.WithLabelValues("create").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(TaskOperationsTotal.WithLabelValues("create")))
}

func TestWebSocketConnectionsGauge(t *testing.T) {
	before := testutil.ToFloat64(WebSocketConnections)
	WebSocketConnections.Inc()
	WebSocketConnections.Dec()
	assert.Equal(t, before, testutil.ToFloat64(WebSocketConnections))
}
