package node

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestWithMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	// re-assign the package variable `meter` from metrics.go
	meter = provider.Meter("test")
	require.NoError(t, WithMetrics())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	require.Len(t, rm.ScopeMetrics, 1)
	names := make([]string, 0, len(rm.ScopeMetrics[0].Metrics))
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names = append(names, m.Name)
	}
	assert.Contains(t, names, "node_start_ts")
	assert.Contains(t, names, "node_runtime_counter_in_seconds")
	assert.Contains(t, names, "build_info")

	// the start timestamp must not be observed again
	var again metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &again))
	for _, m := range again.ScopeMetrics[0].Metrics {
		assert.NotEqual(t, "node_start_ts", m.Name)
	}
}
