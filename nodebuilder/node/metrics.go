package node

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("node")

var startedAt time.Time

// WithMetrics registers the uptime and build info instruments of the node.
func WithMetrics() error {
	startTS, err := meter.Int64ObservableGauge(
		"node_start_time_seconds",
		metric.WithDescription("unix timestamp of node start"),
	)
	if err != nil {
		return err
	}

	uptime, err := meter.Float64ObservableCounter(
		"node_uptime_seconds",
		metric.WithDescription("seconds the node has been up"),
	)
	if err != nil {
		return err
	}

	buildInfo, err := meter.Float64ObservableGauge(
		"build_info",
		metric.WithDescription("build information of the running node"),
	)
	if err != nil {
		return err
	}

	callback := func(_ context.Context, observer metric.Observer) error {
		if startedAt.IsZero() {
			startedAt = time.Now()
		}
		observer.ObserveInt64(startTS, startedAt.Unix())
		observer.ObserveFloat64(uptime, time.Since(startedAt).Seconds())

		info := GetBuildInfo()
		observer.ObserveFloat64(buildInfo, 1,
			metric.WithAttributes(
				attribute.String("semantic_version", info.GetSemanticVersion()),
				attribute.String("last_commit", info.CommitShortSha()),
				attribute.String("golang_version", info.GolangVersion)))
		return nil
	}

	_, err = meter.RegisterCallback(callback, startTS, uptime, buildInfo)
	return err
}
