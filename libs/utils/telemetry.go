package utils

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	sdk "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.11.0"
)

const defaultExportInterval = 10 * time.Second

// MetricProviderConfig describes the OTLP push pipeline for a node.
type MetricProviderConfig struct {
	// ServiceNamespace groups instances of one deployment, typically the
	// chain name.
	ServiceNamespace string
	// ServiceName is the node type.
	ServiceName string
	// ServiceInstanceID tells instances apart, typically the peer ID.
	ServiceInstanceID string
	// Interval between metric exports. Zero means 10s.
	Interval time.Duration
	// OTLPOptions configure the HTTP exporter (endpoint, headers, TLS).
	OTLPOptions []otlpmetrichttp.Option
}

// NewMetricProvider builds a meter provider that periodically pushes all
// recorded metrics over OTLP HTTP. Exported payloads are gzip compressed
// unless an option in cfg overrides that.
func NewMetricProvider(ctx context.Context, cfg MetricProviderConfig) (*sdk.MeterProvider, error) {
	opts := append(
		[]otlpmetrichttp.Option{otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression)},
		cfg.OTLPOptions...,
	)
	exp, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	interval := cfg.Interval
	if interval == 0 {
		interval = defaultExportInterval
	}

	identity := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNamespaceKey.String(cfg.ServiceNamespace),
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceInstanceIDKey.String(cfg.ServiceInstanceID),
	)

	provider := sdk.NewMeterProvider(
		sdk.WithReader(sdk.NewPeriodicReader(exp,
			sdk.WithTimeout(interval),
			sdk.WithInterval(interval))),
		sdk.WithResource(identity),
	)
	return provider, nil
}
