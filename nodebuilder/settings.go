package nodebuilder

import (
	"context"
	"fmt"

	otelpyroscope "github.com/grafana/otel-profiling-go"
	"github.com/grafana/pyroscope-go"
	"github.com/libp2p/go-libp2p/core/peer"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.11.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/rotkonetworks/kagome/libs/utils"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
	sysmetrics "github.com/rotkonetworks/kagome/nodebuilder/node/system"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
	"github.com/rotkonetworks/kagome/nodebuilder/peers"
)

// WithNetwork specifies the Network to which the Node should connect to.
// WARNING: Use this option with caution and never run the Node with different networks over the
// same persisted Store.
func WithNetwork(net p2p.Network) fx.Option {
	return fx.Replace(net)
}

// WithBootstrappers sets custom bootstrap peers.
func WithBootstrappers(peers p2p.Bootstrappers) fx.Option {
	return fx.Replace(peers)
}

// WithPyroscope enables continuous profiling for the node, streaming profiles
// to the given pyroscope endpoint.
func WithPyroscope(endpoint string, nodeType node.Type) fx.Option {
	return fx.Options(
		fx.Invoke(func(peerID peer.ID) error {
			_, err := pyroscope.Start(pyroscope.Config{
				ApplicationName: "kagome.node",
				ServerAddress:   endpoint,
				Logger:          nil,
				Tags: map[string]string{
					"type":   nodeType.String(),
					"peerId": peerID.String(),
				},
				ProfileTypes: []pyroscope.ProfileType{
					pyroscope.ProfileCPU,
					pyroscope.ProfileAllocObjects,
					pyroscope.ProfileAllocSpace,
					pyroscope.ProfileInuseObjects,
					pyroscope.ProfileInuseSpace,
					pyroscope.ProfileGoroutines,
				},
			})
			return err
		}),
	)
}

// WithMetrics enables metrics exporting for the node.
func WithMetrics(metricOpts []otlpmetrichttp.Option, nodeType node.Type) fx.Option {
	switch nodeType {
	case node.Full, node.Authority:
	default:
		panic("invalid node type")
	}

	return fx.Options(
		fx.Supply(metricOpts),
		fx.Invoke(initializeMetrics),
		fx.Invoke(initializeSystemMetrics),
		fx.Invoke(node.WithMetrics),
		peers.WithMetrics(),
	)
}

// initializeMetrics initializes the global meter provider.
func initializeMetrics(
	ctx context.Context,
	lc fx.Lifecycle,
	peerID peer.ID,
	nodeType node.Type,
	network p2p.Network,
	opts []otlpmetrichttp.Option,
) error {
	provider, err := utils.NewMetricProvider(ctx, utils.MetricProviderConfig{
		ServiceNamespace:  network.String(),
		ServiceName:       nodeType.String(),
		ServiceInstanceID: peerID.String(),
		OTLPOptions:       opts,
	})
	if err != nil {
		return err
	}

	err = runtime.Start(runtime.WithMeterProvider(provider))
	if err != nil {
		return fmt.Errorf("start runtime metrics: %w", err)
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return provider.Shutdown(ctx)
		},
	})
	otel.SetMeterProvider(provider)
	return nil
}

// initializeSystemMetrics starts the host level collectors (cpu, memory, disk,
// network) and unregisters them on shutdown.
func initializeSystemMetrics(lc fx.Lifecycle) error {
	metrics, err := sysmetrics.New()
	if err != nil {
		return err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return metrics.Stop()
		},
	})
	return nil
}

// WithTraces enables exporting of OTLP traces from the node. With profiling
// enabled the tracer provider is wrapped so exported spans link to their
// pyroscope profiles.
func WithTraces(opts []otlptracehttp.Option, profiling bool) fx.Option {
	return fx.Options(
		fx.Supply(opts),
		fx.Invoke(func(
			ctx context.Context,
			nodeType node.Type,
			network p2p.Network,
			peerID peer.ID,
			opts []otlptracehttp.Option,
		) error {
			return initializeTraces(ctx, nodeType, network, peerID, opts, profiling)
		}),
	)
}

func initializeTraces(
	ctx context.Context,
	nodeType node.Type,
	network p2p.Network,
	peerID peer.ID,
	opts []otlptracehttp.Option,
	profiling bool,
) error {
	exp, err := otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	if err != nil {
		return fmt.Errorf("creating OTLP trace exporter: %w", err)
	}

	var tp trace.TracerProvider
	tp = tracesdk.NewTracerProvider(
		tracesdk.WithSampler(tracesdk.AlwaysSample()),
		// Always be sure to batch in production.
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNamespaceKey.String(network.String()),
			semconv.ServiceNameKey.String(nodeType.String()),
			semconv.ServiceInstanceIDKey.String(peerID.String()),
		)),
	)
	if profiling {
		tp = otelpyroscope.NewTracerProvider(tp)
	}

	otel.SetTracerProvider(tp)
	return nil
}
