package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"

	"github.com/rotkonetworks/kagome/logs"
	"github.com/rotkonetworks/kagome/nodebuilder"
)

const (
	LogLevelFlag       = "log.level"
	LogLevelModuleFlag = "log.level.module"

	pprofFlag = "pprof"

	tracingFlag         = "tracing"
	tracingEndpointFlag = "tracing.endpoint"
	tracingTLSFlag      = "tracing.tls"

	metricsFlag         = "metrics"
	metricsEndpointFlag = "metrics.endpoint"
	metricsTLSFlag      = "metrics.tls"

	pyroscopeFlag         = "pyroscope"
	pyroscopeTracingFlag  = "pyroscope.tracing"
	pyroscopeEndpointFlag = "pyroscope.endpoint"
)

// MiscFlags declares the logging and observability flags every command
// carries.
func MiscFlags() *flag.FlagSet {
	flags := &flag.FlagSet{}

	flags.String(
		LogLevelFlag,
		"INFO",
		"One of DEBUG, INFO, WARN, ERROR, DPANIC, PANIC, FATAL, case-insensitive",
	)

	flags.StringSlice(
		LogLevelModuleFlag,
		nil,
		"Per-module override in the form <module>:<level>, e.g. pubsub:debug",
	)

	flags.Bool(
		pprofFlag,
		false,
		"Serves runtime profiles (pprof) on port 6000",
	)

	flags.Bool(
		tracingFlag,
		false,
		"Exports OTLP traces over HTTP",
	)

	flags.String(
		tracingEndpointFlag,
		"localhost:4318",
		"Collector endpoint to export OTLP traces to, needs '--tracing'",
	)

	flags.Bool(
		tracingTLSFlag,
		true,
		"Talk TLS to the tracing collector",
	)

	flags.Bool(
		metricsFlag,
		false,
		"Exports OTLP metrics over HTTP",
	)

	flags.String(
		metricsEndpointFlag,
		"localhost:4318",
		"Collector endpoint to export OTLP metrics to, needs '--metrics'",
	)

	flags.Bool(
		metricsTLSFlag,
		true,
		"Talk TLS to the metrics collector",
	)

	flags.Bool(
		pyroscopeFlag,
		false,
		"Streams continuous profiles to a Pyroscope server",
	)

	flags.Bool(
		pyroscopeTracingFlag,
		false,
		"Attaches span profiles to traces, needs '--tracing' and '--pyroscope'",
	)

	flags.String(
		pyroscopeEndpointFlag,
		"http://localhost:4040",
		"Pyroscope server to push profiles to, needs '--pyroscope'",
	)

	return flags
}

// ParseMiscFlags applies logging levels right away and queues node options
// for everything the flags enable.
func ParseMiscFlags(ctx context.Context, cmd *cobra.Command) (context.Context, error) {
	if err := applyLogLevels(cmd); err != nil {
		return ctx, err
	}

	if mustBool(cmd, pprofFlag) {
		startPprofServer()
	}

	if mustBool(cmd, tracingFlag) {
		opts := []otlptracehttp.Option{
			otlptracehttp.WithCompression(otlptracehttp.GzipCompression),
			otlptracehttp.WithEndpoint(cmd.Flag(tracingEndpointFlag).Value.String()),
		}
		if !mustBool(cmd, tracingTLSFlag) {
			opts = append(opts, otlptracehttp.WithInsecure())
		}

		ctx = WithNodeOptions(ctx, nodebuilder.WithTraces(opts, mustBool(cmd, pyroscopeTracingFlag)))
	}

	if mustBool(cmd, metricsFlag) {
		opts := []otlpmetrichttp.Option{
			otlpmetrichttp.WithCompression(otlpmetrichttp.GzipCompression),
			otlpmetrichttp.WithEndpoint(cmd.Flag(metricsEndpointFlag).Value.String()),
		}
		if !mustBool(cmd, metricsTLSFlag) {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}

		ctx = WithNodeOptions(ctx, nodebuilder.WithMetrics(opts, NodeType(ctx)))
	}

	if mustBool(cmd, pyroscopeFlag) {
		ctx = WithNodeOptions(ctx,
			nodebuilder.WithPyroscope(
				cmd.Flag(pyroscopeEndpointFlag).Value.String(),
				NodeType(ctx),
			),
		)
	}

	return ctx, nil
}

func applyLogLevels(cmd *cobra.Command) error {
	if lvl := cmd.Flag(LogLevelFlag).Value.String(); lvl != "" {
		level, err := logging.LevelFromString(lvl)
		if err != nil {
			return fmt.Errorf("cmd: while parsing '%s': %w", LogLevelFlag, err)
		}
		logs.SetAllLoggers(level)
	}

	modules, err := cmd.Flags().GetStringSlice(LogLevelModuleFlag)
	if err != nil {
		panic(err)
	}
	for _, arg := range modules {
		name, level, ok := strings.Cut(arg, ":")
		if !ok {
			return fmt.Errorf("cmd: %s arg must be in form <module>:<level>, e.g. pubsub:debug",
				LogLevelModuleFlag)
		}

		if err := logging.SetLogLevel(name, level); err != nil {
			return err
		}
	}
	return nil
}

func startPprofServer() {
	// TODO: serve pprof from the RPC server mux instead of a second listener
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
		srv := http.Server{
			Addr:         "0.0.0.0:6000",
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		log.Info("serving pprof on port 6000")
		if err := srv.ListenAndServe(); err != nil {
			log.Fatalw("pprof server failed", "err", err)
		}
	}()
}

// mustBool reads a bool flag that is known to be registered.
func mustBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(err)
	}
	return val
}
