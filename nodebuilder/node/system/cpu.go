package system

import (
	"context"
	"errors"
	"fmt"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/load"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type cpuCollector struct {
	usage   metric.Float64ObservableGauge
	load1   metric.Float64ObservableGauge
	load5   metric.Float64ObservableGauge
	load15  metric.Float64ObservableGauge
	threads metric.Int64ObservableGauge

	// hostAttrs carries the cpu model and vendor, probed once at startup.
	hostAttrs metric.MeasurementOption
}

func newCPUCollector() (*cpuCollector, error) {
	c := new(cpuCollector)

	var err error
	if c.usage, err = gauge("system_cpu_usage", "Aggregate cpu utilization", "percent"); err != nil {
		return nil, err
	}
	if c.load1, err = gauge("system_cpu_load1", "Load average over 1 minute", "load"); err != nil {
		return nil, err
	}
	if c.load5, err = gauge("system_cpu_load5", "Load average over 5 minutes", "load"); err != nil {
		return nil, err
	}
	if c.load15, err = gauge("system_cpu_load15", "Load average over 15 minutes", "load"); err != nil {
		return nil, err
	}
	c.threads, err = meter.Int64ObservableGauge("system_cpu_threads",
		metric.WithDescription("Logical cpu count"),
		metric.WithUnit("threads"))
	if err != nil {
		return nil, fmt.Errorf("system: create gauge system_cpu_threads: %w", err)
	}

	info, err := cpu.Info()
	if err != nil {
		return nil, fmt.Errorf("system: probe cpu info: %w", err)
	}
	if len(info) == 0 {
		return nil, errors.New("system: no cpu info reported")
	}
	c.hostAttrs = metric.WithAttributes(
		attribute.String("model", info[0].ModelName),
		attribute.String("vendor", info[0].VendorID),
	)

	return c, nil
}

func (c *cpuCollector) observables() []metric.Observable {
	return []metric.Observable{c.usage, c.load1, c.load5, c.load15, c.threads}
}

func (c *cpuCollector) collect(ctx context.Context, obs metric.Observer) error {
	busy, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return fmt.Errorf("system: read cpu utilization: %w", err)
	}
	if len(busy) > 0 {
		obs.ObserveFloat64(c.usage, busy[0])
	}

	avg, err := load.AvgWithContext(ctx)
	if err != nil {
		return fmt.Errorf("system: read load average: %w", err)
	}
	obs.ObserveFloat64(c.load1, avg.Load1)
	obs.ObserveFloat64(c.load5, avg.Load5)
	obs.ObserveFloat64(c.load15, avg.Load15)

	threads, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return fmt.Errorf("system: count cpu threads: %w", err)
	}
	obs.ObserveInt64(c.threads, int64(threads), c.hostAttrs)

	return nil
}
