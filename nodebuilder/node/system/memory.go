package system

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"
	"go.opentelemetry.io/otel/metric"
)

type memCollector struct {
	total     metric.Float64ObservableGauge
	used      metric.Float64ObservableGauge
	available metric.Float64ObservableGauge
	usage     metric.Float64ObservableGauge
}

func newMemCollector() (*memCollector, error) {
	c := new(memCollector)

	var err error
	if c.total, err = gauge("system_memory_total_bytes", "Physical memory size", "bytes"); err != nil {
		return nil, err
	}
	if c.used, err = gauge("system_memory_used_bytes", "Memory in use", "bytes"); err != nil {
		return nil, err
	}
	if c.available, err = gauge("system_memory_available_bytes", "Memory available for allocation", "bytes"); err != nil {
		return nil, err
	}
	if c.usage, err = gauge("system_memory_usage", "Memory utilization", "percent"); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *memCollector) observables() []metric.Observable {
	return []metric.Observable{c.total, c.used, c.available, c.usage}
}

func (c *memCollector) collect(ctx context.Context, obs metric.Observer) error {
	stat, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return fmt.Errorf("system: read memory stats: %w", err)
	}

	obs.ObserveFloat64(c.total, float64(stat.Total))
	obs.ObserveFloat64(c.used, float64(stat.Used))
	obs.ObserveFloat64(c.available, float64(stat.Available))
	obs.ObserveFloat64(c.usage, stat.UsedPercent)

	return nil
}
