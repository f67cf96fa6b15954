package system

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
	"go.opentelemetry.io/otel/metric"
)

// diskCollector watches the root filesystem.
type diskCollector struct {
	total metric.Float64ObservableGauge
	used  metric.Float64ObservableGauge
	free  metric.Float64ObservableGauge
	usage metric.Float64ObservableGauge
}

func newDiskCollector() (*diskCollector, error) {
	c := new(diskCollector)

	var err error
	if c.total, err = gauge("system_disk_total_bytes", "Root filesystem size", "bytes"); err != nil {
		return nil, err
	}
	if c.used, err = gauge("system_disk_used_bytes", "Root filesystem space in use", "bytes"); err != nil {
		return nil, err
	}
	if c.free, err = gauge("system_disk_free_bytes", "Root filesystem space left", "bytes"); err != nil {
		return nil, err
	}
	if c.usage, err = gauge("system_disk_usage", "Root filesystem utilization", "percent"); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *diskCollector) observables() []metric.Observable {
	return []metric.Observable{c.total, c.used, c.free, c.usage}
}

func (c *diskCollector) collect(ctx context.Context, obs metric.Observer) error {
	stat, err := disk.UsageWithContext(ctx, "/")
	if err != nil {
		return fmt.Errorf("system: read disk usage: %w", err)
	}

	obs.ObserveFloat64(c.total, float64(stat.Total))
	obs.ObserveFloat64(c.used, float64(stat.Used))
	obs.ObserveFloat64(c.free, float64(stat.Free))
	obs.ObserveFloat64(c.usage, stat.UsedPercent)

	return nil
}
