package system

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("node/system")

// collector probes one host resource and reports it through the gauges it
// created on construction.
type collector interface {
	observables() []metric.Observable
	collect(context.Context, metric.Observer) error
}

// Metrics exposes host level readings (cpu, memory, disk, network) as
// OpenTelemetry observable gauges. Probing happens inside the meter callback,
// so nothing is measured unless a meter provider actually scrapes.
type Metrics struct {
	reg metric.Registration
}

// New registers the host collectors on the global meter.
func New() (*Metrics, error) {
	cpu, err := newCPUCollector()
	if err != nil {
		return nil, err
	}
	memory, err := newMemCollector()
	if err != nil {
		return nil, err
	}
	disk, err := newDiskCollector()
	if err != nil {
		return nil, err
	}
	network, err := newNetCollector()
	if err != nil {
		return nil, err
	}

	collectors := []collector{cpu, memory, disk, network}
	var observables []metric.Observable
	for _, c := range collectors {
		observables = append(observables, c.observables()...)
	}

	// Collectors report independently. A failing probe is joined into the
	// callback error instead of cutting the remaining collectors off.
	reg, err := meter.RegisterCallback(func(ctx context.Context, obs metric.Observer) error {
		var errs error
		for _, c := range collectors {
			errs = errors.Join(errs, c.collect(ctx, obs))
		}
		return errs
	}, observables...)
	if err != nil {
		return nil, fmt.Errorf("system: register collect callback: %w", err)
	}

	return &Metrics{reg: reg}, nil
}

// Stop detaches the collectors from the meter.
func (m *Metrics) Stop() error {
	return m.reg.Unregister()
}

func gauge(name, desc, unit string) (metric.Float64ObservableGauge, error) {
	g, err := meter.Float64ObservableGauge(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit))
	if err != nil {
		return nil, fmt.Errorf("system: create gauge %s: %w", name, err)
	}
	return g, nil
}
