package system

import (
	"context"
	"fmt"

	psnet "github.com/shirou/gopsutil/v3/net"
	"go.opentelemetry.io/otel/metric"
)

type netCollector struct {
	recvBytes   metric.Float64ObservableGauge
	sentBytes   metric.Float64ObservableGauge
	recvPackets metric.Float64ObservableGauge
	sentPackets metric.Float64ObservableGauge
	recvErrs    metric.Float64ObservableGauge
	sentErrs    metric.Float64ObservableGauge
}

func newNetCollector() (*netCollector, error) {
	c := new(netCollector)

	var err error
	if c.recvBytes, err = gauge("system_network_receive_bytes", "Bytes received", "bytes"); err != nil {
		return nil, err
	}
	if c.sentBytes, err = gauge("system_network_transmit_bytes", "Bytes transmitted", "bytes"); err != nil {
		return nil, err
	}
	if c.recvPackets, err = gauge("system_network_receive_packets", "Packets received", "packets"); err != nil {
		return nil, err
	}
	if c.sentPackets, err = gauge("system_network_transmit_packets", "Packets transmitted", "packets"); err != nil {
		return nil, err
	}
	if c.recvErrs, err = gauge("system_network_receive_errors", "Receive errors", "errors"); err != nil {
		return nil, err
	}
	if c.sentErrs, err = gauge("system_network_transmit_errors", "Transmit errors", "errors"); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *netCollector) observables() []metric.Observable {
	return []metric.Observable{
		c.recvBytes,
		c.sentBytes,
		c.recvPackets,
		c.sentPackets,
		c.recvErrs,
		c.sentErrs,
	}
}

func (c *netCollector) collect(ctx context.Context, obs metric.Observer) error {
	counters, err := psnet.IOCountersWithContext(ctx, false)
	if err != nil {
		return fmt.Errorf("system: read network counters: %w", err)
	}
	if len(counters) == 0 {
		return nil
	}

	// pernic=false folds every interface into a single entry.
	all := counters[0]
	obs.ObserveFloat64(c.recvBytes, float64(all.BytesRecv))
	obs.ObserveFloat64(c.sentBytes, float64(all.BytesSent))
	obs.ObserveFloat64(c.recvPackets, float64(all.PacketsRecv))
	obs.ObserveFloat64(c.sentPackets, float64(all.PacketsSent))
	obs.ObserveFloat64(c.recvErrs, float64(all.Errin))
	obs.ObserveFloat64(c.sentErrs, float64(all.Errout))

	return nil
}
