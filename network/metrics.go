package network

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rotkonetworks/kagome/libs/utils"
)

var meter = otel.Meter("network")

type evictionReason string

const (
	evictionDead     evictionReason = "dead"
	evictionStale    evictionReason = "stale"
	evictionCapacity evictionReason = "capacity"
)

type metrics struct {
	alignsTotal     metric.Int64Counter
	evictionsTotal  metric.Int64Counter
	dialsTotal      metric.Int64Counter
	promotionsTotal metric.Int64Counter

	peersGauge metric.Int64ObservableGauge
	clientReg  metric.Registration
}

// WithMetrics enables metrics collection on the manager. Safe to call only
// before Start.
func (m *PeerManager) WithMetrics() error {
	alignsTotal, err := meter.Int64Counter("net_align_passes_total",
		metric.WithDescription("Total count of completed alignment passes"),
	)
	if err != nil {
		return err
	}

	evictionsTotal, err := meter.Int64Counter("net_peer_evictions_total",
		metric.WithDescription("Total count of evicted peers, by reason"),
	)
	if err != nil {
		return err
	}

	dialsTotal, err := meter.Int64Counter("net_peer_dials_total",
		metric.WithDescription("Total count of completed outbound dials, by result"),
	)
	if err != nil {
		return err
	}

	promotionsTotal, err := meter.Int64Counter("net_peer_promotions_total",
		metric.WithDescription("Total count of promotion attempts, by result"),
	)
	if err != nil {
		return err
	}

	peersGauge, err := meter.Int64ObservableGauge("net_peers",
		metric.WithDescription("Count of tracked peers, by state"),
	)
	if err != nil {
		return err
	}

	mtr := &metrics{
		alignsTotal:     alignsTotal,
		evictionsTotal:  evictionsTotal,
		dialsTotal:      dialsTotal,
		promotionsTotal: promotionsTotal,
		peersGauge:      peersGauge,
	}

	callback := func(_ context.Context, observer metric.Observer) error {
		active, queued, connecting := m.peerCounts()
		observer.ObserveInt64(peersGauge, active, metric.WithAttributes(attribute.String("state", "active")))
		observer.ObserveInt64(peersGauge, queued, metric.WithAttributes(attribute.String("state", "queued")))
		observer.ObserveInt64(peersGauge, connecting, metric.WithAttributes(attribute.String("state", "connecting")))
		return nil
	}
	mtr.clientReg, err = meter.RegisterCallback(callback, peersGauge)
	if err != nil {
		return fmt.Errorf("network: registering metrics callback: %w", err)
	}

	m.metrics = mtr
	return nil
}

func (m *metrics) close() error {
	if m == nil {
		return nil
	}
	return m.clientReg.Unregister()
}

func (m *metrics) observeAlign(ctx context.Context) {
	if m == nil {
		return
	}
	ctx = utils.ResetContextOnError(ctx)
	m.alignsTotal.Add(ctx, 1)
}

func (m *metrics) observeEviction(ctx context.Context, reason evictionReason) {
	if m == nil {
		return
	}
	ctx = utils.ResetContextOnError(ctx)
	m.evictionsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", string(reason))))
}

func (m *metrics) observeDial(ctx context.Context, err error) {
	if m == nil {
		return
	}
	ctx = utils.ResetContextOnError(ctx)
	result := "ok"
	if err != nil {
		result = "err"
	}
	m.dialsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("result", result)))
}

func (m *metrics) observePromotion(ctx context.Context, result string) {
	if m == nil {
		return
	}
	ctx = utils.ResetContextOnError(ctx)
	m.promotionsTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("result", result)))
}
