package p2p

import (
	"context"
	"net/http"

	logging "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/metrics"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	rcmgr "github.com/libp2p/go-libp2p/p2p/host/resource-manager"
	ma "github.com/multiformats/go-multiaddr"
	madns "github.com/multiformats/go-multiaddr-dns"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/rotkonetworks/kagome/nodebuilder/node"
)

var log = logging.Logger("module/p2p")

// ConstructModule wires the libp2p stack of the node: identity, host,
// DHT routing and the resource accounting around them.
func ConstructModule(tp node.Type, cfg *Config) fx.Option {
	// sanitize config values before constructing module
	cfgErr := cfg.Validate()

	baseComponents := fx.Options(
		fx.Supply(cfg),
		fx.Error(cfgErr),
		fx.Provide(Key),
		fx.Provide(id),
		fx.Provide(peerStore),
		fx.Provide(connectionManager),
		fx.Provide(connectionGater),
		fx.Provide(host),
		fx.Provide(routedHost),
		fx.Provide(newDHT),
		fx.Provide(peerRouting),
		fx.Provide(addrsFactory(cfg.AnnounceAddresses, cfg.NoAnnounceAddresses)),
		fx.Provide(metrics.NewBandwidthCounter),
		fx.Provide(newModule),
		fx.Invoke(Listen),
	)

	if cfg.EnableDebugMetrics {
		baseComponents = fx.Options(
			baseComponents,
			fx.Invoke(func() {
				rcmgr.MustRegisterWith(prometheus.DefaultRegisterer)
			}),
			fx.Invoke(prometheusAgent),
		)
	}

	switch tp {
	case node.Authority:
		return fx.Module(
			"p2p",
			baseComponents,
			fx.Provide(authorityResourceManager(cfg)),
		)
	case node.Full:
		return fx.Module(
			"p2p",
			baseComponents,
			fx.Provide(fullResourceManager(cfg)),
		)
	default:
		panic("invalid node type")
	}
}

// authorityResourceManager builds an unlimited resource manager. An
// authority runs in a controlled environment and must never throttle its
// own validation traffic.
func authorityResourceManager(cfg *Config) func() (network.ResourceManager, error) {
	return func() (network.ResourceManager, error) {
		opts, err := resourceTraceOpts(cfg)
		if err != nil {
			return nil, err
		}
		return rcmgr.NewResourceManager(rcmgr.NewFixedLimiter(rcmgr.InfiniteLimits), opts...)
	}
}

// fullResourceManager scales the default limits to the machine and admits
// bootstrappers and mutual peers past them, whatever the current load.
func fullResourceManager(cfg *Config) func(context.Context, Bootstrappers) (network.ResourceManager, error) {
	return func(ctx context.Context, bootstrappers Bootstrappers) (network.ResourceManager, error) {
		limits := rcmgr.DefaultLimits
		libp2p.SetDefaultServiceLimits(&limits)

		mutual, err := cfg.mutualPeers()
		if err != nil {
			return nil, err
		}

		privileged := make([]peer.AddrInfo, 0, len(bootstrappers)+len(mutual))
		privileged = append(privileged, bootstrappers...)
		privileged = append(privileged, mutual...)

		// resolve DNS names up front, the allowlist only takes concrete addresses
		var allowlist []ma.Multiaddr
		for _, p := range privileged {
			for _, addr := range p.Addrs {
				resolved, err := madns.DefaultResolver.Resolve(ctx, addr)
				if err != nil {
					log.Warnw("resolving allowlisted peer", "addr", addr.String(), "err", err)
					continue
				}
				allowlist = append(allowlist, resolved...)
			}
		}

		opts, err := resourceTraceOpts(cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, rcmgr.WithAllowlistedMultiaddrs(allowlist))

		return rcmgr.NewResourceManager(rcmgr.NewFixedLimiter(limits.AutoScale()), opts...)
	}
}

// resourceTraceOpts attaches a stats reporter to the resource manager when
// debug metrics are on.
func resourceTraceOpts(cfg *Config) ([]rcmgr.Option, error) {
	if !cfg.EnableDebugMetrics {
		return nil, nil
	}
	str, err := rcmgr.NewStatsTraceReporter()
	if err != nil {
		return nil, err
	}
	return []rcmgr.Option{rcmgr.WithTraceReporter(str)}, nil
}

// prometheusAgent serves libp2p debug metrics over a local prometheus scrape endpoint.
func prometheusAgent(lc fx.Lifecycle, cfg *Config) {
	registry, ok := prometheus.DefaultRegisterer.(*prometheus.Registry)
	if !ok {
		log.Warn("default prometheus registerer is not a registry, debug metrics not served")
		return
	}

	mux := http.NewServeMux()
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	mux.Handle(cfg.PrometheusAgentEndpoint, handler)

	srv := &http.Server{
		Addr:    cfg.PrometheusAgentPort,
		Handler: mux,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Errorw("prometheus agent failed", "err", err)
				}
			}()
			log.Infow("prometheus agent started", "addr", srv.Addr, "endpoint", cfg.PrometheusAgentEndpoint)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
