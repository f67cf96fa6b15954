package p2p

import (
	"context"
	"fmt"
	"strings"

	"github.com/libp2p/go-libp2p"
	p2pconfig "github.com/libp2p/go-libp2p/config"
	"github.com/libp2p/go-libp2p/core/connmgr"
	"github.com/libp2p/go-libp2p/core/crypto"
	hst "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/metrics"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
	"github.com/libp2p/go-libp2p/core/routing"
	routedhost "github.com/libp2p/go-libp2p/p2p/host/routed"
	"github.com/libp2p/go-libp2p/p2p/net/conngater"
	quic "github.com/libp2p/go-libp2p/p2p/transport/quic"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/rotkonetworks/kagome/nodebuilder/node"
)

// HostBase is the bare libp2p host, before peer routing is layered on top.
type HostBase hst.Host

// routedHost wraps the base Host so that dials given only a PeerID fall back
// to the DHT for address discovery.
func routedHost(base HostBase, r routing.PeerRouting) hst.Host {
	return routedhost.Wrap(base, r)
}

// userAgent is what the node reports about itself during identify. Network
// crawlers rely on the format staying stable.
type userAgent struct {
	network  Network
	nodeType node.Type
	build    *node.BuildInfo
}

func (ua userAgent) String() string {
	return fmt.Sprintf(
		"kagome/%s/%s/%s/%s",
		ua.network,
		strings.ToLower(ua.nodeType.String()),
		ua.build.GetSemanticVersion(),
		ua.build.CommitShortSha(),
	)
}

func host(params hostParams) (HostBase, error) {
	ua := userAgent{
		network:  params.Net,
		nodeType: params.Tp,
		build:    node.GetBuildInfo(),
	}

	tlsCfg, tlsOn, err := tlsEnabled()
	if err != nil {
		return nil, err
	}
	if tlsOn {
		params.Cfg.Upgrade()
	}

	opts := []libp2p.Option{
		libp2p.NoListenAddrs, // listeners are started separately, once the host exists
		libp2p.AddrsFactory(params.AddrF),
		libp2p.Identity(params.Key),
		libp2p.Peerstore(params.PStore),
		libp2p.ConnectionManager(params.ConnMngr),
		libp2p.ConnectionGater(params.ConnGater),
		libp2p.UserAgent(ua.String()),
		libp2p.NATPortMap(), // upnp
		libp2p.DisableRelay(),
		libp2p.BandwidthReporter(params.Bandwidth),
		libp2p.ResourceManager(params.Resources),
		libp2p.ChainOptions(
			libp2p.Transport(tcp.NewTCPTransport),
			libp2p.Transport(quic.NewTransport),
			wsTransport(tlsCfg),
		),
		// pinned explicitly, NewWithoutDefaults supplies none of them
		libp2p.DefaultSecurity,
		libp2p.DefaultMuxers,
		// Both full and authority nodes serve AutoNAT dialback for the network.
		libp2p.EnableNATService(),
	}

	if params.Registry != nil {
		opts = append(opts, libp2p.PrometheusRegisterer(params.Registry))
	} else {
		opts = append(opts, libp2p.DisableMetrics())
	}

	h, err := libp2p.NewWithoutDefaults(opts...)
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.Hook{OnStop: func(context.Context) error {
		return h.Close()
	}})
	return h, nil
}

type hostParams struct {
	fx.In

	Cfg       *Config
	Net       Network
	Lc        fx.Lifecycle
	Key       crypto.PrivKey
	AddrF     p2pconfig.AddrsFactory
	PStore    peerstore.Peerstore
	ConnMngr  connmgr.ConnManager
	ConnGater *conngater.BasicConnectionGater
	Bandwidth *metrics.BandwidthCounter
	Resources network.ResourceManager
	Registry  prometheus.Registerer `optional:"true"`
	Tp        node.Type

	// unused directly, but requiring it guarantees the identity was seeded
	// into PStore before the host comes up
	ID peer.ID
}
