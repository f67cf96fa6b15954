package p2p

import (
	"github.com/libp2p/go-libp2p/core/peer"

	"github.com/rotkonetworks/kagome/nodebuilder/node"
)

// Config collects the settings of the libp2p stack.
type Config struct {
	// ListenAddresses are the local multiaddrs the transports bind.
	ListenAddresses []string
	// AnnounceAddresses overrides what the host advertises to the network.
	// Empty keeps the listen addresses, filtered through NoAnnounceAddresses.
	AnnounceAddresses []string
	// NoAnnounceAddresses names listen addresses that stay unadvertised,
	// the unspecified and loopback ones nobody could dial from the WAN.
	NoAnnounceAddresses []string
	// MutualPeers hold a standing peering agreement with this node. Their
	// connections survive trimming and negative scoring. Both sides have to
	// list each other for the agreement to work.
	MutualPeers []string
	// ConnManager tunes the connection manager watermarks.
	ConnManager connManagerConfig

	// EnableDebugMetrics serves libp2p internals over a local prometheus
	// agent.
	EnableDebugMetrics bool
	// PrometheusAgentPort is the address the prometheus agent listens on
	// when debug metrics are enabled.
	PrometheusAgentPort string
	// PrometheusAgentEndpoint is the http path the prometheus agent serves
	// metrics under.
	PrometheusAgentEndpoint string
}

// DefaultConfig listens on the substrate-conventional ports, 30333 for TCP
// and QUIC and 30334 for websockets, and announces nothing beyond the
// dialable subset of the listen set.
func DefaultConfig(tp node.Type) Config {
	return Config{
		ListenAddresses: []string{
			"/ip4/0.0.0.0/udp/30333/quic-v1",
			"/ip6/::/udp/30333/quic-v1",
			"/ip4/0.0.0.0/tcp/30333",
			"/ip6/::/tcp/30333",
			"/ip4/0.0.0.0/tcp/30334/ws",
			"/ip6/::/tcp/30334/ws",
		},
		AnnounceAddresses: []string{},
		NoAnnounceAddresses: []string{
			"/ip4/0.0.0.0/udp/30333/quic-v1",
			"/ip4/127.0.0.1/udp/30333/quic-v1",
			"/ip6/::/udp/30333/quic-v1",
			"/ip4/0.0.0.0/tcp/30333",
			"/ip4/127.0.0.1/tcp/30333",
			"/ip6/::/tcp/30333",
			"/ip4/0.0.0.0/tcp/30334/ws",
			"/ip4/127.0.0.1/tcp/30334/ws",
			"/ip6/::/tcp/30334/ws",
		},
		MutualPeers:             []string{},
		ConnManager:             defaultConnManagerConfig(tp),
		PrometheusAgentPort:     ":9615",
		PrometheusAgentEndpoint: "/metrics",
	}
}

// mutualPeers resolves the configured mutual peer multiaddrs into AddrInfos.
func (cfg *Config) mutualPeers() ([]peer.AddrInfo, error) {
	maddrs, err := parseMultiaddrs(cfg.MutualPeers, "MutualPeers")
	if err != nil {
		return nil, err
	}
	return peer.AddrInfosFromP2pAddrs(maddrs...)
}

// Validate checks that the mutual peer addresses parse.
func (cfg *Config) Validate() error {
	_, err := cfg.mutualPeers()
	return err
}

// Upgrade appends the secure websocket listener on 30335 to configs written
// before it existed.
func (cfg *Config) Upgrade() {
	cfg.ListenAddresses = append(
		cfg.ListenAddresses,
		"/ip4/0.0.0.0/tcp/30335/wss",
		"/ip6/::/tcp/30335/wss",
	)
	cfg.NoAnnounceAddresses = append(
		cfg.NoAnnounceAddresses,
		"/ip4/127.0.0.1/tcp/30335/wss",
		"/ip6/::/tcp/30335/wss",
	)
}
