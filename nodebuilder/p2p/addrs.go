package p2p

import (
	"fmt"

	p2pconfig "github.com/libp2p/go-libp2p/config"
	hst "github.com/libp2p/go-libp2p/core/host"
	ma "github.com/multiformats/go-multiaddr"
)

// Listen starts listening for inbound connections with libp2p.Host.
// It reads the listen addresses off the config only once the Host is built,
// so upgrades applied during host construction are picked up.
func Listen(h hst.Host, cfg *Config) error {
	addrs, err := parseMultiaddrs(cfg.ListenAddresses, "ListenAddresses")
	if err != nil {
		return err
	}
	return h.Network().Listen(addrs...)
}

// addrsFactory builds the AddrsFactory deciding what the host advertises:
// everything configured in announce, plus every listen address not excluded
// through noAnnounce.
func addrsFactory(announce, noAnnounce []string) func() (p2pconfig.AddrsFactory, error) {
	return func() (p2pconfig.AddrsFactory, error) {
		advertised, err := parseMultiaddrs(announce, "AnnounceAddresses")
		if err != nil {
			return nil, err
		}

		// TODO: support masking whole subnets in noAnnounce, e.g. 255.255.255.0
		excluded, err := parseMultiaddrs(noAnnounce, "NoAnnounceAddresses")
		if err != nil {
			return nil, err
		}
		exclude := make(map[string]struct{}, len(excluded))
		for _, maddr := range excluded {
			exclude[string(maddr.Bytes())] = struct{}{}
		}

		return func(listen []ma.Multiaddr) []ma.Multiaddr {
			out := make([]ma.Multiaddr, 0, len(advertised)+len(listen))
			out = append(out, advertised...)
			for _, maddr := range listen {
				if _, ok := exclude[string(maddr.Bytes())]; !ok {
					out = append(out, maddr)
				}
			}
			return out
		}, nil
	}
}

func parseMultiaddrs(addrs []string, field string) ([]ma.Multiaddr, error) {
	out := make([]ma.Multiaddr, len(addrs))
	for i, addr := range addrs {
		maddr, err := ma.NewMultiaddr(addr)
		if err != nil {
			return nil, fmt.Errorf("p2p: parse config.P2P.%s: %w", field, err)
		}
		out[i] = maddr
	}
	return out, nil
}
