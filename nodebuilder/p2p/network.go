package p2p

import (
	"errors"
	"strings"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
)

const (
	// DefaultNetwork is the network a node joins when none was picked.
	DefaultNetwork = Polkadot
	// Polkadot is the main production network.
	Polkadot Network = "polkadot"
	// Kusama is the canary network receiving releases first.
	Kusama Network = "kusama"
	// Westend is the long-running test network.
	Westend Network = "westend"
	// Private is any self-assembled network, local test setups included.
	Private Network = "private"

	// BlockTime is the block interval every known network runs with.
	BlockTime = time.Second * 6
)

// Network identifies the chain a node runs on. The name doubles as the chain
// identifier inside protocol IDs. A new long-running network has to be added
// to networksList and GetNetworks to be recognized.
type Network string

// Bootstrappers are the peers a fresh node dials to join the network.
type Bootstrappers []peer.AddrInfo

// ErrInvalidNetwork reports a network this build does not know.
var ErrInvalidNetwork = errors.New("params: invalid network")

// Validate resolves aliases like "dot" to their canonical network name and
// rejects networks this build does not know.
func (n Network) Validate() (Network, error) {
	if net, ok := networkAliases[string(n)]; ok {
		return net, nil
	}
	if _, ok := networksList[n]; !ok {
		return "", ErrInvalidNetwork
	}
	return n, nil
}

func (n Network) String() string {
	return string(n)
}

// GetNetworks lists every known long-standing network in preference order.
func GetNetworks() []Network {
	return []Network{Polkadot, Kusama, Westend, Private}
}

var networksList = map[Network]struct{}{
	Polkadot: {},
	Kusama:   {},
	Westend:  {},
	Private:  {},
}

// networkAliases maps the ticker-style short names onto their networks.
var networkAliases = map[string]Network{
	"dot":     Polkadot,
	"ksm":     Kusama,
	"wnd":     Westend,
	"private": Private,
}

// listProvidedNetworks renders the choosable networks for command hints.
// Private is left out, it is an escape hatch rather than a choice.
func listProvidedNetworks() string {
	networks := make([]string, 0, len(networksList))
	for _, net := range GetNetworks() {
		if net != Private {
			networks = append(networks, string(net))
		}
	}
	return strings.Join(networks, ", ")
}
