package p2p

import (
	"fmt"
)

// GenesisFor reports the hex-encoded genesis block hash of the given
// network. The hash is the chain's identity, notification protocols are
// namespaced by it, so it can never change for a live network. Private
// networks have no fixed genesis and report an empty string.
func GenesisFor(net Network) (string, error) {
	net, err := net.Validate()
	if err != nil {
		return "", err
	}

	hash, ok := genesisList[net]
	if !ok {
		return "", fmt.Errorf("params: genesis hash not found for network %s", net)
	}
	return hash, nil
}

// NOTE: every added long-running network needs its genesis hash listed here.
var genesisList = map[Network]string{
	Polkadot: "91b171bb158e2d3848fa23a9f1c25182fb8e20313b2c1eb49219da7a70ce90c3",
	Kusama:   "b0a8d493285c2df73290dfb7e61f870f17b41801197a149ca93654499ea3dafe",
	Westend:  "e143f23803ac50e8f6f8e62695d1ce9e4e1d68aa36c1cd2cfd15340213f3423e",
	Private:  "",
}
