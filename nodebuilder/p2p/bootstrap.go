package p2p

import (
	"fmt"
	"os"

	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// EnvKeyKagomeBootstrapper is the environment variable that makes the node
// advertise itself as a bootstrapper on the DHT.
const EnvKeyKagomeBootstrapper = "KAGOME_BOOTSTRAPPER"

// isBootstrapper reports whether the node is configured to serve as a bootstrapper.
func isBootstrapper() bool {
	return os.Getenv(EnvKeyKagomeBootstrapper) == "true"
}

// BootstrappersFor resolves the bootstrap peers of the network. A new
// long-running network has to register its bootstrappers in bootstrapList.
func BootstrappersFor(net Network) (Bootstrappers, error) {
	net, err := net.Validate()
	if err != nil {
		return nil, err
	}
	return parseAddrInfos(bootstrapList[net])
}

var bootstrapList = map[Network][]string{
	Polkadot: {
		"/dns/boot-0.polkadot.rotko.net/tcp/30333/p2p/12D3KooWFk1LbKokLcmkbmuiMgdZYudWBUDe5UhJxjxYThX3NXyL",
		"/dns/boot-1.polkadot.rotko.net/tcp/30333/p2p/12D3KooWJjRHWfar3NRFZ3gziucCqPSkqCw4UWzGgFdUgqAzNLjj",
		"/dns/boot-2.polkadot.rotko.net/tcp/30333/p2p/12D3KooWK1mVoo5NL6R8k474TDweQu31CFYTFqMeq2XzHdgxzSVx",
		"/dns/boot-3.polkadot.rotko.net/tcp/30333/p2p/12D3KooWF7nSxw19Ai8oMcwGSPnDY8ddWwYLnBS8VAX8mmHyik1W",
	},
	Kusama: {
		"/dns/boot-0.kusama.rotko.net/tcp/30333/p2p/12D3KooWCw8b8ECF4WAJecA7YS3urmLJBHB3YLkhUE5AK4rvQsNh",
		"/dns/boot-1.kusama.rotko.net/tcp/30333/p2p/12D3KooWJNjsKG1pqxh7mAiuYWW9KohrC1ZjzN8Kwi9RMCWC13wr",
		"/dns/boot-2.kusama.rotko.net/tcp/30333/p2p/12D3KooWMdPdFDKS3fq6ao5brnudsmE47YLFH7WHZGkgN825pED8",
		"/dns/boot-3.kusama.rotko.net/tcp/30333/p2p/12D3KooWCfVUTs4GRuDiF4Wxm6cyj45VsXnptZr49qf7Z9mzePSZ",
	},
	Westend: {
		"/dns/boot-0.westend.rotko.net/tcp/30333/p2p/12D3KooWEfhcZu5H1ZCAzJdk7NBt7rf7vtCLhPx6acfcxfuPdZeT",
		"/dns/boot-1.westend.rotko.net/tcp/30333/p2p/12D3KooWKUNngNYR8cM8etN7jW21KmZTmWZsViRubvjUDGiCrT9Q",
		"/dns/boot-2.westend.rotko.net/tcp/30333/p2p/12D3KooWA9jKTLoixQWwSpYb1hXtyTX1FFi3kUZ9xRpTiwzD72Hs",
	},
	Private: {},
}

// parseAddrInfos splits p2p multiaddrs into AddrInfos, keeping list order.
func parseAddrInfos(addrs []string) ([]peer.AddrInfo, error) {
	infos := make([]peer.AddrInfo, 0, len(addrs))
	for _, addr := range addrs {
		maddr, err := ma.NewMultiaddr(addr)
		if err != nil {
			return nil, fmt.Errorf("p2p: parse bootstrap addr %q: %w", addr, err)
		}

		info, err := peer.AddrInfoFromP2pAddr(maddr)
		if err != nil {
			return nil, fmt.Errorf("p2p: bootstrap addr %q names no peer: %w", addr, err)
		}
		infos = append(infos, *info)
	}
	return infos, nil
}
