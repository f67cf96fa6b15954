package cmd

import (
	"github.com/libp2p/go-libp2p/core/metrics"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
	ma "github.com/multiformats/go-multiaddr"
	"github.com/spf13/cobra"

	rpc "github.com/rotkonetworks/kagome/api/rpc/client"
	cmdnode "github.com/rotkonetworks/kagome/cmd"
)

func init() {
	Cmd.AddCommand(
		infoCmd,
		peersCmd,
		peerInfoCmd,
		connectCmd,
		closePeerCmd,
		connectednessCmd,
		natStatusCmd,
		blockPeerCmd,
		unblockPeerCmd,
		blockedPeersCmd,
		protectCmd,
		unprotectCmd,
		protectedCmd,
		pingCmd,
		bandwidthStatsCmd,
		peerBandwidthCmd,
		bandwidthForProtocolCmd,
	)
}

var Cmd = &cobra.Command{
	Use:               "p2p [command]",
	Short:             "Inspects and steers the p2p layer of the running node.",
	Args:              cobra.NoArgs,
	PersistentPreRunE: cmdnode.InitClient,
}

// addrInfoJSON flattens a peer.AddrInfo for command output.
type addrInfoJSON struct {
	ID    string   `json:"id"`
	Addrs []string `json:"peer_addr"`
}

func formatAddrInfo(data interface{}) interface{} {
	info := data.(peer.AddrInfo)
	addrs := make([]string, len(info.Addrs))
	for i, addr := range info.Addrs {
		addrs[i] = addr.String()
	}
	return addrInfoJSON{ID: info.ID.String(), Addrs: addrs}
}

func formatPeerList(data interface{}) interface{} {
	ids := data.([]peer.ID)
	peers := make([]string, len(ids))
	for i, id := range ids {
		peers[i] = id.String()
	}
	return struct {
		Peers []string `json:"peers"`
	}{peers}
}

func formatConnectedness(data interface{}) interface{} {
	conn := data.(network.Connectedness)
	return struct {
		ConnectionState string `json:"connection_state"`
	}{conn.String()}
}

type bandwidthJSON struct {
	TotalIn  int64   `json:"total_in"`
	TotalOut int64   `json:"total_out"`
	RateIn   float64 `json:"rate_in"`
	RateOut  float64 `json:"rate_out"`
}

func formatBandwidth(data interface{}) interface{} {
	stats := data.(metrics.Stats)
	return bandwidthJSON{
		TotalIn:  stats.TotalIn,
		TotalOut: stats.TotalOut,
		RateIn:   stats.RateIn,
		RateOut:  stats.RateOut,
	}
}

// outcome reports whether a mutating call on one peer went through.
type outcome struct {
	Peer   string `json:"peer"`
	Ok     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

func reportOutcome(peer string, err error) outcome {
	out := outcome{Peer: peer, Ok: err == nil}
	if err != nil {
		out.Reason = err.Error()
	}
	return out
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Reports the node's own peer ID and listen addresses.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			info, err := client.P2P.Info(c.Context())
			return cmdnode.PrintOutput(info, err, formatAddrInfo)
		})
	},
}

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Lists the peers the node is connected to.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			peers, err := client.P2P.Peers(c.Context())
			return cmdnode.PrintOutput(peers, err, formatPeerList)
		})
	},
}

var peerInfoCmd = &cobra.Command{
	Use:   "peer-info <peer-id>",
	Short: "Reports the known addresses of the given peer.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			pid, err := peer.Decode(args[0])
			if err != nil {
				return err
			}

			info, err := client.P2P.PeerInfo(c.Context(), pid)
			return cmdnode.PrintOutput(info, err, formatAddrInfo)
		})
	},
}

var connectCmd = &cobra.Command{
	Use:   "connect <peer-id> <multiaddr>",
	Short: "Dials the given peer and reports the resulting connection state.",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			pid, err := peer.Decode(args[0])
			if err != nil {
				return err
			}
			maddr, err := ma.NewMultiaddr(args[1])
			if err != nil {
				return err
			}

			err = client.P2P.Connect(c.Context(), peer.AddrInfo{ID: pid, Addrs: []ma.Multiaddr{maddr}})
			if err != nil {
				return cmdnode.PrintOutput(nil, err, nil)
			}

			conn, err := client.P2P.Connectedness(c.Context(), pid)
			return cmdnode.PrintOutput(conn, err, formatConnectedness)
		})
	},
}

var closePeerCmd = &cobra.Command{
	Use:   "close-peer <peer-id>",
	Short: "Drops the connection to the given peer.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			pid, err := peer.Decode(args[0])
			if err != nil {
				return err
			}

			err = client.P2P.ClosePeer(c.Context(), pid)
			if err != nil {
				return cmdnode.PrintOutput(nil, err, nil)
			}

			conn, err := client.P2P.Connectedness(c.Context(), pid)
			return cmdnode.PrintOutput(conn, err, formatConnectedness)
		})
	},
}

var connectednessCmd = &cobra.Command{
	Use:   "connectedness <peer-id>",
	Short: "Reports the connection state to the given peer.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			pid, err := peer.Decode(args[0])
			if err != nil {
				return err
			}

			conn, err := client.P2P.Connectedness(c.Context(), pid)
			return cmdnode.PrintOutput(conn, err, formatConnectedness)
		})
	},
}

var natStatusCmd = &cobra.Command{
	Use:   "nat-status",
	Short: "Reports how reachable the node believes it is.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			status, err := client.P2P.NATStatus(c.Context())

			formatter := func(data interface{}) interface{} {
				return struct {
					Reachability string `json:"reachability"`
				}{data.(network.Reachability).String()}
			}
			return cmdnode.PrintOutput(status, err, formatter)
		})
	},
}

var blockPeerCmd = &cobra.Command{
	Use:   "block-peer <peer-id>",
	Short: "Denies all connections to and from the given peer.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			pid, err := peer.Decode(args[0])
			if err != nil {
				return err
			}

			err = client.P2P.BlockPeer(c.Context(), pid)
			return cmdnode.PrintOutput(reportOutcome(args[0], err), nil, nil)
		})
	},
}

var unblockPeerCmd = &cobra.Command{
	Use:   "unblock-peer <peer-id>",
	Short: "Lifts a block placed on the given peer.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			pid, err := peer.Decode(args[0])
			if err != nil {
				return err
			}

			err = client.P2P.UnblockPeer(c.Context(), pid)
			return cmdnode.PrintOutput(reportOutcome(args[0], err), nil, nil)
		})
	},
}

var blockedPeersCmd = &cobra.Command{
	Use:   "blocked-peers",
	Short: "Lists every blocked peer.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			peers, err := client.P2P.ListBlockedPeers(c.Context())
			return cmdnode.PrintOutput(peers, err, formatPeerList)
		})
	},
}

var protectCmd = &cobra.Command{
	Use:   "protect <peer-id> <tag>",
	Short: "Pins the connection to the given peer under a tag, exempting it from trimming.",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			pid, err := peer.Decode(args[0])
			if err != nil {
				return err
			}

			err = client.P2P.Protect(c.Context(), pid, args[1])
			return cmdnode.PrintOutput(reportOutcome(args[0], err), nil, nil)
		})
	},
}

var unprotectCmd = &cobra.Command{
	Use: "unprotect <peer-id> <tag>",
	Short: "Removes the protection tag from the given peer. " +
		"The peer may stay protected through other tags.",
	Args: cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			pid, err := peer.Decode(args[0])
			if err != nil {
				return err
			}

			still, err := client.P2P.Unprotect(c.Context(), pid, args[1])
			if err != nil {
				return cmdnode.PrintOutput(nil, err, nil)
			}
			return cmdnode.PrintOutput(struct {
				Peer           string `json:"peer"`
				StillProtected bool   `json:"still_protected"`
			}{args[0], still}, nil, nil)
		})
	},
}

var protectedCmd = &cobra.Command{
	Use:   "protected <peer-id> <tag>",
	Short: "Reports whether the peer is protected under the given tag.",
	Args:  cobra.ExactArgs(2),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			pid, err := peer.Decode(args[0])
			if err != nil {
				return err
			}

			protected, err := client.P2P.IsProtected(c.Context(), pid, args[1])
			return cmdnode.PrintOutput(protected, err, nil)
		})
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping <peer-id>",
	Short: "Pings the given peer and reports the round-trip time.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			pid, err := peer.Decode(args[0])
			if err != nil {
				return err
			}

			rtt, err := client.P2P.Ping(c.Context(), pid)
			if err != nil {
				return cmdnode.PrintOutput(nil, err, nil)
			}
			return cmdnode.PrintOutput(rtt.String(), nil, nil)
		})
	},
}

var bandwidthStatsCmd = &cobra.Command{
	Use:   "bandwidth-stats",
	Short: "Reports the total bandwidth usage of the node across all peers and protocols.",
	Args:  cobra.NoArgs,
	RunE: func(c *cobra.Command, _ []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			stats, err := client.P2P.BandwidthStats(c.Context())
			return cmdnode.PrintOutput(stats, err, formatBandwidth)
		})
	},
}

var peerBandwidthCmd = &cobra.Command{
	Use:   "peer-bandwidth <peer-id>",
	Short: "Reports the bandwidth usage attributed to the given peer.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			pid, err := peer.Decode(args[0])
			if err != nil {
				return err
			}

			stats, err := client.P2P.BandwidthForPeer(c.Context(), pid)
			return cmdnode.PrintOutput(stats, err, formatBandwidth)
		})
	},
}

var bandwidthForProtocolCmd = &cobra.Command{
	Use:   "protocol-bandwidth <protocol-id>",
	Short: "Reports the bandwidth usage attributed to the given protocol.",
	Args:  cobra.ExactArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		return cmdnode.WithClient(c, func(client *rpc.Client) error {
			stats, err := client.P2P.BandwidthForProtocol(c.Context(), protocol.ID(args[0]))
			return cmdnode.PrintOutput(stats, err, formatBandwidth)
		})
	},
}
