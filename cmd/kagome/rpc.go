package main

import (
	"github.com/rotkonetworks/kagome/cmd"
	node "github.com/rotkonetworks/kagome/nodebuilder/node/cmd"
	p2p "github.com/rotkonetworks/kagome/nodebuilder/p2p/cmd"
	peers "github.com/rotkonetworks/kagome/nodebuilder/peers/cmd"
)

func init() {
	node.Cmd.PersistentFlags().AddFlagSet(cmd.RPCFlags())
	p2p.Cmd.PersistentFlags().AddFlagSet(cmd.RPCFlags())
	peers.Cmd.PersistentFlags().AddFlagSet(cmd.RPCFlags())

	rootCmd.AddCommand(
		node.Cmd,
		p2p.Cmd,
		peers.Cmd,
	)
}
