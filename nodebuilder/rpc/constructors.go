package rpc

import (
	"github.com/cristalhq/jwt/v5"

	"github.com/rotkonetworks/kagome/api/rpc"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
	"github.com/rotkonetworks/kagome/nodebuilder/peers"
	"github.com/rotkonetworks/kagome/nodebuilder/system"
)

// registerEndpoints registers the given services on the rpc.
func registerEndpoints(
	nodeMod node.Module,
	p2pMod p2p.Module,
	peersMod peers.Module,
	systemMod system.Module,
	serv *rpc.Server,
) {
	serv.RegisterService("node", nodeMod, &node.API{})
	serv.RegisterService("p2p", p2pMod, &p2p.API{})
	serv.RegisterService("peers", peersMod, &peers.API{})
	serv.RegisterService("system", systemMod, &system.API{})
}

func server(cfg *Config, verifier jwt.Verifier) *rpc.Server {
	return rpc.NewServer(cfg.Address, cfg.Port, cfg.SkipAuth, verifier)
}
