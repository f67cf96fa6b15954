package gateway

import (
	"github.com/rotkonetworks/kagome/api/gateway"
	"github.com/rotkonetworks/kagome/nodebuilder/peers"
	"github.com/rotkonetworks/kagome/nodebuilder/system"
)

// Handler constructs a new gateway Handler from the given modules and hooks
// it up to the server.
func Handler(
	peersMod peers.Module,
	systemMod system.Module,
	serv *gateway.Server,
) {
	handler := gateway.NewHandler(peersMod, systemMod)
	handler.RegisterEndpoints(serv)
	handler.RegisterMiddleware(serv)
}

func server(cfg *Config) *gateway.Server {
	return gateway.NewServer(cfg.Address, cfg.Port)
}
