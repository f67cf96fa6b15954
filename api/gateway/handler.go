package gateway

import (
	logging "github.com/ipfs/go-log/v2"

	"github.com/rotkonetworks/kagome/nodebuilder/peers"
	"github.com/rotkonetworks/kagome/nodebuilder/system"
)

var log = logging.Logger("gateway")

// Handler serves node status over plain HTTP for operators and probes
// that do not speak JSON-RPC.
type Handler struct {
	peers  peers.Module
	system system.Module
}

func NewHandler(peersMod peers.Module, systemMod system.Module) *Handler {
	return &Handler{
		peers:  peersMod,
		system: systemMod,
	}
}
