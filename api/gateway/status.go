package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/libp2p/go-libp2p/core/peer"
)

const (
	statusPeersEndpoint = "/status/peers"
	statusNodeEndpoint  = "/status/node"
)

// nodeStatusResponse is the wire shape of the /status/node endpoint.
type nodeStatusResponse struct {
	Name      string   `json:"name"`
	Chain     string   `json:"chain"`
	Version   string   `json:"version"`
	Roles     []string `json:"roles"`
	PeerID    peer.ID  `json:"peerId"`
	PeerCount int      `json:"peerCount"`
}

func (h *Handler) handleStatusPeersRequest(w http.ResponseWriter, r *http.Request) {
	infos, err := h.peers.Peers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, statusPeersEndpoint, err)
		return
	}
	resp, err := json.Marshal(infos)
	if err != nil {
		writeError(w, http.StatusInternalServerError, statusPeersEndpoint, err)
		return
	}
	_, err = w.Write(resp)
	if err != nil {
		log.Errorw("writing response", "endpoint", statusPeersEndpoint, "err", err)
	}
}

func (h *Handler) handleStatusNodeRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status := nodeStatusResponse{}
	var err error
	if status.Name, err = h.system.Name(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, statusNodeEndpoint, err)
		return
	}
	if status.Chain, err = h.system.Chain(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, statusNodeEndpoint, err)
		return
	}
	if status.Version, err = h.system.Version(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, statusNodeEndpoint, err)
		return
	}
	if status.Roles, err = h.system.NodeRoles(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, statusNodeEndpoint, err)
		return
	}
	if status.PeerID, err = h.system.LocalPeerID(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, statusNodeEndpoint, err)
		return
	}
	if status.PeerCount, err = h.peers.Count(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, statusNodeEndpoint, err)
		return
	}

	resp, err := json.Marshal(status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, statusNodeEndpoint, err)
		return
	}
	_, err = w.Write(resp)
	if err != nil {
		log.Errorw("writing response", "endpoint", statusNodeEndpoint, "err", err)
	}
}
