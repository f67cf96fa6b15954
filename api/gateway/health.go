package gateway

import (
	"encoding/json"
	"net/http"
)

const healthEndpoint = "/health"

func (h *Handler) handleHealthRequest(w http.ResponseWriter, r *http.Request) {
	health, err := h.peers.Health(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, healthEndpoint, err)
		return
	}
	resp, err := json.Marshal(health)
	if err != nil {
		writeError(w, http.StatusInternalServerError, healthEndpoint, err)
		return
	}
	_, err = w.Write(resp)
	if err != nil {
		log.Errorw("writing response", "endpoint", healthEndpoint, "err", err)
	}
}
