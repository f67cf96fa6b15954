package gateway

import (
	"net/http"
)

func (h *Handler) RegisterEndpoints(srv *Server) {
	srv.RegisterHandlerFunc(healthEndpoint, h.handleHealthRequest, http.MethodGet)
	srv.RegisterHandlerFunc(statusPeersEndpoint, h.handleStatusPeersRequest, http.MethodGet)
	srv.RegisterHandlerFunc(statusNodeEndpoint, h.handleStatusNodeRequest, http.MethodGet)
}
