package gateway

import (
	"context"
	"net/http"
	"time"
)

// requestDeadline caps how long a single gateway request may run.
const requestDeadline = time.Minute

func (h *Handler) RegisterMiddleware(srv *Server) {
	srv.RegisterMiddleware(
		setContentType,
		enforceDeadline,
	)
}

func setContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// enforceDeadline derives a bounded context for the handler, requests never
// inherit the unbounded server context.
func enforceDeadline(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), requestDeadline)
		defer cancel()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
