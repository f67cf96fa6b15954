package gateway

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// Server is the REST gateway. It wraps a request multiplexer the node's
// modules register their endpoints on, with CORS limited to reads.
type Server struct {
	srv      *http.Server
	srvMux   *mux.Router
	listener net.Listener

	started atomic.Bool
}

// NewServer constructs a gateway Server that will listen on the given address
// and port once started.
func NewServer(address, port string) *Server {
	server := &Server{
		srvMux: mux.NewRouter(),
	}
	server.srv = &http.Server{
		Addr: address + ":" + port,
		Handler: cors.New(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}).Handler(server),
		// bounds slowloris style clients, default net/http has no limit
		ReadHeaderTimeout: 2 * time.Second,
	}
	return server
}

// Start binds the listener and begins serving. Repeated calls are no-ops.
func (s *Server) Start(context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		log.Warn("gateway already started")
		return nil
	}
	listener, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.listener = listener
	log.Infow("gateway started", "listening on", s.srv.Addr)
	//nolint:errcheck
	go s.srv.Serve(listener)
	return nil
}

// Stop shuts the server down, waiting for inflight requests up to the
// context deadline.
func (s *Server) Stop(ctx context.Context) error {
	if !s.started.CompareAndSwap(true, false) {
		log.Warn("gateway already stopped")
		return nil
	}
	err := s.srv.Shutdown(ctx)
	if err != nil {
		return err
	}
	s.listener = nil
	log.Info("gateway stopped")
	return nil
}

// RegisterMiddleware appends the given middleware to the request chain. It
// runs before every registered handler.
func (s *Server) RegisterMiddleware(middlewareFuncs ...mux.MiddlewareFunc) {
	for _, m := range middlewareFuncs {
		s.srvMux.Use(m)
	}
}

// RegisterHandlerFunc mounts the given handler on the given pattern and
// method.
func (s *Server) RegisterHandlerFunc(pattern string, handlerFunc http.HandlerFunc, method string) {
	s.srvMux.HandleFunc(pattern, handlerFunc).Methods(method)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.srvMux.ServeHTTP(w, r)
}

// ListenAddr reports the bound address, empty before Start.
func (s *Server) ListenAddr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
