package rpc

import (
	"context"
	"net"
	"net/http"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/cristalhq/jwt/v5"
	"github.com/filecoin-project/go-jsonrpc"
	"github.com/filecoin-project/go-jsonrpc/auth"
	logging "github.com/ipfs/go-log/v2"

	"github.com/rotkonetworks/kagome/api/rpc/perms"
	"github.com/rotkonetworks/kagome/libs/authtoken"
)

var log = logging.Logger("rpc")

// Server is the JSON-RPC server of the node. Every registered service sits
// behind JWT token auth unless auth is disabled outright.
type Server struct {
	srv          *http.Server
	rpc          *jsonrpc.RPCServer
	listener     net.Listener
	authDisabled bool

	started atomic.Bool

	auth jwt.Verifier
}

func NewServer(address, port string, authDisabled bool, verifier jwt.Verifier) *Server {
	rpc := jsonrpc.NewServer()
	srv := &Server{
		rpc: rpc,
		srv: &http.Server{
			Addr: address + ":" + port,
			// bounds header reads, request bodies are bounded by the rpc layer
			ReadHeaderTimeout: 2 * time.Second,
		},
		auth:         verifier,
		authDisabled: authDisabled,
	}
	srv.srv.Handler = &auth.Handler{
		Verify: srv.verifyAuth,
		Next:   rpc.ServeHTTP,
	}
	return srv
}

// verifyAuth resolves the permissions of a request token. It only runs for
// requests carrying a token, bare requests stay at the default level.
func (s *Server) verifyAuth(_ context.Context, token string) ([]auth.Permission, error) {
	if s.authDisabled {
		return perms.AllPerms, nil
	}
	return authtoken.ExtractSignedPermissions(s.auth, token)
}

// RegisterService mounts a service under the given namespace. With auth on,
// methods are proxied so a caller only reaches what its token level allows.
func (s *Server) RegisterService(namespace string, service, out interface{}) {
	if s.authDisabled {
		s.rpc.Register(namespace, service)
		return
	}

	auth.PermissionedProxy(perms.AllPerms, perms.DefaultPerms, service, internalStruct(out))
	s.rpc.Register(namespace, out)
}

// internalStruct digs the Internal field out of an API wrapper for the
// proxy to fill its function fields.
func internalStruct(api interface{}) interface{} {
	return reflect.ValueOf(api).Elem().FieldByName("Internal").Addr().Interface()
}

// Start begins serving on the configured address.
func (s *Server) Start(context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		log.Warn("rpc server already started")
		return nil
	}

	listener, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return err
	}
	s.listener = listener

	log.Infow("rpc server started", "addr", s.srv.Addr)
	//nolint:errcheck
	go s.srv.Serve(listener)
	return nil
}

// Stop drains open requests and shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if !s.started.CompareAndSwap(true, false) {
		log.Warn("rpc server already stopped")
		return nil
	}

	if err := s.srv.Shutdown(ctx); err != nil {
		return err
	}
	s.listener = nil
	log.Info("rpc server stopped")
	return nil
}

// ListenAddr reports the address the server actually listens on, useful
// when the configured port was 0.
func (s *Server) ListenAddr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
