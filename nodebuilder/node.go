package nodebuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cristalhq/jwt/v5"
	logging "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/routing"
	"github.com/libp2p/go-libp2p/p2p/net/conngater"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/rotkonetworks/kagome/api/gateway"
	"github.com/rotkonetworks/kagome/api/rpc"
	"github.com/rotkonetworks/kagome/network"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
	"github.com/rotkonetworks/kagome/nodebuilder/peers"
	"github.com/rotkonetworks/kagome/nodebuilder/system"
)

var (
	log   = logging.Logger("node")
	fxLog = logging.Logger("fx")
)

// DefaultLifecycleTimeout bounds how long a Node start or stop may take.
var DefaultLifecycleTimeout = time.Minute * 2

// Node is an assembled kagome node, either a Full node or an Authority.
// The DI container populates the exported fields, a Node is never built by
// hand.
type Node struct {
	fx.In `ignore-unexported:"true"`

	Type          node.Type
	Network       p2p.Network
	Bootstrappers p2p.Bootstrappers
	Config        *Config
	AdminSigner   jwt.Signer

	// serving surfaces
	RPCServer     *rpc.Server
	GatewayServer *gateway.Server `optional:"true"`

	// p2p layer
	Host        host.Host
	ConnGater   *conngater.BasicConnectionGater
	Routing     routing.PeerRouting
	PeerManager *network.PeerManager

	// module services
	PeersServ  peers.Module
	SystemServ system.Module

	// the fx.App lifecycle, entered through Start and Stop
	start, stop lifecycleFunc
}

// New assembles a new Node of the given type, reading the config out of the
// given Store.
func New(tp node.Type, network p2p.Network, store Store, options ...fx.Option) (*Node, error) {
	cfg, err := store.Config()
	if err != nil {
		return nil, err
	}

	return NewWithConfig(tp, network, store, cfg, options...)
}

// NewWithConfig assembles a new Node like New, with a caller supplied config.
func NewWithConfig(tp node.Type, network p2p.Network, store Store, cfg *Config, options ...fx.Option) (*Node, error) {
	opts := append([]fx.Option{ConstructModule(tp, network, cfg, store)}, options...)
	return newNode(opts...)
}

// Start brings up every component and service of the Node.
func (n *Node) Start(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultLifecycleTimeout)
	defer cancel()

	if err := n.start(ctx); err != nil {
		log.Debugf("starting %s node: %s", n.Type, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("node: start timed out after %s: %w", DefaultLifecycleTimeout, err)
		}
		return fmt.Errorf("node: start: %w", err)
	}

	log.Infof("\n\n●━━●━━●  started kagome node  ●━━●━━●\n\n"+
		"node type:\t%s\nnetwork:\t%s\n",
		strings.ToLower(n.Type.String()), n.Network)

	addrs, err := peer.AddrInfoToP2pAddrs(host.InfoFromHost(n.Host))
	if err != nil {
		log.Errorw("resolving own p2p addresses", "err", err)
		return err
	}
	fmt.Println("The node is reachable over:")
	for _, addr := range addrs {
		fmt.Println("  *", addr.String())
	}
	fmt.Println()
	return nil
}

// Run starts the Node and blocks until 'ctx' is canceled. The Node keeps
// running after cancellation and still wants a graceful Stop.
func (n *Node) Run(ctx context.Context) error {
	if err := n.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return ctx.Err()
}

// Stop winds the Node down. Canceling 'ctx' aborts the graceful shutdown
// and forces whatever remains to close immediately.
func (n *Node) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultLifecycleTimeout)
	defer cancel()

	if err := n.stop(ctx); err != nil {
		log.Debugf("stopping %s node: %s", n.Type, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("node: stop timed out after %s: %w", DefaultLifecycleTimeout, err)
		}
		return fmt.Errorf("node: stop: %w", err)
	}

	log.Debugf("stopped %s node", n.Type)
	return nil
}

// newNode assembles the Node out of the given DI options. The options decide
// which components the Node actually carries.
func newNode(opts ...fx.Option) (*Node, error) {
	nd := new(Node)
	app := fx.New(
		fx.WithLogger(fxLogger),
		fx.Populate(nd),
		fx.Options(opts...),
	)
	if err := app.Err(); err != nil {
		return nil, err
	}

	nd.start, nd.stop = app.Start, app.Stop
	return nd, nil
}

// fxLogger routes the DI container's own events into the fx logger at
// debug level, they are pure noise at anything higher.
func fxLogger() fxevent.Logger {
	zl := &fxevent.ZapLogger{Logger: fxLog.Desugar()}
	zl.UseLogLevel(zapcore.DebugLevel)
	return zl
}

type lifecycleFunc func(context.Context) error
