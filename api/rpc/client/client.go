package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/filecoin-project/go-jsonrpc"

	"github.com/rotkonetworks/kagome/api/rpc/perms"
	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/p2p"
	"github.com/rotkonetworks/kagome/nodebuilder/peers"
	"github.com/rotkonetworks/kagome/nodebuilder/system"
)

// Client talks to the JSON-RPC server of a running node. Every embedded API
// dials its own namespace, all over the same address and token.
type Client struct {
	Node   node.API
	P2P    p2p.API
	Peers  peers.API
	System system.API

	closers []jsonrpc.ClientCloser
}

// Close tears down the connections of every namespace.
func (c *Client) Close() {
	for _, closer := range c.closers {
		closer()
	}
}

// NewClient dials every namespace of the node at 'addr', authorizing
// requests with the given JWT token.
func NewClient(ctx context.Context, addr, token string) (*Client, error) {
	header := http.Header{perms.AuthKey: []string{fmt.Sprintf("Bearer %s", token)}}
	return newClient(ctx, addr, header)
}

func newClient(ctx context.Context, addr string, header http.Header) (*Client, error) {
	var client Client
	namespaces := map[string]interface{}{
		"node":   &client.Node,
		"p2p":    &client.P2P,
		"peers":  &client.Peers,
		"system": &client.System,
	}

	for name, api := range namespaces {
		closer, err := jsonrpc.NewClient(ctx, addr, name, api, header)
		if err != nil {
			client.Close()
			return nil, fmt.Errorf("client: dial %s namespace: %w", name, err)
		}
		client.closers = append(client.closers, closer)
	}
	return &client, nil
}
