package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/cristalhq/jwt/v5"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	rpc "github.com/rotkonetworks/kagome/api/rpc/client"
	"github.com/rotkonetworks/kagome/api/rpc/perms"
	"github.com/rotkonetworks/kagome/libs/authtoken"
	"github.com/rotkonetworks/kagome/libs/keystore"
	"github.com/rotkonetworks/kagome/nodebuilder"
	nodemod "github.com/rotkonetworks/kagome/nodebuilder/node"
)

// defaultRPCAddress matches the default rpc config of a local node.
const defaultRPCAddress = "http://localhost:9933"

var (
	rpcURL   string
	rpcToken string
)

// RPCFlags gives a flag set for commands that talk to a running node.
func RPCFlags() *flag.FlagSet {
	fset := &flag.FlagSet{}
	fset.StringVar(&rpcURL, "url", defaultRPCAddress, "Address of the node to talk to")
	fset.StringVar(&rpcToken, "token", "", "Authorization token, signed from the node's keystore when omitted")

	// reuse the store flag so its help and default stay in one place
	fset.AddFlag(NodeFlags().Lookup(nodeStoreFlag))
	return fset
}

// InitClient dials the node and stashes the client in the command context,
// minting an admin token from the store when none was given.
func InitClient(cmd *cobra.Command, _ []string) error {
	if rpcToken == "" {
		storePath, err := resolveStorePath(cmd)
		if err != nil {
			return err
		}

		token, err := adminToken(storePath)
		if err != nil {
			return fmt.Errorf("cmd: sign auth token: %w", err)
		}
		rpcToken = token
	}

	client, err := rpc.NewClient(cmd.Context(), rpcURL, rpcToken)
	if err != nil {
		return err
	}

	cmd.SetContext(context.WithValue(cmd.Context(), rpcClientKey{}, client))
	return nil
}

// resolveStorePath takes the store flag when set and otherwise hunts for the
// locked store of a node already running on this machine.
func resolveStorePath(cmd *cobra.Command) (string, error) {
	if cmd.Flag(nodeStoreFlag).Changed {
		return cmd.Flag(nodeStoreFlag).Value.String(), nil
	}

	path, err := nodebuilder.DiscoverOpened()
	if err != nil {
		return "", fmt.Errorf("cmd: pass --token or --node.store, no running node found: %w", err)
	}
	return path, nil
}

func newKeystore(path string) (keystore.Keystore, error) {
	expanded, err := homedir.Expand(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	return keystore.NewFSKeystore(filepath.Join(expanded, "keys"))
}

// adminToken signs a fresh all-permissions token with the JWT secret found
// in the keystore under 'path'.
func adminToken(path string) (string, error) {
	if path == "" {
		return "", errors.New("cmd: node store path is empty")
	}

	ks, err := newKeystore(path)
	if err != nil {
		return "", err
	}

	key, err := ks.Get(nodemod.SecretName)
	if err != nil {
		return "", fmt.Errorf("get jwt secret: %w", err)
	}

	signer, err := jwt.NewSignerHS(jwt.HS256, key.Body)
	if err != nil {
		return "", err
	}
	return authtoken.NewSignedJWT(signer, perms.AllPerms, 0)
}

type rpcClientKey struct{}

// ParseClientFromCtx pulls the client InitClient stored in the context.
func ParseClientFromCtx(ctx context.Context) (*rpc.Client, error) {
	client, ok := ctx.Value(rpcClientKey{}).(*rpc.Client)
	if !ok {
		return nil, errors.New("cmd: rpc client missing from context, was InitClient run")
	}
	return client, nil
}

// WithClient hands the node's rpc client to fn and closes it once fn returns.
func WithClient(cmd *cobra.Command, fn func(*rpc.Client) error) error {
	client, err := ParseClientFromCtx(cmd.Context())
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}
