package cmd

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/cristalhq/jwt/v5"
	"github.com/filecoin-project/go-jsonrpc/auth"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/rotkonetworks/kagome/api/rpc/perms"
	"github.com/rotkonetworks/kagome/libs/authtoken"
	"github.com/rotkonetworks/kagome/libs/keystore"
	nodemod "github.com/rotkonetworks/kagome/nodebuilder/node"
)

const ttlFlag = "ttl"

var permLevels = map[string][]auth.Permission{
	"public": perms.DefaultPerms,
	"read":   perms.ReadPerms,
	"write":  perms.ReadWritePerms,
	"admin":  perms.AllPerms,
}

// AuthCmd signs tokens offline, straight from the node's keystore. It works
// against an initialized store whether or not the node is running.
func AuthCmd(fsets ...*flag.FlagSet) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth [public | read | write | admin]",
		Short: "Signs and outputs a JWT token with the given permission level.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			level, ok := permLevels[args[0]]
			if !ok {
				return fmt.Errorf("unknown permission level: %s", args[0])
			}

			ttl, err := cmd.Flags().GetDuration(ttlFlag)
			if err != nil {
				return err
			}

			token, err := signToken(cmd.Context(), level, ttl)
			if err != nil {
				return err
			}
			fmt.Printf("%s", token)
			return nil
		},
	}

	cmd.Flags().Duration(ttlFlag, 0, "Lifetime of the signed token, unlimited when zero")
	for _, set := range fsets {
		cmd.Flags().AddFlagSet(set)
	}
	return cmd
}

func signToken(ctx context.Context, level []auth.Permission, ttl time.Duration) (string, error) {
	ks, err := newKeystore(StorePath(ctx))
	if err != nil {
		return "", err
	}

	key, err := ks.Get(nodemod.SecretName)
	if errors.Is(err, keystore.ErrNotFound) {
		// a never-started node has no secret yet, mint one so the token
		// will verify once it starts
		key, err = generateSecret(ks)
	}
	if err != nil {
		return "", err
	}

	signer, err := jwt.NewSignerHS(jwt.HS256, key.Body)
	if err != nil {
		return "", err
	}
	return authtoken.NewSignedJWT(signer, level, ttl)
}

func generateSecret(ks keystore.Keystore) (keystore.PrivKey, error) {
	sk := make([]byte, 32)
	if _, err := rand.Read(sk); err != nil {
		return keystore.PrivKey{}, err
	}

	key := keystore.PrivKey{Body: sk}
	if err := ks.Put(nodemod.SecretName, key); err != nil {
		return keystore.PrivKey{}, err
	}
	return key, nil
}
