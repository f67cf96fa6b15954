package node

import (
	"crypto/rand"
	"fmt"

	"github.com/cristalhq/jwt/v5"

	"github.com/rotkonetworks/kagome/libs/keystore"
)

// SecretName is the name of the node's JWT secret inside the keystore.
var SecretName = keystore.KeyName("jwt-secret")

// secret returns the node's JWT signer and verifier backed by the secret
// from the keystore, generating and persisting a fresh secret on first use.
func secret(ks keystore.Keystore) (jwt.Signer, jwt.Verifier, error) {
	key, err := ks.Get(SecretName)
	if err != nil {
		key, err = generateSecret(ks)
		if err != nil {
			return nil, nil, err
		}
	}

	signer, err := jwt.NewSignerHS(jwt.HS256, key.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("node: creating jwt signer: %w", err)
	}
	verifier, err := jwt.NewVerifierHS(jwt.HS256, key.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("node: creating jwt verifier: %w", err)
	}

	return signer, verifier, nil
}

func generateSecret(ks keystore.Keystore) (keystore.PrivKey, error) {
	sk := make([]byte, 32)
	if _, err := rand.Read(sk); err != nil {
		return keystore.PrivKey{}, fmt.Errorf("node: generating jwt secret: %w", err)
	}

	key := keystore.PrivKey{Body: sk}
	if err := ks.Put(SecretName, key); err != nil {
		return keystore.PrivKey{}, fmt.Errorf("node: persisting jwt secret: %w", err)
	}

	return key, nil
}
