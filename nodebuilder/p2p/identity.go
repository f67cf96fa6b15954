package p2p

import (
	"crypto/rand"
	"errors"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"

	"github.com/rotkonetworks/kagome/libs/keystore"
)

const keyName = "p2p-key"

// Key loads the node's networking identity from the keystore, minting and
// persisting a fresh ed25519 key on first run.
func Key(kstore keystore.Keystore) (crypto.PrivKey, error) {
	stored, err := kstore.Get(keyName)
	switch {
	case err == nil:
		return crypto.UnmarshalPrivateKey(stored.Body)
	case errors.Is(err, keystore.ErrNotFound):
		return generateKey(kstore)
	default:
		return nil, err
	}
}

func generateKey(kstore keystore.Keystore) (crypto.PrivKey, error) {
	priv, _, err := crypto.GenerateEd25519Key(rand.Reader)
	if err != nil {
		return nil, err
	}

	body, err := crypto.MarshalPrivateKey(priv)
	if err != nil {
		return nil, err
	}

	if err := kstore.Put(keyName, keystore.PrivKey{Body: body}); err != nil {
		return nil, err
	}
	return priv, nil
}

// id derives the PeerID and seeds the peerstore with both halves of the key,
// libp2p's identify needs them there.
func id(key crypto.PrivKey, pstore peerstore.Peerstore) (peer.ID, error) {
	id, err := peer.IDFromPrivateKey(key)
	if err != nil {
		return "", err
	}

	if err := pstore.AddPrivKey(id, key); err != nil {
		return "", err
	}
	return id, pstore.AddPubKey(id, key.GetPublic())
}
