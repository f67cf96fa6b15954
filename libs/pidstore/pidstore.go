// Package pidstore persists the set of known good peers between runs, so
// a restarted node can rebuild its peer set without waiting for discovery.
package pidstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/namespace"
	logging "github.com/ipfs/go-log/v2"
	"github.com/libp2p/go-libp2p/core/peer"
)

var (
	storePrefix = datastore.NewKey("pidstore")
	peersKey    = datastore.NewKey("peers")

	log = logging.Logger("pidstore")
)

// PeerIDStore keeps a flat peer ID list under a single key of the node's
// datastore, JSON-encoded. The list is small, full rewrites are cheaper
// than per-peer keys.
type PeerIDStore struct {
	ds datastore.Datastore
}

// NewPeerIDStore creates a peer ID store backed by the given datastore,
// initializing it on first use and resetting it when corrupted.
func NewPeerIDStore(ctx context.Context, ds datastore.Datastore) (*PeerIDStore, error) {
	pidstore := &PeerIDStore{
		ds: namespace.Wrap(ds, storePrefix),
	}

	exists, err := pidstore.ds.Has(ctx, peersKey)
	if err != nil {
		return nil, err
	}
	if !exists {
		return pidstore, pidstore.Put(ctx, []peer.ID{})
	}

	if _, err := pidstore.Load(ctx); err != nil {
		log.Warnw("corrupted pidstore detected, resetting", "err", err)
		return pidstore, pidstore.reset(ctx)
	}

	return pidstore, nil
}

// Load reads the stored peer list.
func (p *PeerIDStore) Load(ctx context.Context) ([]peer.ID, error) {
	bin, err := p.ds.Get(ctx, peersKey)
	if err != nil {
		return nil, fmt.Errorf("pidstore: read peer list: %w", err)
	}

	var peers []peer.ID
	if err := json.Unmarshal(bin, &peers); err != nil {
		return nil, fmt.Errorf("pidstore: decode peer list: %w", err)
	}

	log.Debugw("loaded peers from disk", "amount", len(peers))
	return peers, nil
}

// Put replaces the stored peer list with the given one.
func (p *PeerIDStore) Put(ctx context.Context, peers []peer.ID) error {
	bin, err := json.Marshal(peers)
	if err != nil {
		return fmt.Errorf("pidstore: encode peer list: %w", err)
	}

	if err := p.ds.Put(ctx, peersKey, bin); err != nil {
		return fmt.Errorf("pidstore: write peer list: %w", err)
	}

	log.Debugw("persisted peers", "amount", len(peers))
	return nil
}

// reset clears the pidstore in case of corruption.
func (p *PeerIDStore) reset(ctx context.Context) error {
	if err := p.ds.Delete(ctx, peersKey); err != nil {
		return fmt.Errorf("pidstore: clear peer list: %w", err)
	}

	return p.Put(ctx, []peer.ID{})
}
