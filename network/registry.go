package network

import (
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
)

// activePeer is what the node tracks about a peer it maintains protocol
// streams with. lastSeen is refreshed by every keepalive, status update and
// best block announcement.
type activePeer struct {
	lastSeen time.Time
	status   *Status
}

// peerRegistry is the authoritative set of active peers. It is not safe for
// concurrent use; PeerManager serializes access to it.
type peerRegistry struct {
	peers map[peer.ID]*activePeer
}

func newPeerRegistry() *peerRegistry {
	return &peerRegistry{peers: make(map[peer.ID]*activePeer)}
}

// add inserts the peer if absent and reports whether it was inserted.
// An already tracked peer is left untouched.
func (r *peerRegistry) add(p peer.ID, now time.Time, status *Status) bool {
	if _, ok := r.peers[p]; ok {
		return false
	}
	r.peers[p] = &activePeer{lastSeen: now, status: status}
	return true
}

func (r *peerRegistry) has(p peer.ID) bool {
	_, ok := r.peers[p]
	return ok
}

// refresh bumps lastSeen if the peer is tracked.
func (r *peerRegistry) refresh(p peer.ID, now time.Time) bool {
	entry, ok := r.peers[p]
	if !ok {
		return false
	}
	entry.lastSeen = now
	return true
}

// setStatus bumps lastSeen and replaces the status if the peer is tracked.
func (r *peerRegistry) setStatus(p peer.ID, now time.Time, status *Status) bool {
	entry, ok := r.peers[p]
	if !ok {
		return false
	}
	entry.lastSeen = now
	entry.status = status
	return true
}

// setBestBlock bumps lastSeen and replaces only the best block field if the
// peer is tracked. A peer that never reported a full status has no baseline
// to patch a best block into, so the update is dropped.
func (r *peerRegistry) setBestBlock(p peer.ID, now time.Time, block BlockInfo) bool {
	entry, ok := r.peers[p]
	if !ok || entry.status == nil {
		return false
	}
	entry.lastSeen = now
	entry.status.BestBlock = block
	return true
}

func (r *peerRegistry) remove(p peer.ID) bool {
	if _, ok := r.peers[p]; !ok {
		return false
	}
	delete(r.peers, p)
	return true
}

// status returns a copy of the peer's reported status. The zero Status is
// returned for a peer that has not reported one yet.
func (r *peerRegistry) status(p peer.ID) (Status, bool) {
	entry, ok := r.peers[p]
	if !ok {
		return Status{}, false
	}
	if entry.status == nil {
		return Status{}, true
	}
	return *entry.status, true
}

func (r *peerRegistry) size() int {
	return len(r.peers)
}

func (r *peerRegistry) forEach(fn func(peer.ID, *activePeer)) {
	for p, entry := range r.peers {
		fn(p, entry)
	}
}

// oldest returns the peer with the smallest lastSeen. Ties are broken by
// byte order of the peer id, so eviction is deterministic.
func (r *peerRegistry) oldest() (peer.ID, time.Time, bool) {
	var (
		oldestID   peer.ID
		oldestSeen time.Time
		found      bool
	)
	for p, entry := range r.peers {
		if !found ||
			entry.lastSeen.Before(oldestSeen) ||
			(entry.lastSeen.Equal(oldestSeen) && p < oldestID) {
			oldestID, oldestSeen, found = p, entry.lastSeen, true
		}
	}
	return oldestID, oldestSeen, found
}
