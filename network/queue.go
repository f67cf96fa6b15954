package network

import (
	"github.com/libp2p/go-libp2p/core/peer"
)

// connectQueue is an ordered, deduplicated waiting list of peers discovered
// but not yet dialed. The slice preserves discovery order, the set backs
// membership checks; both always hold exactly the same peers.
type connectQueue struct {
	order []peer.ID
	set   map[peer.ID]struct{}
}

func newConnectQueue() *connectQueue {
	return &connectQueue{set: make(map[peer.ID]struct{})}
}

// push appends the peer to the back unless it is already queued.
func (q *connectQueue) push(p peer.ID) bool {
	if _, ok := q.set[p]; ok {
		return false
	}
	q.set[p] = struct{}{}
	q.order = append(q.order, p)
	return true
}

// popFront removes and returns the oldest queued peer.
func (q *connectQueue) popFront() (peer.ID, bool) {
	if len(q.order) == 0 {
		return "", false
	}
	p := q.order[0]
	q.order = q.order[1:]
	delete(q.set, p)
	return p, true
}

// remove drops the peer from any position in the queue.
func (q *connectQueue) remove(p peer.ID) bool {
	if _, ok := q.set[p]; !ok {
		return false
	}
	delete(q.set, p)
	for i, queued := range q.order {
		if queued == p {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return true
}

func (q *connectQueue) has(p peer.ID) bool {
	_, ok := q.set[p]
	return ok
}

func (q *connectQueue) len() int {
	return len(q.order)
}
