package network

import (
	"testing"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectQueueOrder(t *testing.T) {
	q := newConnectQueue()

	require.True(t, q.push("peer1"))
	require.True(t, q.push("peer2"))
	require.True(t, q.push("peer3"))
	require.Equal(t, 3, q.len())

	for _, want := range []peer.ID{"peer1", "peer2", "peer3"} {
		p, ok := q.popFront()
		require.True(t, ok)
		assert.Equal(t, want, p)
	}

	_, ok := q.popFront()
	assert.False(t, ok)
}

func TestConnectQueueDedup(t *testing.T) {
	q := newConnectQueue()

	require.True(t, q.push("peer1"))
	require.False(t, q.push("peer1"))
	assert.Equal(t, 1, q.len())

	// a popped peer may be enqueued again
	_, ok := q.popFront()
	require.True(t, ok)
	assert.True(t, q.push("peer1"))
}

func TestConnectQueueRemove(t *testing.T) {
	q := newConnectQueue()
	q.push("peer1")
	q.push("peer2")
	q.push("peer3")

	require.True(t, q.remove("peer2"))
	require.False(t, q.remove("peer2"))
	require.False(t, q.has("peer2"))

	// remaining peers keep their order
	p, _ := q.popFront()
	assert.Equal(t, peer.ID("peer1"), p)
	p, _ = q.popFront()
	assert.Equal(t, peer.ID("peer3"), p)
	assert.Equal(t, 0, q.len())
}

// TestConnectQueueConsistency checks that the order slice and the membership
// set never drift apart, whatever sequence of operations runs.
func TestConnectQueueConsistency(t *testing.T) {
	q := newConnectQueue()

	check := func() {
		t.Helper()
		require.Equal(t, len(q.order), len(q.set))
		for _, p := range q.order {
			require.True(t, q.has(p))
		}
	}

	for _, p := range []peer.ID{"a", "b", "c", "d", "e"} {
		q.push(p)
		check()
	}
	q.remove("c")
	check()
	q.popFront()
	check()
	q.push("a")
	check()
	q.remove("e")
	check()
	q.remove("missing")
	check()
	for q.len() > 0 {
		q.popFront()
		check()
	}
}
