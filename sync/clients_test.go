package sync

import (
	"testing"

	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClients(t *testing.T) {
	c := NewClients()
	require.Zero(t, c.Len())

	first := c.Add("peer1")
	require.NotNil(t, first)
	assert.Equal(t, peer.ID("peer1"), first.Peer)
	assert.True(t, c.Has("peer1"))

	// re-adding keeps the existing client
	again := c.Add("peer1")
	assert.Same(t, first, again)
	assert.Equal(t, 1, c.Len())

	c.Add("peer2")
	seen := make(map[peer.ID]struct{})
	c.ForEach(func(cl *Client) { seen[cl.Peer] = struct{}{} })
	assert.Len(t, seen, 2)

	c.Remove("peer1")
	assert.False(t, c.Has("peer1"))
	assert.Equal(t, 1, c.Len())
	c.Remove("peer1")
	assert.Equal(t, 1, c.Len())
}
