// Package sync tracks per-peer chain synchronization state. The block
// request machinery owns the clients; the peer manager retires them when
// a peer leaves the active set.
package sync

import (
	"sync"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
)

// Client is the synchronization handle for a single active peer.
type Client struct {
	Peer    peer.ID
	Created time.Time
}

// Clients is a concurrency-safe set of per-peer sync clients.
type Clients struct {
	lk      sync.RWMutex
	clients map[peer.ID]*Client
}

func NewClients() *Clients {
	return &Clients{
		clients: make(map[peer.ID]*Client),
	}
}

// Add registers a client for the peer. Adding an already known peer
// leaves the existing client untouched.
func (c *Clients) Add(p peer.ID) *Client {
	c.lk.Lock()
	defer c.lk.Unlock()
	if cl, ok := c.clients[p]; ok {
		return cl
	}
	cl := &Client{Peer: p, Created: time.Now()}
	c.clients[p] = cl
	return cl
}

// Remove drops the peer's client, if any.
func (c *Clients) Remove(p peer.ID) {
	c.lk.Lock()
	defer c.lk.Unlock()
	delete(c.clients, p)
}

func (c *Clients) Has(p peer.ID) bool {
	c.lk.RLock()
	defer c.lk.RUnlock()
	_, ok := c.clients[p]
	return ok
}

func (c *Clients) Len() int {
	c.lk.RLock()
	defer c.lk.RUnlock()
	return len(c.clients)
}

// ForEach invokes fn for every known client. fn must not call back into
// the set.
func (c *Clients) ForEach(fn func(*Client)) {
	c.lk.RLock()
	defer c.lk.RUnlock()
	for _, cl := range c.clients {
		fn(cl)
	}
}
