package network

import (
	"context"
	"sync"

	"github.com/libp2p/go-libp2p/core/host"
	libnet "github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/protocol"
)

// StreamEngine tracks the protocol streams the node maintains with each
// peer. It is the source of truth for the liveness checks the alignment
// pass performs: a peer is alive on a protocol only while an open stream
// for it is tracked here. A reserved slot without an opened stream does
// not count as alive.
type StreamEngine struct {
	lk   sync.RWMutex
	host host.Host
	// streams maps peer -> protocol -> stream. A nil stream marks a
	// reserved slot waiting for its owning service to open it.
	streams map[peer.ID]map[protocol.ID]libnet.Stream
}

func NewStreamEngine(h host.Host) *StreamEngine {
	return &StreamEngine{
		host:    h,
		streams: make(map[peer.ID]map[protocol.ID]libnet.Stream),
	}
}

// Reserve marks stream slots for the peer without opening them.
func (e *StreamEngine) Reserve(p peer.ID, protocols ...protocol.ID) {
	e.lk.Lock()
	defer e.lk.Unlock()
	for _, proto := range protocols {
		if _, ok := e.forPeer(p)[proto]; !ok {
			e.forPeer(p)[proto] = nil
		}
	}
}

// AddStream tracks an open stream, replacing and resetting any previous
// stream for the same peer and protocol.
func (e *StreamEngine) AddStream(p peer.ID, proto protocol.ID, s libnet.Stream) {
	e.lk.Lock()
	defer e.lk.Unlock()
	if old := e.forPeer(p)[proto]; old != nil {
		old.Reset() //nolint:errcheck
	}
	e.forPeer(p)[proto] = s
}

// IsAlive reports whether an open stream for the protocol is tracked and
// its underlying connection has not been closed.
func (e *StreamEngine) IsAlive(p peer.ID, proto protocol.ID) bool {
	e.lk.RLock()
	defer e.lk.RUnlock()
	s, ok := e.streams[p][proto]
	if !ok || s == nil {
		return false
	}
	return !s.Conn().IsClosed()
}

// Del resets and drops every stream and slot tracked for the peer.
func (e *StreamEngine) Del(p peer.ID) {
	e.lk.Lock()
	defer e.lk.Unlock()
	for _, s := range e.streams[p] {
		if s != nil {
			s.Reset() //nolint:errcheck
		}
	}
	delete(e.streams, p)
}

// NewOutgoingStream opens a stream to the peer asynchronously. The opened
// stream is tracked before done is invoked, so done observes a consistent
// engine state. done is called exactly once, from a separate goroutine.
func (e *StreamEngine) NewOutgoingStream(
	ctx context.Context,
	p peer.ID,
	proto protocol.ID,
	done func(error),
) {
	go func() {
		s, err := e.host.NewStream(ctx, p, proto)
		if err != nil {
			done(err)
			return
		}
		e.AddStream(p, proto, s)
		done(nil)
	}()
}

// RegisterInbound accepts inbound streams for the given protocols and
// tracks them, so peers dialing us count as alive without an extra
// outbound stream.
func (e *StreamEngine) RegisterInbound(protocols ...protocol.ID) {
	for _, proto := range protocols {
		proto := proto
		e.host.SetStreamHandler(proto, func(s libnet.Stream) {
			e.AddStream(s.Conn().RemotePeer(), proto, s)
		})
	}
}

// UnregisterInbound removes the inbound handlers set by RegisterInbound.
func (e *StreamEngine) UnregisterInbound(protocols ...protocol.ID) {
	for _, proto := range protocols {
		e.host.RemoveStreamHandler(proto)
	}
}

// forPeer returns the peer's stream map, allocating it on first use.
// Callers must hold lk.
func (e *StreamEngine) forPeer(p peer.ID) map[protocol.ID]libnet.Stream {
	m, ok := e.streams[p]
	if !ok {
		m = make(map[protocol.ID]libnet.Stream)
		e.streams[p] = m
	}
	return m
}
