// Package network implements the peer-set maintenance engine of the node.
//
// The engine decides, continuously and autonomously, which remote peers the
// node keeps protocol streams with. Discovery and identify events feed a
// connect queue and a promotion path; a periodic alignment pass reconciles
// the active set against the configured limits, evicting dead, stale and
// excess peers before growing the set from the queue or, as a last resort,
// from the configured bootstrap peers.
//
// All shared peer state is owned by a single PeerManager instance. Every
// mutating entry point runs to completion under one lock, so the registry,
// the connect queue and the connecting set never observe a half-applied
// transition. Asynchronous boundaries (dialing, stream opening, the align
// timer) re-enter through the same lock and become silent no-ops once the
// manager is stopped.
package network
