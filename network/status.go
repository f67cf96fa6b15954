package network

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Roles is a bitmask describing the services a peer provides to the network.
type Roles byte

const (
	RoleNone      Roles = 0b0
	RoleFull      Roles = 0b1
	RoleLight     Roles = 0b10
	RoleAuthority Roles = 0b100
)

// Is reports whether every bit of role is set.
func (r Roles) Is(role Roles) bool {
	return r&role == role
}

func (r Roles) String() string {
	if r == RoleNone {
		return "none"
	}
	var parts []string
	if r.Is(RoleFull) {
		parts = append(parts, "full")
	}
	if r.Is(RoleLight) {
		parts = append(parts, "light")
	}
	if r.Is(RoleAuthority) {
		parts = append(parts, "authority")
	}
	return strings.Join(parts, "|")
}

// BlockHash is the hash of a block header.
type BlockHash [32]byte

// BlockHashFromHex parses a hash from its hex form, with or without
// the 0x prefix.
func BlockHashFromHex(s string) (BlockHash, error) {
	var h BlockHash
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return h, fmt.Errorf("network: decoding block hash: %w", err)
	}
	if len(raw) != len(h) {
		return h, fmt.Errorf("network: invalid block hash length: %d", len(raw))
	}
	copy(h[:], raw)
	return h, nil
}

func (h BlockHash) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

func (h BlockHash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *BlockHash) UnmarshalText(text []byte) error {
	parsed, err := BlockHashFromHex(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// BlockInfo is a peer's position in the chain.
type BlockInfo struct {
	Number uint64    `json:"number"`
	Hash   BlockHash `json:"hash"`
}

// Status is the application-level handshake a peer reports on the block
// announce protocol. Peers whose genesis hash differs from ours speak a
// different chain and are not kept.
type Status struct {
	Roles       Roles     `json:"roles"`
	BestBlock   BlockInfo `json:"bestBlock"`
	GenesisHash BlockHash `json:"genesisHash"`
}
