package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoles(t *testing.T) {
	r := RoleFull | RoleAuthority
	assert.True(t, r.Is(RoleFull))
	assert.True(t, r.Is(RoleAuthority))
	assert.False(t, r.Is(RoleLight))
	assert.Equal(t, "full|authority", r.String())
	assert.Equal(t, "none", RoleNone.String())
}

func TestBlockHashFromHex(t *testing.T) {
	const raw = "91b171bb158e2d3848fa23a9f1c25182fb8e20313b2c1eb49219da7a70ce90c3"

	h, err := BlockHashFromHex(raw)
	require.NoError(t, err)
	assert.Equal(t, "0x"+raw, h.String())

	prefixed, err := BlockHashFromHex("0x" + raw)
	require.NoError(t, err)
	assert.Equal(t, h, prefixed)

	_, err = BlockHashFromHex("abcd")
	assert.Error(t, err, "short input must not parse")
	_, err = BlockHashFromHex("zz")
	assert.Error(t, err, "non-hex input must not parse")
}

func TestBlockHashText(t *testing.T) {
	h, err := BlockHashFromHex("e143f23803ac50e8f6f8e62695d1ce9e4e1d68aa36c1cd2cfd15340213f3423e")
	require.NoError(t, err)

	text, err := h.MarshalText()
	require.NoError(t, err)

	var parsed BlockHash
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, h, parsed)
}

func TestProtocols(t *testing.T) {
	p := NewProtocols("westend")
	assert.EqualValues(t, "/westend/block-announces/1", p.BlockAnnounce)
	assert.EqualValues(t, "/westend/transactions/1", p.Transactions)
	assert.EqualValues(t, "/paritytech/grandpa/1", p.Grandpa)
	assert.EqualValues(t, "/westend/sync/2", p.Sync)

	assert.NotContains(t, p.Reserved(), p.BlockAnnounce)
	assert.Len(t, p.All(), 4)
}
