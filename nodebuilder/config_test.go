package nodebuilder

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotkonetworks/kagome/nodebuilder/node"
	"github.com/rotkonetworks/kagome/nodebuilder/rpc"
)

func TestConfigEncodeDecode(t *testing.T) {
	var buf bytes.Buffer
	in := DefaultConfig(node.Full)
	require.NoError(t, in.Encode(&buf))

	var out Config
	require.NoError(t, out.Decode(&buf))
	assert.EqualValues(t, in, &out)
}

func TestConfigDecodeBroken(t *testing.T) {
	var out Config
	require.Error(t, out.Decode(strings.NewReader("[P2P\n")))
}

func TestSaveLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	in := DefaultConfig(node.Authority)
	require.NoError(t, SaveConfig(path, in))

	out, err := LoadConfig(path)
	require.NoError(t, err)
	assert.EqualValues(t, in, out)
}

func TestUpdateConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(*DefaultConfig(node.Full), dir, node.Full))

	cfg, err := LoadConfig(configPath(dir))
	require.NoError(t, err)
	cfg.RPC.Address = ""
	cfg.RPC.Port = "7777"
	require.NoError(t, SaveConfig(configPath(dir), cfg))

	require.NoError(t, UpdateConfig(node.Full, dir))

	got, err := LoadConfig(configPath(dir))
	require.NoError(t, err)
	// emptied fields are refilled with defaults, customized ones survive
	assert.Equal(t, rpc.DefaultConfig().Address, got.RPC.Address)
	assert.Equal(t, "7777", got.RPC.Port)
}

func TestRemoveConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(*DefaultConfig(node.Full), dir, node.Full))

	require.NoError(t, RemoveConfig(dir))
	assert.NoFileExists(t, configPath(dir))
}
