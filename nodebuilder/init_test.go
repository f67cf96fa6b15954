package nodebuilder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rotkonetworks/kagome/nodebuilder/node"
)

func TestInit(t *testing.T) {
	for _, tp := range []node.Type{node.Full, node.Authority} {
		t.Run(tp.String(), func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, Init(*DefaultConfig(tp), dir, tp))
			assert.True(t, IsInit(dir))
		})
	}
}

func TestInitLayout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(*DefaultConfig(node.Full), dir, node.Full))

	assert.DirExists(t, keysPath(dir))
	assert.DirExists(t, dataPath(dir))
	assert.FileExists(t, configPath(dir))
	// the writability probe must not survive initialization
	assert.NoFileExists(t, filepath.Join(dir, ".check"))
}

func TestInitInvalidPath(t *testing.T) {
	for _, tp := range []node.Type{node.Full, node.Authority} {
		require.Error(t, Init(*DefaultConfig(tp), "/invalid_path", tp))
	}
}

func TestInitLockedStore(t *testing.T) {
	dir := t.TempDir()
	flk := flock.New(lockPath(dir))
	_, err := flk.TryLock()
	require.NoError(t, err)
	defer flk.Unlock() //nolint:errcheck

	assert.ErrorIs(t, Init(*DefaultConfig(node.Full), dir, node.Full), ErrOpened)
}

func TestIsInitBrokenConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(*DefaultConfig(node.Full), dir, node.Full))

	// a config that no longer decodes makes the store unusable
	require.NoError(t, os.WriteFile(configPath(dir), []byte("[P2P\n"), 0600))
	assert.False(t, IsInit(dir))
}

func TestIsInitNonExistentDir(t *testing.T) {
	assert.False(t, IsInit("/invalid_path"))
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(*DefaultConfig(node.Full), dir, node.Full))

	leftover := filepath.Join(dataPath(dir), "MANIFEST")
	require.NoError(t, os.WriteFile(leftover, []byte("stale"), 0600))

	require.NoError(t, Reset(dir, node.Full))

	// data is wiped, while the store stays initialized
	assert.NoFileExists(t, leftover)
	assert.True(t, IsInit(dir))
}
