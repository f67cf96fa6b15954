package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()

	file, err := os.CreateTemp(dir, "probe")
	require.NoError(t, err)

	assert.True(t, Exists(file.Name()))
	assert.True(t, Exists(dir))
	assert.False(t, Exists(filepath.Join(dir, "never-created")))
}
