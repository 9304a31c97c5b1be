package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryMarkAndHas(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg, err := NewRegistry(path)
	require.NoError(t, err)

	assert.False(t, reg.Has("/tmp/a.txt"))
	require.NoError(t, reg.Mark("/tmp/a.txt"))
	assert.True(t, reg.Has("/tmp/a.txt"))
}

func TestRegistryPersistsAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	reg, err := NewRegistry(path)
	require.NoError(t, err)
	require.NoError(t, reg.Mark("/tmp/session-1.txt"))

	reloaded, err := NewRegistry(path)
	require.NoError(t, err)
	assert.True(t, reloaded.Has("/tmp/session-1.txt"))
	assert.Len(t, reloaded.All(), 1)
}

func TestRegistryMarkTwiceKeepsSingleEntry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg, err := NewRegistry(path)
	require.NoError(t, err)

	require.NoError(t, reg.Mark("/tmp/a.txt"))
	require.NoError(t, reg.Mark("/tmp/a.txt"))
	assert.Len(t, reg.All(), 1)
}

func TestRegistryForget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	reg, err := NewRegistry(path)
	require.NoError(t, err)

	require.NoError(t, reg.Mark("/tmp/a.txt"))
	require.NoError(t, reg.Forget("/tmp/a.txt"))
	assert.False(t, reg.Has("/tmp/a.txt"))
}

func TestRegistryCorruptFileResets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	reg, err := NewRegistry(path)
	require.NoError(t, err)
	assert.Empty(t, reg.All())
}
