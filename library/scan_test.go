package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindUnregistered(t *testing.T) {
	lib := newTestLibrary(t)
	for _, name := range []string{"gameA", "gameB", "sorted", ".hidden"} {
		require.NoError(t, os.MkdirAll(filepath.Join(lib.Root(), name), 0755))
	}
	// gameB already carries a record file
	require.NoError(t, lib.Save(testGame("00001_rj111111", "RJ111111", "B", "gameB")))
	// loose files are not game dirs
	require.NoError(t, os.WriteFile(filepath.Join(lib.Root(), "notes.txt"), []byte("x"), 0600))

	dirs, err := lib.FindUnregistered([]string{"sorted/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gameA"}, dirs)

	dirs, err = lib.FindUnregistered(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"gameA", "sorted"}, dirs)
}

func TestReindex(t *testing.T) {
	lib := newTestLibrary(t)
	require.NoError(t, lib.Save(testGame("00001_rj111111", "RJ111111", "A", "gameA")))
	require.NoError(t, lib.Save(testGame("00002_rj222222", "RJ222222", "B", "gameB")))

	// lose the index, keep the files
	for _, key := range []string{"RJ111111", "RJ222222"} {
		entry, err := lib.Get(key)
		require.NoError(t, err)
		require.NoError(t, lib.Remove(entry, true))
	}
	entries, err := lib.List()
	require.NoError(t, err)
	require.Empty(t, entries)

	count, err := lib.Reindex()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	entries, err = lib.List()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "gameA", entries[0].Dir)
	assert.Equal(t, "RJ222222", entries[1].Number)
}
