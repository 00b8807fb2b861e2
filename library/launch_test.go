package library

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindExecutable(t *testing.T) {
	dir := t.TempDir()
	touch := func(parts ...string) {
		p := filepath.Join(append([]string{dir}, parts...)...)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0755))
	}

	_, err := FindExecutable(dir)
	assert.ErrorIs(t, err, ErrNoExecutable)

	touch("readme.txt")
	touch("sub", "nested.exe")
	executable, err := FindExecutable(dir)
	require.NoError(t, err)
	assert.Equal(t, "sub/nested.exe", executable)

	touch("start.bat")
	executable, err = FindExecutable(dir)
	require.NoError(t, err)
	assert.Equal(t, "start.bat", executable) // shallower wins

	touch("game.exe")
	executable, err = FindExecutable(dir)
	require.NoError(t, err)
	assert.Equal(t, "game.exe", executable) // same depth: .exe outranks .bat

	touch("unins000.exe")
	executable, err = FindExecutable(dir)
	require.NoError(t, err)
	assert.Equal(t, "game.exe", executable) // uninstaller loses
}

func TestLaunch(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on a unix no-op wrapper command")
	}
	lib := newTestLibrary(t)
	game := testGame("00001_rj111111", "RJ111111", "A Game", "gameA")
	require.NoError(t, lib.Save(game))
	require.NoError(t, os.WriteFile(filepath.Join(lib.GameDir("gameA"), "game.exe"), []byte("x"), 0755))

	entry, err := lib.Get("RJ111111")
	require.NoError(t, err)
	// "true" swallows the executable path argument
	require.NoError(t, lib.Launch(entry, "true"))
	assert.Equal(t, 1, entry.PlayCount)
	assert.Greater(t, entry.LastPlayed, int64(0))

	// the probed executable is remembered in the record
	loaded, err := lib.Load("gameA")
	require.NoError(t, err)
	assert.Equal(t, "game.exe", loaded.ExecutablePath)

	// the updated entry is persisted
	entry2, err := lib.Get("RJ111111")
	require.NoError(t, err)
	assert.Equal(t, 1, entry2.PlayCount)

	_, err = lib.Get("RJ999999")
	assert.ErrorIs(t, err, ErrNotExists)
}
