package execdata

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestNewFileIsUnique(t *testing.T) {
	f := &Files{Fs: afero.NewMemMapFs(), Dir: "/data/execdata"}
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		path, err := f.NewFile()
		require.NoError(t, err)
		require.True(t, strings.HasSuffix(path, Extension))
		require.Equal(t, "/data/execdata", filepath.Dir(path))
		require.False(t, seen[path], "duplicate path %s", path)
		seen[path] = true
	}
	ok, err := afero.DirExists(f.Fs, "/data/execdata")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNewFileRequiresDir(t *testing.T) {
	f := &Files{Fs: afero.NewMemMapFs()}
	_, err := f.NewFile()
	require.Error(t, err)
}

func TestListAndClean(t *testing.T) {
	memFs := afero.NewMemMapFs()
	f := &Files{Fs: memFs, Dir: "/data"}

	files, err := f.List()
	require.NoError(t, err)
	require.Empty(t, files)

	a, err := f.NewFile()
	require.NoError(t, err)
	b, err := f.NewFile()
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(memFs, a, []byte("a"), 0644))
	require.NoError(t, afero.WriteFile(memFs, b, []byte("b"), 0644))
	require.NoError(t, afero.WriteFile(memFs, "/data/notes.txt", []byte("keep"), 0644))

	files, err = f.List()
	require.NoError(t, err)
	require.Len(t, files, 2)

	removed, err := f.Clean()
	require.NoError(t, err)
	require.Equal(t, 2, removed)

	files, err = f.List()
	require.NoError(t, err)
	require.Empty(t, files)
	exists, err := afero.Exists(memFs, "/data/notes.txt")
	require.NoError(t, err)
	require.True(t, exists)
}
