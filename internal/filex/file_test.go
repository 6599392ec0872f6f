package filex

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDataDir(t *testing.T) {
	orig := userConfigDir
	t.Cleanup(func() { userConfigDir = orig })

	userConfigDir = func() (string, error) { return "/home/u/.config", nil }
	assert.Equal(t, filepath.Join("/home/u/.config", "microblog"), DefaultDataDir("microblog"))

	userConfigDir = func() (string, error) { return "", errors.New("no home") }
	assert.Equal(t, ".microblog", DefaultDataDir("microblog"))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := ExpandHome("~/pics/a.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "pics/a.png"), got)

	got, err = ExpandHome("/abs/a.png")
	require.NoError(t, err)
	assert.Equal(t, "/abs/a.png", got)

	got, err = ExpandHome("~user/x")
	require.NoError(t, err)
	assert.Equal(t, "~user/x", got)
}

func TestEnsureDir_CreatesNested(t *testing.T) {
	want := filepath.Join(t.TempDir(), "a", "b")

	got, err := EnsureDir(want)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	fi, err := os.Stat(want)
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	_, err = EnsureDir(want)
	require.NoError(t, err, "idempotent")
}

func TestEnsureDir_ErrorWhenParentIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	_, err := EnsureDir(filepath.Join(file, "sub"))
	assert.ErrorContains(t, err, "mkdir")
}

func TestOpenRegular(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.png")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o600))

	f, size, err := OpenRegular(path)
	require.NoError(t, err)
	defer f.Close()
	assert.EqualValues(t, 5, size)

	_, _, err = OpenRegular(dir)
	assert.ErrorContains(t, err, "not a regular file")

	_, _, err = OpenRegular(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
