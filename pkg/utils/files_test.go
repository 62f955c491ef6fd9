package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeDirNested(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b", "c")
	require.NoError(t, MakeDir(dir))
	require.NoError(t, MakeDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestDeleteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))

	require.NoError(t, DeleteFile(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, DeleteFile(path), "missing file")
}

func TestMoveFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "out.tmp.wav")
	dst := filepath.Join(dir, "out.wav")
	require.NoError(t, os.WriteFile(src, []byte("data"), 0o644))

	require.NoError(t, MoveFile(src, dst))
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	assert.Error(t, MoveFile(src, dst))
}

func TestDeleteDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "upload")
	require.NoError(t, MakeDir(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "take.wav"), []byte("RIFF"), 0o644))

	require.NoError(t, DeleteDir(dir))
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
