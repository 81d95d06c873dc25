package filemanager

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aleister1102/isolatedaudit/internal/common/errorwrapper"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileManager_OpenAppend_CreatesParentsAndReportsEmpty(t *testing.T) {
	fm := NewFileManager(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "results", "nested", "out.csv")

	f, empty, err := fm.OpenAppend(path, DefaultFileAppendOptions())
	require.NoError(t, err)
	assert.True(t, empty)
	_, err = f.WriteString("first\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, empty, err = fm.OpenAppend(path, DefaultFileAppendOptions())
	require.NoError(t, err)
	assert.False(t, empty)
	_, err = f.WriteString("second\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}

func TestFileManager_EnsureDirectory_RejectsFile(t *testing.T) {
	fm := NewFileManager(zerolog.Nop())
	path := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	err := fm.EnsureDirectory(path, 0755)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errorwrapper.ErrInvalidInput))
}

func TestFileManager_ReadFile(t *testing.T) {
	fm := NewFileManager(zerolog.Nop())
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("run: {}\n"), 0644))

	data, err := fm.ReadFile(path, DefaultFileReadOptions())
	require.NoError(t, err)
	assert.Equal(t, "run: {}\n", string(data))

	_, err = fm.ReadFile(path, FileReadOptions{MaxSize: 2})
	assert.Error(t, err)

	_, err = fm.ReadFile(dir, DefaultFileReadOptions())
	assert.Error(t, err)

	_, err = fm.ReadFile(filepath.Join(dir, "missing.yaml"), DefaultFileReadOptions())
	assert.True(t, errors.Is(err, errorwrapper.ErrNotFound))
}
