package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	t.Run("existing file", func(t *testing.T) {
		assert.True(t, Exists(p))
	})
	t.Run("existing dir", func(t *testing.T) {
		assert.True(t, Exists(dir))
	})
	t.Run("missing path", func(t *testing.T) {
		assert.False(t, Exists(filepath.Join(dir, "missing")))
	})
}

func TestExistsAndRegular(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "f")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	t.Run("regular file", func(t *testing.T) {
		v, err := ExistsAndRegular(p)
		require.NoError(t, err)
		assert.True(t, v)
	})
	t.Run("directory", func(t *testing.T) {
		v, err := ExistsAndRegular(dir)
		require.NoError(t, err)
		assert.False(t, v)
	})
	t.Run("missing path", func(t *testing.T) {
		v, err := ExistsAndRegular(filepath.Join(dir, "missing"))
		require.NoError(t, err)
		assert.False(t, v)
	})
}
