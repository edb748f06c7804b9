package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func TestFindFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.yaml"))
	touch(t, filepath.Join(dir, "nested", "a.yaml"))
	touch(t, filepath.Join(dir, "other.txt"))

	files, err := FindFilesByExtension(dir, ".yaml")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "b.yaml"),
		filepath.Join(dir, "nested", "a.yaml"),
	}, files)
}

func TestFindFilesByExtensionEmptyExtensionPanics(t *testing.T) {
	assert.Panics(t, func() {
		FindFilesByExtension(t.TempDir(), "")
	})
}

func TestResolveManifestPath(t *testing.T) {
	t.Run("file path returned as is", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "custom.yaml")
		touch(t, file)

		got, err := ResolveManifestPath(file)
		require.NoError(t, err)
		assert.Equal(t, file, got)
	})

	t.Run("directory with well-known name", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, DefaultManifestName))
		touch(t, filepath.Join(dir, "other.yaml"))

		got, err := ResolveManifestPath(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, DefaultManifestName), got)
	})

	t.Run("directory with single yaml file", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "deploy.yaml"))

		got, err := ResolveManifestPath(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "deploy.yaml"), got)
	})

	t.Run("empty directory fails", func(t *testing.T) {
		_, err := ResolveManifestPath(t.TempDir())
		assert.ErrorContains(t, err, "no manifest file found")
	})

	t.Run("ambiguous directory fails", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "one.yaml"))
		touch(t, filepath.Join(dir, "two.yaml"))

		_, err := ResolveManifestPath(dir)
		assert.ErrorContains(t, err, "multiple manifest candidates")
	})

	t.Run("missing path fails", func(t *testing.T) {
		_, err := ResolveManifestPath(filepath.Join(t.TempDir(), "absent"))
		assert.ErrorContains(t, err, "failed to stat")
	})
}
