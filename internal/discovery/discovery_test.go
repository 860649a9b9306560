package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("FROM scratch\n"), 0o644))
	}
}

func TestDiscover_Directory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, root,
		"Dockerfile",
		"Dockerfile.dockerignore",
		"api/Containerfile",
		"api/prod.Dockerfile",
		"web/Dockerfile.dev",
		"web/README.md",
		"vendor/lib/Dockerfile",
	)

	files, err := Discover([]string{root}, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "Dockerfile"),
		filepath.Join(root, "api", "Containerfile"),
		filepath.Join(root, "api", "prod.Dockerfile"),
		filepath.Join(root, "vendor", "lib", "Dockerfile"),
		filepath.Join(root, "web", "Dockerfile.dev"),
	}, files)
}

func TestDiscover_Exclude(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, root, "Dockerfile", "vendor/lib/Dockerfile", "test/Dockerfile")
	require.NoError(t, os.WriteFile(filepath.Join(root, IgnoreFileName), []byte("# fixtures\ntest\n"), 0o644))

	files, err := Discover([]string{root}, Options{Exclude: []string{"vendor/**"}})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "Dockerfile")}, files)
}

func TestDiscover_FilesAndStdin(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	touch(t, root, "build.txt")
	explicit := filepath.Join(root, "build.txt")

	files, err := Discover([]string{explicit, "-", explicit}, Options{Exclude: []string{"*.txt"}})
	require.NoError(t, err)
	assert.Equal(t, []string{explicit, "-"}, files)
}

func TestDiscover_Missing(t *testing.T) {
	t.Parallel()

	_, err := Discover([]string{filepath.Join(t.TempDir(), "nope")}, Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadIgnoreFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	patterns, err := LoadIgnoreFile(dir)
	require.NoError(t, err)
	assert.Nil(t, patterns)

	require.NoError(t, os.WriteFile(filepath.Join(dir, IgnoreFileName), []byte("a\n\n# comment\nb/**\n"), 0o644))
	patterns, err = LoadIgnoreFile(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b/**"}, patterns)
}
