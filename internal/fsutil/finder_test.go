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
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestFindFilesByExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.hcl"))
	touch(t, filepath.Join(dir, "a.hcl"))
	touch(t, filepath.Join(dir, "nested", "c.hcl"))
	touch(t, filepath.Join(dir, "ignored.txt"))

	files, err := FindFilesByExtension(dir, ".hcl")
	require.NoError(t, err)

	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(dir, "a.hcl"), files[0])
	assert.Equal(t, filepath.Join(dir, "b.hcl"), files[1])
	assert.Equal(t, filepath.Join(dir, "nested", "c.hcl"), files[2])
}

func TestFindFilesByExtensionMissingRoot(t *testing.T) {
	_, err := FindFilesByExtension(filepath.Join(t.TempDir(), "nope"), ".hcl")
	assert.Error(t, err)
}

func TestFirstExisting(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "present.hcl")
	touch(t, present)

	assert.Equal(t, present, FirstExisting("", filepath.Join(dir, "missing.hcl"), present))
	assert.Equal(t, "", FirstExisting(filepath.Join(dir, "missing.hcl")))
}
