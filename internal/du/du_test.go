package du

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKilobytesDoublesWithIdenticalFiles(t *testing.T) {
	root := t.TempDir()
	empty, err := Kilobytes(root)
	require.NoError(t, err)

	data := bytes.Repeat([]byte("x"), 64*1024)
	require.NoError(t, os.WriteFile(filepath.Join(root, "one"), data, 0644))
	one, err := Kilobytes(root)
	require.NoError(t, err)
	assert.Greater(t, one, empty)

	require.NoError(t, os.WriteFile(filepath.Join(root, "two"), data, 0644))
	two, err := Kilobytes(root)
	require.NoError(t, err)

	assert.Equal(t, 2*(one-empty), two-empty)
}

func TestKilobytesCountsHardLinksOnce(t *testing.T) {
	root := t.TempDir()
	data := bytes.Repeat([]byte("y"), 32*1024)
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), data, 0644))
	before, err := Kilobytes(root)
	require.NoError(t, err)

	if err := os.Link(filepath.Join(root, "a"), filepath.Join(root, "b")); err != nil {
		t.Skipf("hard links unsupported: %v", err)
	}
	after, err := Kilobytes(root)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestKilobytesMissing(t *testing.T) {
	_, err := Kilobytes(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
