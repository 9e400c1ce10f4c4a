package archive

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.txt":       "alpha",
		"sub/b.txt":   "beta",
		"sub/c/d.bin": string(bytes.Repeat([]byte{0, 1, 2}, 1000)),
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden"), []byte("skip"), 0644))

	for _, level := range []int{1, 2, 3, 0} {
		var buf bytes.Buffer
		n, err := New(level).Write(&buf, dir)
		require.NoError(t, err)
		assert.Equal(t, len(files), n)

		dec, err := zstd.NewReader(&buf)
		require.NoError(t, err)
		tr := tar.NewReader(dec)

		got := make(map[string]string)
		for {
			hdr, err := tr.Next()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			data, err := io.ReadAll(tr)
			require.NoError(t, err)
			got[hdr.Name] = string(data)
		}
		dec.Close()

		assert.Equal(t, files, got, "level %d", level)
	}

	// source untouched
	data, err := os.ReadFile(filepath.Join(dir, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))
}
