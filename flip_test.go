package filestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequentialIDs returns an IDGenerator yielding id-1, id-2, ...
func sequentialIDs() IDGenerator {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("id-%d", n), nil
	}
}

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFlip(t *testing.T) {
	root := t.TempDir()
	a := newStore(t, root, "fs-a", []string{"foo"})
	b := newStore(t, root, "fs-b", []string{"a", "b"})

	require.NoError(t, a.Write("foo", "testfile.txt", []byte("one two three")))
	require.NoError(t, a.Flip("foo", b, "a"))

	data, err := b.Read("a", "fs-a/testfile.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("one two three"), data)

	assert.NoFileExists(t, filepath.Join(a.Path(), "foo", "testfile.txt"))
	n, err := a.Count("foo")
	require.NoError(t, err)
	assert.Zero(t, n)

	// staging cleaned up
	assertEmptyDir(t, filepath.Join(b.Path(), TmpArea))
}

func TestFlipMovesSubdirectoriesWhole(t *testing.T) {
	root := t.TempDir()
	a := newStore(t, root, "fs-a", []string{"foo"})
	b := newStore(t, root, "fs-b", []string{"a"})

	require.NoError(t, a.Write("foo", "x/y/deep.txt", []byte("deep")))
	require.NoError(t, a.Write("foo", "top.txt", []byte("top")))
	require.NoError(t, os.MkdirAll(filepath.Join(a.Path(), "foo", "empty", "dir"), 0755))
	require.NoError(t, a.Write("foo", ".hidden", []byte("h")))

	require.NoError(t, a.Flip("foo", b, "a"))

	files, err := b.AreaFiles("a", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fs-a/x/y/deep.txt", "fs-a/top.txt"}, files)

	// hidden entries stay with the sender; empty directories were scrubbed
	assert.FileExists(t, filepath.Join(a.Path(), "foo", ".hidden"))
	assert.NoDirExists(t, filepath.Join(b.Path(), "a", "fs-a", "empty"))
}

func TestFlipEmptyIsNoop(t *testing.T) {
	root := t.TempDir()
	a := newStore(t, root, "fs-a", []string{"foo"})
	called := false
	b := newStore(t, root, "fs-b", []string{"a"}, WithIDGenerator(func() (string, error) {
		called = true
		return "never", nil
	}))

	require.NoError(t, os.MkdirAll(filepath.Join(a.Path(), "foo", "only", "dirs"), 0755))
	require.NoError(t, a.Flip("foo", b, "a"))

	assert.False(t, called)
	assert.NoDirExists(t, filepath.Join(b.Path(), "a", "fs-a"))
	assert.DirExists(t, filepath.Join(a.Path(), "foo"))
}

func TestFlipMergesIntoDelivered(t *testing.T) {
	root := t.TempDir()
	a := newStore(t, root, "fs-a", []string{"foo"})
	b := newStore(t, root, "fs-b", []string{"a"})

	require.NoError(t, a.Write("foo", "f.txt", []byte("first")))
	require.NoError(t, a.Write("foo", "d/g.txt", []byte("first")))
	require.NoError(t, a.Write("foo", "2024/01/first.eml", []byte("first")))
	require.NoError(t, a.Flip("foo", b, "a"))

	require.NoError(t, a.Write("foo", "f.txt", []byte("second")))
	require.NoError(t, a.Write("foo", "d/h.txt", []byte("second")))
	require.NoError(t, a.Write("foo", "2024/01/second.eml", []byte("second")))
	require.NoError(t, a.Flip("foo", b, "a"))

	// same-named files are replaced
	data, err := b.Read("a", "fs-a/f.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)

	// same-named directories are merged, nothing delivered earlier is lost
	files, err := b.AreaFiles("a", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"fs-a/f.txt",
		"fs-a/d/g.txt",
		"fs-a/d/h.txt",
		"fs-a/2024/01/first.eml",
		"fs-a/2024/01/second.eml",
	}, files)
	assertEmptyDir(t, filepath.Join(b.Path(), TmpArea))
}

func TestFlipParksKindConflicts(t *testing.T) {
	root := t.TempDir()
	a := newStore(t, root, "fs-a", []string{"foo"})
	b := newStore(t, root, "fs-b", []string{"a"}, WithIDGenerator(sequentialIDs()))

	// the receiver holds a directory where the sender now has a file
	require.NoError(t, b.Write("a", "fs-a/x/kept.txt", []byte("kept")))
	require.NoError(t, a.Write("foo", "x", []byte("file")))
	require.NoError(t, a.Write("foo", "y.txt", []byte("y")))
	require.NoError(t, a.Flip("foo", b, "a"))

	data, err := b.Read("a", "fs-a/x/kept.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("kept"), data)
	assert.FileExists(t, filepath.Join(b.Path(), "a", "fs-a", "y.txt"))
	assert.FileExists(t, filepath.Join(b.Path(), TmpArea, "id-1", "x"))

	// once the clash is gone the next flip delivers the parked entry
	require.NoError(t, b.Delete("a", "fs-a/x"))
	require.NoError(t, b.Recover("fs-a", "a"))
	data, err = b.Read("a", "fs-a/x")
	require.NoError(t, err)
	assert.Equal(t, []byte("file"), data)
	assertEmptyDir(t, filepath.Join(b.Path(), TmpArea))
}

func TestFlipWithoutUniqueNames(t *testing.T) {
	root := t.TempDir()
	a := newStore(t, root, "fs-a", []string{"foo"})
	b := newStore(t, root, "fs-b", []string{"a"}, WithIDGenerator(sequentialIDs()))

	require.NoError(t, a.Write("foo", "f.txt", []byte("first")))
	require.NoError(t, a.Flip("foo", b, "a", WithUniqueNames(false)))
	require.NoError(t, a.Write("foo", "f.txt", []byte("second")))
	require.NoError(t, a.Flip("foo", b, "a", WithUniqueNames(false)))

	first, err := b.Read("a", "fs-a/id-1/f.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), first)

	second, err := b.Read("a", "fs-a/id-2/f.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), second)
}

func TestFlipInvalidTargetArea(t *testing.T) {
	root := t.TempDir()
	a := newStore(t, root, "fs-a", []string{"foo"})
	b := newStore(t, root, "fs-b", []string{"a"})
	require.NoError(t, a.Write("foo", "f.txt", []byte("x")))

	err := a.Flip("foo", b, "nope")
	assert.ErrorIs(t, err, ErrInvalidArea)

	// nothing left the sender
	assert.FileExists(t, filepath.Join(a.Path(), "foo", "f.txt"))
}

func TestFlipRecoversInterruptedFlip(t *testing.T) {
	root := t.TempDir()
	a := newStore(t, root, "fs-a", []string{"foo"})
	b := newStore(t, root, "fs-b", []string{"a"}, WithIDGenerator(sequentialIDs()))
	tmp := filepath.Join(b.Path(), TmpArea)

	// fail every rename out of the staging area
	orig := rename
	t.Cleanup(func() { rename = orig })
	rename = func(oldpath, newpath string) error {
		if strings.HasPrefix(oldpath, tmp+string(filepath.Separator)) {
			return &os.LinkError{Op: "rename", Old: oldpath, New: newpath, Err: os.ErrPermission}
		}
		return orig(oldpath, newpath)
	}

	require.NoError(t, a.Write("foo", "testfile.txt", []byte("one two three")))
	err := a.Flip("foo", b, "a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransferFailed)

	// parked in staging, gone from the sender, not yet delivered
	assert.FileExists(t, filepath.Join(tmp, "id-1", "testfile.txt"))
	assert.NoFileExists(t, filepath.Join(a.Path(), "foo", "testfile.txt"))
	assert.NoFileExists(t, filepath.Join(b.Path(), "a", "fs-a", "testfile.txt"))

	rename = orig

	// the next flip, even an empty one received directly, completes it
	require.NoError(t, b.Recover("fs-a", "a"))

	data, err := b.Read("a", "fs-a/testfile.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("one two three"), data)
	assertEmptyDir(t, tmp)
}

func TestFlipCompletesStaleStagingOnNextFlip(t *testing.T) {
	root := t.TempDir()
	a := newStore(t, root, "fs-a", []string{"foo"})
	b := newStore(t, root, "fs-b", []string{"a"})

	// leftovers of a flip that crashed after staging
	stale := filepath.Join(b.Path(), TmpArea, "0190a1b2-0000-7000-8000-000000000000")
	require.NoError(t, os.MkdirAll(stale, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(stale, "stale.txt"), []byte("stale"), 0644))

	require.NoError(t, a.Write("foo", "fresh.txt", []byte("fresh")))
	require.NoError(t, a.Flip("foo", b, "a"))

	files, err := b.AreaFiles("a", 0)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"fs-a/stale.txt", "fs-a/fresh.txt"}, files)
	assertEmptyDir(t, filepath.Join(b.Path(), TmpArea))
}

func TestReceiveFlipRejectsInvalidSource(t *testing.T) {
	b := newStore(t, t.TempDir(), "fs-b", []string{"a"})
	err := b.ReceiveFlip(".hidden", "a", nil, true)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}
