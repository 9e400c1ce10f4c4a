//go:build unix

package du

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

func usage(path string, d fs.DirEntry) (entryUsage, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return entryUsage{}, &fs.PathError{Op: "lstat", Path: path, Err: err}
	}
	return entryUsage{
		id:     inode{dev: uint64(st.Dev), ino: uint64(st.Ino)},
		bytes:  int64(st.Blocks) * 512,
		linked: !d.IsDir() && st.Nlink > 1,
	}, nil
}
