// Package du reports disk usage the way du -sk does: allocated blocks of
// every entry in a tree, including directories, with hard links counted once.
package du

import (
	"io/fs"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

type inode struct {
	dev, ino uint64
}

// Kilobytes returns the disk usage of the tree rooted at path, in KiB
// rounded up.
func Kilobytes(path string) (int64, error) {
	var total int64
	seen := make(map[inode]struct{})

	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		u, err := usage(p, d)
		if err != nil {
			return err
		}
		if u.linked {
			if _, dup := seen[u.id]; dup {
				return nil
			}
			seen[u.id] = struct{}{}
		}
		total += u.bytes
		return nil
	})
	if err != nil {
		return 0, errors.Errorf("disk usage of %s: %w", path, err)
	}

	return (total + 1023) / 1024, nil
}

type entryUsage struct {
	id     inode
	bytes  int64
	linked bool // more than one hard link; count once per id
}
