package filestore

import (
	"io/fs"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// Move renames rel from one area of the store to another, creating missing
// parent directories in the destination.
func (s *Store) Move(from, rel, to string) error {
	src, err := s.FilePath(from, rel)
	if err != nil {
		return err
	}
	dst, err := s.FilePath(to, rel)
	if err != nil {
		return err
	}

	if err := s.moveEntry(src, dst); err != nil {
		return errors.Errorf("move %s from %q to %q: %w", rel, from, to, err)
	}
	s.logger.Debug().Str("file", rel).Str("from", from).Str("to", to).Msg("moved")
	return nil
}

// Delete removes rel from area, recursively.
func (s *Store) Delete(area, rel string) error {
	path, err := s.FilePath(area, rel)
	if err != nil {
		return err
	}
	if err := removeAll(path); err != nil {
		return errors.Errorf("delete %s from %q: %w", rel, area, err)
	}
	s.logger.Debug().Str("file", rel).Str("area", area).Msg("deleted")
	return nil
}

// moveEntry renames src to dst after creating dst's parent. A file at dst
// is replaced; a non-empty directory at dst makes the rename fail.
func (s *Store) moveEntry(src, dst string) error {
	if _, err := os.Lstat(src); err != nil {
		return errors.Errorf("%w: %s", ErrTransferFailed, err)
	}
	if err := mkdirAll(filepath.Dir(dst), s.dirMode); err != nil {
		return errors.Errorf("%w: %s", ErrTransferFailed, err)
	}
	if err := rename(src, dst); err != nil {
		return errors.Errorf("%w: %s", ErrTransferFailed, err)
	}
	return nil
}

// mergeEntry places src at dst without discarding anything already there.
// A directory meeting a directory is merged into it entry by entry, and a
// non-directory replaces a same-named non-directory. When one side is a
// directory and the other is not, src stays where it is; the number of such
// parked entries is returned.
func (s *Store) mergeEntry(src, dst string) (int, error) {
	dstInfo, err := os.Lstat(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, s.moveEntry(src, dst)
	}
	if err != nil {
		return 0, errors.Errorf("%w: %s", ErrTransferFailed, err)
	}
	srcInfo, err := os.Lstat(src)
	if err != nil {
		return 0, errors.Errorf("%w: %s", ErrTransferFailed, err)
	}

	switch {
	case srcInfo.IsDir() && dstInfo.IsDir():
		entries, err := os.ReadDir(src)
		if err != nil {
			return 0, errors.Errorf("%w: %s", ErrTransferFailed, err)
		}
		parked := 0
		for _, e := range entries {
			n, err := s.mergeEntry(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name()))
			parked += n
			if err != nil {
				return parked, err
			}
		}
		return parked, nil
	case !srcInfo.IsDir() && !dstInfo.IsDir():
		return 0, s.moveEntry(src, dst)
	default:
		s.logger.Warn().Str("entry", src).Str("existing", dst).Msg("kind conflict, entry left in staging")
		return 1, nil
	}
}
