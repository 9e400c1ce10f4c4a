package filestore

import (
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"gitlab.com/tozd/go/errors"

	"github.com/trampoline/sonar-connector-filestore/internal/walk"
)

// Scrub removes every empty subdirectory of area, depth first. A directory
// holding a file anywhere below it is kept together with all its ancestors.
// Hidden entries are never descended into and keep their parent. The area
// directory itself is recreated if it ended up empty.
func (s *Store) Scrub(area string) error {
	dir, err := s.declaredAreaPath(area)
	if err != nil {
		return err
	}
	if err := s.scrubDir(dir); err != nil {
		return err
	}
	return s.ensureArea(area)
}

func (s *Store) scrubDir(dir string) error {
	removed, err := scrub(dir)
	if err != nil {
		return errors.Errorf("scrub %s: %w", dir, err)
	}
	if removed {
		s.logger.Debug().Str("path", dir).Msg("scrubbed empty area")
	}
	return nil
}

// scrub removes dir and its subdirectories when they hold no files, and
// reports whether dir itself was removed.
func scrub(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	empty := true
	for _, e := range entries {
		if !walk.Ordinary(e.Name()) || !e.IsDir() {
			empty = false
			continue
		}
		removed, err := scrub(filepath.Join(dir, e.Name()))
		if err != nil {
			return false, err
		}
		if !removed {
			empty = false
		}
	}
	if !empty {
		return false, nil
	}

	if err := os.Remove(dir); err != nil {
		// Something was written into dir since it was read.
		if errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EEXIST) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
