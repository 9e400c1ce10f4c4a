package filestore

import (
	"io/fs"
	"os"

	"gitlab.com/tozd/go/errors"

	"github.com/trampoline/sonar-connector-filestore/internal/du"
	"github.com/trampoline/sonar-connector-filestore/internal/walk"
)

// ForEach calls fn with the name of every ordinary file and subdirectory
// directly in area. Order is unspecified. Iteration stops at the first
// error returned by fn, which is returned.
func (s *Store) ForEach(area string, fn func(name string) error) error {
	dir, err := s.declaredAreaPath(area)
	if err != nil {
		return err
	}

	entries, err := walk.Entries(dir)
	if err != nil {
		return errors.Errorf("list area %q: %w", area, err)
	}
	for _, e := range entries {
		if err := fn(e.Name()); err != nil {
			return err
		}
	}
	return nil
}

// AreaFiles returns the paths, relative to area, of regular files anywhere
// below area. With limit > 0 at most limit paths are returned: directories are
// read in lexical order and descended into when reached, and the walk stops
// once limit files are collected. The files left out remain untouched.
func (s *Store) AreaFiles(area string, limit int) ([]string, error) {
	dir, err := s.declaredAreaPath(area)
	if err != nil {
		return nil, err
	}

	files, err := walk.Walk(dir, walk.Options{Max: limit})
	if err != nil {
		return nil, errors.Errorf("scan area %q: %w", area, err)
	}
	return files, nil
}

// Count returns the number of entries directly in area, of any kind.
func (s *Store) Count(area string) (int, error) {
	dir, err := s.declaredAreaPath(area)
	if err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, errors.Errorf("count area %q: %w", area, err)
	}
	return len(entries), nil
}

// Size returns the disk usage of area in kilobytes, as du -sk reports it.
func (s *Store) Size(area string) (int64, error) {
	dir, err := s.declaredAreaPath(area)
	if err != nil {
		return 0, err
	}
	return du.Kilobytes(dir)
}

// AreaCounts returns Count for every declared area.
func (s *Store) AreaCounts() (map[string]int, error) {
	counts := make(map[string]int, len(s.areas))
	for area := range s.areas {
		n, err := s.Count(area)
		if err != nil {
			return nil, err
		}
		counts[area] = n
	}
	return counts, nil
}

// AreaSizes returns Size for every declared area.
func (s *Store) AreaSizes() (map[string]int64, error) {
	sizes := make(map[string]int64, len(s.areas))
	for area := range s.areas {
		kb, err := s.Size(area)
		if err != nil {
			return nil, err
		}
		sizes[area] = kb
	}
	return sizes, nil
}
