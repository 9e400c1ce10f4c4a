package filestore

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/trampoline/sonar-connector-filestore/internal/walk"
)

// Store is a named directory under a root, divided into areas.
//
// Layout on disk:
//
//	root/name/
//	  tmp/          (reserved, flip staging)
//	  <area>/...    (one per declared area)
//
// A Store is immutable after New; only the contents of its areas change.
type Store struct {
	root  string
	name  string
	areas map[string]struct{}

	logger  zerolog.Logger
	newID   IDGenerator
	dirMode fs.FileMode
}

// New creates a store named name under the existing directory root with the
// given areas, creating root/name, its tmp staging directory and one
// directory per area. Existing directories are reused.
func New(root, name string, areas []string, opts ...Option) (*Store, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Errorf("%w: root %q: %s", ErrInvalidConfiguration, root, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%w: root %q is not a directory", ErrInvalidConfiguration, root)
	}
	if !ValidName(name) {
		return nil, errors.Errorf("%w: store name %q", ErrInvalidConfiguration, name)
	}

	s := &Store{
		root:    root,
		name:    name,
		areas:   make(map[string]struct{}, len(areas)),
		logger:  options.Logger.With().Str("filestore", name).Logger(),
		newID:   options.NewID,
		dirMode: options.DirMode,
	}
	for _, area := range areas {
		if !ValidAreaName(area) {
			return nil, errors.Errorf("%w: area name %q", ErrInvalidConfiguration, area)
		}
		s.areas[area] = struct{}{}
	}

	if err := mkdirAll(s.Path(), s.dirMode); err != nil {
		return nil, errors.Errorf("create store dir: %w", err)
	}
	if err := s.ensureArea(TmpArea); err != nil {
		return nil, err
	}
	for area := range s.areas {
		if err := s.ensureArea(area); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// ValidName reports whether name may be used for a store.
func ValidName(name string) bool {
	return walk.Ordinary(name) && !strings.ContainsAny(name, `/\`)
}

// ValidAreaName reports whether name may be declared as an area.
func ValidAreaName(name string) bool {
	return ValidName(name) && name != TmpArea
}

func (s *Store) Root() string { return s.root }
func (s *Store) Name() string { return s.name }

// Path returns root/name.
func (s *Store) Path() string {
	return filepath.Join(s.root, s.name)
}

// Areas returns the declared areas, sorted. The tmp area is not included.
func (s *Store) Areas() []string {
	areas := make([]string, 0, len(s.areas))
	for area := range s.areas {
		areas = append(areas, area)
	}
	slices.Sort(areas)
	return areas
}

// HasArea reports whether area is declared.
func (s *Store) HasArea(area string) bool {
	_, ok := s.areas[area]
	return ok
}

// AreaPath returns the directory of area. The reserved tmp area resolves
// too, but is not accepted by the other area-taking operations.
func (s *Store) AreaPath(area string) (string, error) {
	if area != TmpArea && !s.HasArea(area) {
		return "", errors.Errorf("%w: %q in store %q", ErrInvalidArea, area, s.name)
	}
	return filepath.Join(s.Path(), area), nil
}

// FilePath returns the path of rel within area. Existence is not checked.
// rel must name something strictly below area: absolute paths, paths
// leaving the area through "..", and paths resolving to the area itself
// are rejected with ErrInvalidPath.
func (s *Store) FilePath(area, rel string) (string, error) {
	dir, err := s.declaredAreaPath(area)
	if err != nil {
		return "", err
	}
	if !filepath.IsLocal(rel) || filepath.Clean(rel) == "." {
		return "", errors.Errorf("%w: %q in area %q", ErrInvalidPath, rel, area)
	}
	return filepath.Join(dir, rel), nil
}

// declaredAreaPath is AreaPath without the tmp exception.
func (s *Store) declaredAreaPath(area string) (string, error) {
	if !s.HasArea(area) {
		return "", errors.Errorf("%w: %q in store %q", ErrInvalidArea, area, s.name)
	}
	return filepath.Join(s.Path(), area), nil
}

func (s *Store) ensureArea(area string) error {
	dir, err := s.AreaPath(area)
	if err != nil {
		return err
	}
	if err := mkdirAll(dir, s.dirMode); err != nil {
		return errors.Errorf("create area %q: %w", area, err)
	}
	return nil
}

// Destroy removes root/name and everything below it.
func (s *Store) Destroy() error {
	if err := removeAll(s.Path()); err != nil {
		return errors.Errorf("destroy %s: %w", s.Path(), err)
	}
	s.logger.Debug().Str("path", s.Path()).Msg("store destroyed")
	return nil
}

// Write stores data at rel within area, creating parent directories. The
// content is written to a hidden temporary file next to the destination and
// renamed into place, so scanners never observe a partial file.
func (s *Store) Write(area, rel string, data []byte) error {
	path, err := s.FilePath(area, rel)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := mkdirAll(dir, s.dirMode); err != nil {
		return errors.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, walk.HiddenPrefix+"write-*")
	if err != nil {
		return errors.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Errorf("write %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Errorf("write %s: %w", rel, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return errors.Errorf("chmod %s: %w", rel, err)
	}

	if err := rename(tmp.Name(), path); err != nil {
		return errors.Errorf("%w: write %s: %s", ErrTransferFailed, rel, err)
	}
	return nil
}

// Read returns the content stored at rel within area.
func (s *Store) Read(area, rel string) ([]byte, error) {
	path, err := s.FilePath(area, rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("read %s: %w", rel, err)
	}
	return data, nil
}
