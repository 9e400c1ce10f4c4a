package filestore

import (
	"path/filepath"

	"gitlab.com/tozd/go/errors"

	"github.com/trampoline/sonar-connector-filestore/internal/walk"
)

// Flip hands every entry of area over to targetArea of target, where it
// lands under a directory named after this store. Subdirectories move as
// units. Nothing happens, and target is not touched, when area is empty.
func (s *Store) Flip(area string, target *Store, targetArea string, opts ...FlipOption) error {
	options := &FlipOptions{UniqueNames: true}
	for _, opt := range opts {
		opt(options)
	}

	if err := s.Scrub(area); err != nil {
		return err
	}
	dir, err := s.declaredAreaPath(area)
	if err != nil {
		return err
	}

	entries, err := walk.Entries(dir)
	if err != nil {
		return errors.Errorf("list area %q: %w", area, err)
	}
	if len(entries) == 0 {
		return nil
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		paths = append(paths, filepath.Join(dir, e.Name()))
	}

	if err := target.ReceiveFlip(s.name, targetArea, paths, options.UniqueNames); err != nil {
		return errors.Errorf("flip %q to %s/%s: %w", area, target.Name(), targetArea, err)
	}
	s.logger.Info().
		Str("area", area).
		Str("target", target.Name()).
		Str("target_area", targetArea).
		Int("entries", len(paths)).
		Msg("flipped")
	return nil
}

// ReceiveFlip is the receiving half of Flip, run in this store's directory
// space. The given paths are first parked in a freshly named directory
// under tmp/, then every entry found under tmp/ is placed into
// area/<source>/. Since the second step sweeps all of tmp/, a call also
// finishes any earlier flip that was interrupted between the two steps; an
// empty paths does only that.
//
// With uniqueNames the contents of each staging directory are merged into
// area/<source>/: directories are merged recursively and same-named files
// replaced. Without it each staging directory is placed there whole, under
// its id. Content already delivered is never removed; an entry that clashes
// with an existing one of the other kind (file against directory) stays
// parked in tmp/ and is retried by the next flip.
func (s *Store) ReceiveFlip(source, area string, paths []string, uniqueNames bool) error {
	if !ValidName(source) {
		return errors.Errorf("%w: source store name %q", ErrInvalidConfiguration, source)
	}
	dst, err := s.FilePath(area, source)
	if err != nil {
		return err
	}
	tmp, err := s.AreaPath(TmpArea)
	if err != nil {
		return err
	}

	if len(paths) > 0 {
		if err := s.stage(tmp, paths); err != nil {
			return err
		}
	}

	staged, err := walk.Entries(tmp)
	if err != nil {
		return errors.Errorf("list staging area: %w", err)
	}
	parked := 0
	for _, e := range staged {
		path := filepath.Join(tmp, e.Name())
		if !uniqueNames || !e.IsDir() {
			n, err := s.mergeEntry(path, filepath.Join(dst, e.Name()))
			parked += n
			if err != nil {
				return errors.Errorf("place %s: %w", e.Name(), err)
			}
			continue
		}

		contents, err := walk.Entries(path)
		if err != nil {
			return errors.Errorf("list staging dir %s: %w", e.Name(), err)
		}
		for _, c := range contents {
			n, err := s.mergeEntry(filepath.Join(path, c.Name()), filepath.Join(dst, c.Name()))
			parked += n
			if err != nil {
				return errors.Errorf("place %s/%s: %w", e.Name(), c.Name(), err)
			}
		}
	}

	if err := s.scrubDir(tmp); err != nil {
		return err
	}
	if err := s.ensureArea(TmpArea); err != nil {
		return err
	}
	s.logger.Debug().
		Str("source", source).
		Str("area", area).
		Int("received", len(paths)).
		Int("reconciled", len(staged)).
		Int("parked", parked).
		Msg("flip received")
	return nil
}

// stage moves paths into a new uniquely named directory under tmp.
func (s *Store) stage(tmp string, paths []string) error {
	id, err := s.newID()
	if err != nil {
		return errors.Errorf("generate staging id: %w", err)
	}
	dir := filepath.Join(tmp, id)
	if err := mkdirAll(dir, s.dirMode); err != nil {
		return errors.Errorf("create staging dir: %w", err)
	}
	for _, p := range paths {
		if err := s.moveEntry(p, filepath.Join(dir, filepath.Base(p))); err != nil {
			return errors.Errorf("stage %s: %w", p, err)
		}
	}
	return nil
}

// Recover finishes flips into area from source that were interrupted after
// staging. It is ReceiveFlip with nothing new to receive.
func (s *Store) Recover(source, area string, opts ...FlipOption) error {
	options := &FlipOptions{UniqueNames: true}
	for _, opt := range opts {
		opt(options)
	}
	return s.ReceiveFlip(source, area, nil, options.UniqueNames)
}
