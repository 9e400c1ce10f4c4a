// Package walk implements directory enumeration shared by every scanner in
// the store: one predicate deciding which entries are ordinary, and one
// recursive walk parameterised by what it collects.
package walk

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// HiddenPrefix marks entries that are never treated as ordinary.
const HiddenPrefix = "."

// Ordinary reports whether name is visible to scanners.
func Ordinary(name string) bool {
	return name != "" && !strings.HasPrefix(name, HiddenPrefix)
}

// Options configures Walk.
type Options struct {
	Dirs     bool // also collect ordinary directories
	Max      int  // stop after Max collected entries; <= 0 means no cap
	Absolute bool // collect absolute paths instead of paths relative to root
}

// Walk collects ordinary entries beneath root, depth first.
//
// Each directory is read in lexical order, so a capped walk returns the
// first Max entries of that order: a subdirectory is descended into as soon
// as it is reached, before its later siblings. A missing root yields no
// entries.
func Walk(root string, opts Options) ([]string, error) {
	var out []string
	err := walk(root, "", opts, &out)
	if errors.Is(err, errDone) {
		err = nil
	}
	return out, err
}

var errDone = errors.Base("walk: cap reached")

func walk(root, rel string, opts Options, out *[]string) error {
	entries, err := os.ReadDir(filepath.Join(root, rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && rel == "" {
			return nil
		}
		return err
	}

	for _, e := range entries {
		if !Ordinary(e.Name()) {
			continue
		}
		name := filepath.Join(rel, e.Name())
		switch {
		case e.IsDir():
			if opts.Dirs {
				if collect(root, name, opts, out) {
					return errDone
				}
			}
			if err := walk(root, name, opts, out); err != nil {
				return err
			}
		case e.Type().IsRegular():
			if collect(root, name, opts, out) {
				return errDone
			}
		}
	}
	return nil
}

func collect(root, name string, opts Options, out *[]string) (full bool) {
	if opts.Absolute {
		name = filepath.Join(root, name)
	}
	*out = append(*out, name)
	return opts.Max > 0 && len(*out) >= opts.Max
}

// Entries returns the ordinary regular files and directories directly under
// dir. A missing dir yields no entries.
func Entries(dir string) ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	out := entries[:0]
	for _, e := range entries {
		if !Ordinary(e.Name()) {
			continue
		}
		if e.IsDir() || e.Type().IsRegular() {
			out = append(out, e)
		}
	}
	return out, nil
}
