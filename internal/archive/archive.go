// Package archive writes zstd-compressed tar snapshots of an area.
package archive

import (
	"archive/tar"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"gitlab.com/tozd/go/errors"

	"github.com/trampoline/sonar-connector-filestore/internal/walk"
)

type Archiver struct {
	level zstd.EncoderLevel
}

// New returns an Archiver compressing at level 1 (fastest) to 3 (best).
// Other values use the default level.
func New(level int) *Archiver {
	var encoderLevel zstd.EncoderLevel
	switch level {
	case 1:
		encoderLevel = zstd.SpeedFastest
	case 2:
		encoderLevel = zstd.SpeedDefault
	case 3:
		encoderLevel = zstd.SpeedBetterCompression
	default:
		encoderLevel = zstd.SpeedDefault
	}
	return &Archiver{level: encoderLevel}
}

// Write archives every ordinary file below dir into w, with names relative
// to dir, and returns the number of files written. Files are only read.
func (a *Archiver) Write(w io.Writer, dir string) (int, error) {
	files, err := walk.Walk(dir, walk.Options{})
	if err != nil {
		return 0, errors.Errorf("scan %s: %w", dir, err)
	}

	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(a.level))
	if err != nil {
		return 0, errors.Errorf("create encoder: %w", err)
	}
	tw := tar.NewWriter(enc)

	for _, rel := range files {
		if err := addFile(tw, dir, rel); err != nil {
			enc.Close()
			return 0, err
		}
	}

	if err := tw.Close(); err != nil {
		enc.Close()
		return 0, errors.Errorf("close tar: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, errors.Errorf("close encoder: %w", err)
	}
	return len(files), nil
}

func addFile(tw *tar.Writer, dir, rel string) error {
	f, err := os.Open(filepath.Join(dir, rel))
	if err != nil {
		return errors.Errorf("open %s: %w", rel, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return errors.Errorf("stat %s: %w", rel, err)
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return errors.Errorf("header %s: %w", rel, err)
	}
	hdr.Name = filepath.ToSlash(rel)

	if err := tw.WriteHeader(hdr); err != nil {
		return errors.Errorf("write header %s: %w", rel, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return errors.Errorf("write %s: %w", rel, err)
	}
	return nil
}
