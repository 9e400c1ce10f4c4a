package filestore

import (
	"io/fs"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// TmpArea is the reserved staging area present in every store.
const TmpArea = "tmp"

// DefaultDirMode is the permission used for directories the store creates.
const DefaultDirMode fs.FileMode = 0755

// IDGenerator returns a fresh, sortable, collision-resistant identifier.
type IDGenerator func() (string, error)

// Options configures a Store.
type Options struct {
	Logger  zerolog.Logger
	NewID   IDGenerator
	DirMode fs.FileMode
}

// Option is a functional option for configuring New.
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		Logger:  log.Logger,
		NewID:   uuidV7,
		DirMode: DefaultDirMode,
	}
}

// WithLogger sets the logger used for processing failures and transfers.
// Defaults to the process-wide zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithIDGenerator sets the generator used to name flip staging directories.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *Options) {
		if gen != nil {
			o.NewID = gen
		}
	}
}

// WithDirMode sets the permission of directories created by the store.
func WithDirMode(mode fs.FileMode) Option {
	return func(o *Options) {
		if mode != 0 {
			o.DirMode = mode
		}
	}
}

func uuidV7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// FlipOptions configures Flip.
type FlipOptions struct {
	UniqueNames bool
}

// FlipOption is a functional option for configuring Flip.
type FlipOption func(*FlipOptions)

// WithUniqueNames controls how staged entries land in the target area.
// When true (the default) the contents of each staging directory are merged
// into <area>/<source>/, overwriting same-named entries. When false each
// staging directory is moved as a unit, keeping batches apart.
func WithUniqueNames(unique bool) FlipOption {
	return func(o *FlipOptions) { o.UniqueNames = unique }
}

// ProcessOptions configures Process and ProcessBatch.
type ProcessOptions struct {
	ErrorArea   string
	SuccessArea string
}

// ProcessOption is a functional option for configuring Process and
// ProcessBatch.
type ProcessOption func(*ProcessOptions)

// ErrorArea routes failed files to area. Without it failed files are deleted.
func ErrorArea(area string) ProcessOption {
	return func(o *ProcessOptions) { o.ErrorArea = area }
}

// SuccessArea routes processed files to area. Without it processed files
// are deleted.
func SuccessArea(area string) ProcessOption {
	return func(o *ProcessOptions) { o.SuccessArea = area }
}
