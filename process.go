package filestore

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/panics"
	"gitlab.com/tozd/go/errors"
)

type outcomeKind uint8

const (
	outcomeDone outcomeKind = iota
	outcomeFailed
	outcomeLeave
)

// Outcome is what work reports back for a file or batch: Done, Fail or
// Leave. The zero Outcome is Done.
type Outcome struct {
	kind outcomeKind
	err  error
}

// Done reports that work completed; the files go to the success area.
func Done() Outcome { return Outcome{kind: outcomeDone} }

// Fail reports that work failed with err; the files go to the error area.
func Fail(err error) Outcome {
	if err == nil {
		err = errors.New("work failed")
	}
	return Outcome{kind: outcomeFailed, err: err}
}

// Leave reports that the files must stay where they are.
func Leave() Outcome { return Outcome{kind: outcomeLeave} }

// FromError maps a plain error to an Outcome: nil is Done, an error
// matching ErrLeftInPlace is Leave, anything else is Fail.
func FromError(err error) Outcome {
	switch {
	case err == nil:
		return Done()
	case errors.Is(err, ErrLeftInPlace):
		return Leave()
	default:
		return Fail(err)
	}
}

func (o Outcome) IsDone() bool  { return o.kind == outcomeDone }
func (o Outcome) IsLeave() bool { return o.kind == outcomeLeave }

// Err returns the failure carried by a Fail outcome, nil otherwise.
func (o Outcome) Err() error { return o.err }

func (o Outcome) String() string {
	switch o.kind {
	case outcomeFailed:
		return "failed: " + o.err.Error()
	case outcomeLeave:
		return "leave"
	default:
		return "done"
	}
}

// WorkFunc processes one file, given by its path relative to the area.
type WorkFunc func(ctx context.Context, file string) Outcome

// BatchFunc processes a batch of files, given by paths relative to the area.
type BatchFunc func(ctx context.Context, files []string) Outcome

// Process calls work for every file in area, one at a time. A file whose
// work is Done is moved to the success area, or deleted without one. On
// Leave the file stays, and Process stops and returns an error matching
// ErrLeftInPlace. On Fail, or when relocating a done file fails, the failure
// is logged, the file is moved to the error area (or deleted), and Process
// stops and returns the failure. A panic in work counts as a failure.
func (s *Store) Process(ctx context.Context, area string, work WorkFunc, opts ...ProcessOption) error {
	options, err := s.processOptions(opts)
	if err != nil {
		return err
	}
	files, err := s.AreaFiles(area, 0)
	if err != nil {
		return err
	}

	for _, file := range files {
		out := run(func() Outcome { return work(ctx, file) })
		if err := s.settle(area, []string{file}, out, options); err != nil {
			return err
		}
	}
	return nil
}

// ProcessBatch calls work once with up to size files from area and returns
// how many it handled. An empty area returns 0 without calling work. The
// batch is settled as a whole: every file is relocated as Process would
// relocate a single file with the same outcome, and on Leave none is
// touched.
func (s *Store) ProcessBatch(ctx context.Context, size int, area string, work BatchFunc, opts ...ProcessOption) (int, error) {
	if size <= 0 {
		return 0, errors.Errorf("%w: batch size %d", ErrInvalidConfiguration, size)
	}
	options, err := s.processOptions(opts)
	if err != nil {
		return 0, err
	}
	files, err := s.AreaFiles(area, size)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		return 0, nil
	}

	out := run(func() Outcome { return work(ctx, files) })
	if err := s.settle(area, files, out, options); err != nil {
		return 0, err
	}
	return len(files), nil
}

func (s *Store) processOptions(opts []ProcessOption) (*ProcessOptions, error) {
	options := &ProcessOptions{}
	for _, opt := range opts {
		opt(options)
	}
	for _, area := range []string{options.ErrorArea, options.SuccessArea} {
		if area == "" {
			continue
		}
		if _, err := s.declaredAreaPath(area); err != nil {
			return nil, err
		}
	}
	return options, nil
}

// run calls fn, turning a panic into a failure.
func run(fn func() Outcome) (out Outcome) {
	var pc panics.Catcher
	pc.Try(func() { out = fn() })
	if r := pc.Recovered(); r != nil {
		return Fail(r.AsError())
	}
	return out
}

// settle places files according to out and returns the error, if any, the
// caller of Process or ProcessBatch must see.
func (s *Store) settle(area string, files []string, out Outcome, options *ProcessOptions) error {
	switch out.kind {
	case outcomeLeave:
		return errors.Errorf("%w: %d file(s) in %q", ErrLeftInPlace, len(files), area)
	case outcomeDone:
		moved, err := s.relocate(area, files, options.SuccessArea)
		if err == nil {
			return nil
		}
		files = files[moved:]
		out = Fail(err)
	}

	cause := out.err
	s.logFailure(area, files, cause)
	var errs []error
	for _, file := range files {
		if _, err := s.relocate(area, []string{file}, options.ErrorArea); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Error().Err(err).Str("area", area).Strs("files", files).Msg("relocating failed files")
		return errors.Errorf("process %q: %w (relocating: %s)", area, cause, err)
	}
	return errors.Errorf("process %q: %w", area, cause)
}

// relocate moves files from area to dest, or deletes them when dest is
// empty, stopping at the first error. It returns how many were relocated.
func (s *Store) relocate(area string, files []string, dest string) (int, error) {
	for i, file := range files {
		var err error
		if dest == "" {
			err = s.Delete(area, file)
		} else {
			err = s.Move(area, file, dest)
		}
		if err != nil {
			return i, err
		}
	}
	return len(files), nil
}

func (s *Store) logFailure(area string, files []string, err error) {
	s.logger.Error().
		Str("kind", errorKind(err)).
		Str("error", err.Error()).
		Str("area", area).
		Strs("files", files).
		Str("stack", fmt.Sprintf("%+v", errors.WithStack(err))).
		Msg("processing failed")
}

// errorKind names the type of the innermost error in err's chain.
func errorKind(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return fmt.Sprintf("%T", err)
		}
		err = next
	}
}
