package filestore

import "gitlab.com/tozd/go/errors"

var (
	ErrInvalidConfiguration = errors.Base("filestore: invalid configuration")
	ErrInvalidArea          = errors.Base("filestore: invalid area")
	ErrInvalidPath          = errors.Base("filestore: invalid path")
	ErrTransferFailed       = errors.Base("filestore: transfer failed")
	ErrLeftInPlace          = errors.Base("filestore: left in place")
)
