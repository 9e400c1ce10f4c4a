package filestore

import "os"

// Filesystem mutations go through these so tests can inject failures.
var (
	rename    = os.Rename
	mkdirAll  = os.MkdirAll
	removeAll = os.RemoveAll
)
