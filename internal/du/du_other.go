//go:build !unix

package du

import "io/fs"

// Without block counts, approximate allocation by rounding sizes up to 4KiB.
func usage(path string, d fs.DirEntry) (entryUsage, error) {
	info, err := d.Info()
	if err != nil {
		return entryUsage{}, err
	}
	const block = 4096
	return entryUsage{bytes: (info.Size() + block - 1) / block * block}, nil
}
