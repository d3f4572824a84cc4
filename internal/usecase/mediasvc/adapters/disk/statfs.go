//go:build linux || darwin || freebsd

package disk

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Stat возвращает свободный и полный объём тома, содержащего path.
func Stat(path string) (Stats, error) {
	var fs unix.Statfs_t
	if err := unix.Statfs(path, &fs); err != nil {
		return Stats{}, fmt.Errorf("statfs %s: %w", path, err)
	}

	bsize := uint64(fs.Bsize)
	return Stats{
		FreeBytes:  uint64(fs.Bavail) * bsize,
		TotalBytes: uint64(fs.Blocks) * bsize,
	}, nil
}
