//go:build windows

package disk

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// Stat возвращает свободный и полный объём тома, содержащего path.
func Stat(path string) (Stats, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return Stats{}, fmt.Errorf("statfs %s: %w", path, err)
	}

	var free, total, totalFree uint64
	if err = windows.GetDiskFreeSpaceEx(p, &free, &total, &totalFree); err != nil {
		return Stats{}, fmt.Errorf("statfs %s: %w", path, err)
	}
	return Stats{FreeBytes: free, TotalBytes: total}, nil
}
