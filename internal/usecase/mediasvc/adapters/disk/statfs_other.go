//go:build !(linux || darwin || freebsd || windows)

package disk

import (
	"errors"
	"fmt"
)

// Stat на платформах без поддержки всегда возвращает errors.ErrUnsupported:
// CapacityGuard отклоняет загрузку, /health отвечает 503.
func Stat(path string) (Stats, error) {
	return Stats{}, fmt.Errorf("statfs %s: %w", path, errors.ErrUnsupported)
}
