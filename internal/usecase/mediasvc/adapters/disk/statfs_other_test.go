//go:build !(linux || darwin || freebsd || windows)

package disk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStat_Unsupported(t *testing.T) {
	_, err := Stat(t.TempDir())
	assert.True(t, errors.Is(err, errors.ErrUnsupported))

	_, err = NewStatfsProbe().Available(t.TempDir())
	assert.ErrorIs(t, err, errors.ErrUnsupported)
}
