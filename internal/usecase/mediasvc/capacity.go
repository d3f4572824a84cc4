package mediasvc

import (
	"fmt"

	"github.com/sir_venger/media_lite/internal/models"
)

// SpaceProbe сообщает свободное место на томе, содержащем path.
type SpaceProbe interface {
	Available(path string) (uint64, error)
}

// CapacityGuard требует свободного места не меньше двух размеров payload'а:
// запас на временный файл и накладные расходы записи.
type CapacityGuard struct {
	probe SpaceProbe
	root  string
}

// NewCapacityGuard создаёт проверку для тома, на котором лежит root.
func NewCapacityGuard(probe SpaceProbe, root string) *CapacityGuard {
	return &CapacityGuard{probe: probe, root: root}
}

// Check возвращает ErrInsufficientStorage, если свободно меньше 2×size.
func (g *CapacityGuard) Check(size int64) error {
	if size < 0 {
		size = 0
	}

	avail, err := g.probe.Available(g.root)
	if err != nil {
		return fmt.Errorf("probe free space: %w", err)
	}

	need := 2 * uint64(size)
	if avail < need {
		return fmt.Errorf("%w: need %d bytes, %d available", models.ErrInsufficientStorage, need, avail)
	}
	return nil
}
