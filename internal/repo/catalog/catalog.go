// Package catalog — вторичный индекс MediaRecord: in-memory или Postgres.
package catalog

import (
	"context"
	"strings"

	"github.com/sir_venger/media_lite/internal/models"
)

// Store — общий интерфейс реализаций каталога.
type Store interface {
	Get(ctx context.Context, id string) (models.MediaRecord, error)
	Save(ctx context.Context, rec models.MediaRecord) error
	Delete(ctx context.Context, id string) error
	Close()
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PGStore)(nil)
)

// Open выбирает реализацию по DSN: для memory:// и пустой строки память, иначе Postgres.
func Open(ctx context.Context, dsn string) (Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" || strings.HasPrefix(dsn, "memory://") {
		return NewMemoryStore(), nil
	}
	return NewPGStore(ctx, dsn)
}
