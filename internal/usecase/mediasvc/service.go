package mediasvc

import (
	"context"
	"time"

	"github.com/spf13/afero"

	"github.com/sir_venger/media_lite/internal/models"
)

const (
	// DefaultCopyChunkSize — размер чанка при копировании из spool-файла.
	DefaultCopyChunkSize = 8 << 20

	metadataDir = "metadata"
)

type (
	// Catalog — вторичный индекс записей; источником истины остаются sidecar-файлы.
	Catalog interface {
		Get(ctx context.Context, id string) (models.MediaRecord, error)
		Save(ctx context.Context, rec models.MediaRecord) error
		Delete(ctx context.Context, id string) error
	}

	// Service объединяет операции над сохранённым медиа.
	Service interface {
		SaveInline(ctx context.Context, data []byte, req SaveRequest) (models.MediaRecord, error)
		SaveStreaming(ctx context.Context, spoolPath string, req SaveRequest) (models.MediaRecord, error)
		List(ctx context.Context) ([]models.MediaRecord, error)
		Get(ctx context.Context, id string) (models.MediaRecord, error)
		Delete(ctx context.Context, id string) error
	}
)

// SaveRequest — что и как сохранять.
type SaveRequest struct {
	Filename     string
	Kind         models.MediaKind
	CapturedAt   time.Time
	MIMEOverride string
}

type Deps struct {
	Fs            afero.Fs
	Root          string
	Catalog       Catalog
	CopyChunkSize int
	Now           func() time.Time
}

// Storage хранит payload'ы в {photos|videos}/{yyyy}/{mm} и sidecar'ы в metadata/.
type Storage struct {
	Deps
}

var _ Service = (*Storage)(nil)

// New конструирует хранилище с заданными зависимостями.
func New(deps Deps) *Storage {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.CopyChunkSize <= 0 {
		deps.CopyChunkSize = DefaultCopyChunkSize
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Storage{Deps: deps}
}
