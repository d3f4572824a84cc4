package mediahttp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/afero"

	"github.com/sir_venger/media_lite/internal/config"
	"github.com/sir_venger/media_lite/internal/metrics"
	"github.com/sir_venger/media_lite/internal/repo/catalog"
	"github.com/sir_venger/media_lite/internal/transport"
	"github.com/sir_venger/media_lite/internal/usecase/ingest"
	"github.com/sir_venger/media_lite/internal/usecase/mediasvc"
	"github.com/sir_venger/media_lite/internal/usecase/mediasvc/adapters/disk"
	"github.com/sir_venger/media_lite/pkg/formdata"
	"github.com/sir_venger/media_lite/pkg/mediaproto"
)

const manualGCTTL = 24 * time.Hour

type Deps struct {
	Storage *mediasvc.Storage
	Upload  transport.Handler
	Metrics *metrics.Metrics
	Sweeper *mediasvc.Sweeper
	Stat    func(path string) (disk.Stats, error)
	Now     func() time.Time
}

// Server держит зависимости обработчиков.
type Server struct {
	Deps

	closers []func()
}

func New(deps Deps) *Server {
	if deps.Stat == nil {
		deps.Stat = disk.Stat
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Server{Deps: deps}
}

// NewServer конструктор: поднимает каталог, хранилище и оркестратор по конфигурации.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	cat, err := catalog.Open(ctx, cfg.CatalogDSN)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}

	fs := afero.NewOsFs()
	if err = fs.MkdirAll(cfg.MediaRoot, 0o755); err != nil {
		cat.Close()
		return nil, fmt.Errorf("create media root: %w", err)
	}

	storage := mediasvc.New(mediasvc.Deps{
		Fs:            fs,
		Root:          cfg.MediaRoot,
		Catalog:       cat,
		CopyChunkSize: int(cfg.CopyChunkSize),
	})
	m := metrics.New(nil)

	orch := ingest.New(ingest.Deps{
		Storage:  storage,
		Capacity: mediasvc.NewCapacityGuard(disk.NewStatfsProbe(), cfg.MediaRoot),
		Ingester: formdata.NewIngester(formdata.IngesterConfig{
			Fs:            fs,
			TempRoot:      cfg.TempDir,
			ReadChunkSize: int(cfg.ReadChunkSize),
			MaxFieldBytes: int64(cfg.MaxFieldSize),
		}),
		InlineThreshold: int64(cfg.InlineThreshold),
		Metrics:         m,
	})

	sweeper := &mediasvc.Sweeper{
		Fs:        fs,
		MediaRoot: cfg.MediaRoot,
		TempRoot:  cfg.TempDir,
		TTL:       cfg.GCTTL,
	}

	srv := New(Deps{
		Storage: storage,
		Upload:  orch,
		Metrics: m,
		Sweeper: sweeper,
	})
	srv.closers = append(srv.closers,
		mediasvc.StartGC(sweeper, cfg.GCInterval),
		cat.Close,
	)

	return srv, nil
}

// Register вешает маршруты сервиса на бэкенд.
func (s *Server) Register(b transport.Backend) {
	b.RegisterRoute(http.MethodPost, mediaproto.PathUpload, s.Upload)
	b.RegisterRoute(http.MethodGet, mediaproto.PathMedia, transport.HandlerFunc(s.list))
	b.RegisterRoute(http.MethodGet, mediaproto.PathMediaID, transport.HandlerFunc(s.get))
	b.RegisterRoute(http.MethodDelete, mediaproto.PathMediaID, transport.HandlerFunc(s.delete))
	b.RegisterRoute(http.MethodGet, mediaproto.PathHealth, transport.HandlerFunc(s.health))
	b.RegisterRoute(http.MethodGet, mediaproto.PathMetrics, transport.FromHTTP(s.Metrics.Handler()))
	b.RegisterRoute(http.MethodPost, mediaproto.PathGC, transport.HandlerFunc(s.gcOnce))
}

// Close останавливает фоновую очистку и закрывает каталог.
func (s *Server) Close() {
	for _, c := range s.closers {
		c()
	}
	s.closers = nil
}

// envelope — обёртка успешных ответов, кроме загрузки.
type envelope struct {
	Status          string    `json:"status"`
	ServerTimestamp time.Time `json:"serverTimestamp"`
	Data            any       `json:"data,omitempty"`
}

func (s *Server) ok(data any) *transport.Response {
	return transport.JSON(http.StatusOK, envelope{
		Status:          "success",
		ServerTimestamp: s.Now().UTC(),
		Data:            data,
	})
}
