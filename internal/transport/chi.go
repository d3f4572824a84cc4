package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sir_venger/media_lite/internal/logger"
)

// ChiBackend — бэкенд на go-chi с request id, логированием и recover.
type ChiBackend struct {
	httpServer
	router chi.Router
}

var _ Backend = (*ChiBackend)(nil)

func NewChiBackend(addr string) *ChiBackend {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	return &ChiBackend{httpServer: httpServer{addr: addr}, router: r}
}

func (b *ChiBackend) RegisterRoute(method, path string, h Handler) {
	b.router.Method(method, path, adapt(h, paramNames(path), chi.URLParam))
}

func (b *ChiBackend) Start() error {
	return b.start(b.router)
}

func (b *ChiBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// requestLogger пишет метод, путь, статус и длительность каждого запроса.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		logger.Info("request completed",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		)
	})
}
