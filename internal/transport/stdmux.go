package transport

import (
	"net/http"
	"time"

	"github.com/sir_venger/media_lite/internal/logger"
)

// StdMuxBackend — бэкенд на http.ServeMux с шаблонами "METHOD /path/{id}".
type StdMuxBackend struct {
	httpServer
	mux *http.ServeMux
}

var _ Backend = (*StdMuxBackend)(nil)

func NewStdMuxBackend(addr string) *StdMuxBackend {
	return &StdMuxBackend{httpServer: httpServer{addr: addr}, mux: http.NewServeMux()}
}

func (b *StdMuxBackend) RegisterRoute(method, path string, h Handler) {
	b.mux.Handle(method+" "+path, adapt(h, paramNames(path), func(r *http.Request, name string) string {
		return r.PathValue(name)
	}))
}

func (b *StdMuxBackend) Start() error {
	return b.start(b)
}

func (b *StdMuxBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	b.mux.ServeHTTP(rec, r)

	logger.Info("request completed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start).String(),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
