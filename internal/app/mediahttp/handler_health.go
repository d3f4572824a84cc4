package mediahttp

import (
	"context"
	"net/http"

	"github.com/sir_venger/media_lite/internal/logger"
	"github.com/sir_venger/media_lite/internal/transport"
)

// healthStats — payload ответа /health.
type healthStats struct {
	OK         bool   `json:"ok"`
	FreeBytes  uint64 `json:"free_bytes"`
	TotalBytes uint64 `json:"total_bytes"`
}

// health возвращает свободное и общее место на томе с корнем хранилища.
func (s *Server) health(_ context.Context, _ *transport.Request) *transport.Response {
	st, err := s.Stat(s.Storage.Root)
	if err != nil {
		logger.Warn("health probe failed", "root", s.Storage.Root, "error", err)
		return transport.JSON(http.StatusServiceUnavailable, healthStats{OK: false})
	}

	return transport.JSON(http.StatusOK, healthStats{
		OK:         true,
		FreeBytes:  st.FreeBytes,
		TotalBytes: st.TotalBytes,
	})
}

// gcOnce вручную запускает очистку брошенных временных файлов.
func (s *Server) gcOnce(_ context.Context, _ *transport.Request) *transport.Response {
	if s.Sweeper == nil {
		return &transport.Response{Status: http.StatusNoContent}
	}

	sw := *s.Sweeper
	if sw.TTL <= 0 {
		sw.TTL = manualGCTTL
	}
	n, err := sw.SweepOnce()
	if err != nil {
		logger.Warn("manual temp sweep failed", "error", err)
	} else {
		logger.Info("manual temp sweep finished", "removed", n)
	}
	return &transport.Response{Status: http.StatusNoContent}
}
