package mediahttp

import (
	"context"
	"net/http"

	"github.com/sir_venger/media_lite/internal/logger"
	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/internal/transport"
	"github.com/sir_venger/media_lite/pkg/httperrors"
)

// list отдаёт записи, новые первыми; mediaType в query сужает выборку.
func (s *Server) list(ctx context.Context, req *transport.Request) *transport.Response {
	var filter models.MediaKind
	if raw := req.Query.Get("mediaType"); raw != "" {
		k, ok := models.ParseMediaKind(raw)
		if !ok {
			return httperrors.Response(models.InvalidField("mediaType", raw), s.Now())
		}
		filter = k
	}

	recs, err := s.Storage.List(ctx)
	if err != nil {
		logger.Error("list media failed", "error", err)
		return httperrors.Response(err, s.Now())
	}

	if filter != "" {
		out := recs[:0]
		for _, r := range recs {
			if r.Kind == filter {
				out = append(out, r)
			}
		}
		recs = out
	}

	return s.ok(recs)
}

func (s *Server) get(ctx context.Context, req *transport.Request) *transport.Response {
	rec, err := s.Storage.Get(ctx, req.Param("id"))
	if err != nil {
		return httperrors.Response(err, s.Now())
	}
	return s.ok(rec)
}

func (s *Server) delete(ctx context.Context, req *transport.Request) *transport.Response {
	id := req.Param("id")
	if err := s.Storage.Delete(ctx, id); err != nil {
		if httperrors.Status(err) >= http.StatusInternalServerError {
			logger.Error("delete media failed", "media_id", id, "error", err)
		}
		return httperrors.Response(err, s.Now())
	}

	s.Metrics.Deleted()
	logger.Info("media deleted", "media_id", id)
	return &transport.Response{Status: http.StatusNoContent}
}
