// Package ingest собирает разбор, проверку и сохранение загрузки в одну операцию.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/sir_venger/media_lite/internal/logger"
	"github.com/sir_venger/media_lite/internal/metrics"
	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/internal/transport"
	"github.com/sir_venger/media_lite/internal/usecase/mediasvc"
	"github.com/sir_venger/media_lite/pkg/formdata"
	"github.com/sir_venger/media_lite/pkg/httperrors"
)

const (
	msgMultipartRequired = "Content-Type must be multipart/form-data with a boundary"
	msgEmptyBody         = "Request body is empty"
)

// CapacityChecker проверяет, хватит ли места под payload заданного размера.
type CapacityChecker interface {
	Check(size int64) error
}

type Deps struct {
	Storage  mediasvc.Service
	Capacity CapacityChecker
	Ingester *formdata.Ingester
	// InlineThreshold — тела с известной длиной не больше порога разбираются целиком в памяти.
	InlineThreshold int64
	Metrics         *metrics.Metrics
	Now             func() time.Time
}

// Orchestrator — единственный обработчик загрузки, видимый транспорту.
type Orchestrator struct {
	Deps
}

var _ transport.Handler = (*Orchestrator)(nil)

func New(deps Deps) *Orchestrator {
	if deps.Ingester == nil {
		deps.Ingester = formdata.NewIngester(formdata.IngesterConfig{})
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Orchestrator{Deps: deps}
}

// successBody — тело ответа при успешной загрузке.
type successBody struct {
	Status          string           `json:"status"`
	MediaID         string           `json:"mediaId"`
	Filename        string           `json:"filename"`
	MediaType       models.MediaKind `json:"mediaType"`
	FileSize        int64            `json:"fileSize"`
	ServerTimestamp time.Time        `json:"serverTimestamp"`
}

// Handle обрабатывает POST с multipart-телом и всегда возвращает ответ.
func (o *Orchestrator) Handle(ctx context.Context, req *transport.Request) (resp *transport.Response) {
	var (
		kind    models.MediaKind
		size    int64
		failure error
	)
	done := o.Metrics.UploadStarted()
	defer func() {
		done(outcome(resp.Status, failure), string(kind), size)
	}()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("upload panicked", "panic", r)
			resp = httperrors.Reject(http.StatusInternalServerError, "Internal server error", o.Now())
		}
	}()

	boundary, ok := multipartBoundary(req.Header.Get("Content-Type"))
	if !ok {
		return httperrors.Reject(http.StatusBadRequest, msgMultipartRequired, o.Now())
	}

	res, err := o.Upload(ctx, req.Body, req.ContentLength, boundary)
	if err != nil {
		failure = err
		if errors.Is(err, errEmptyBody) {
			return httperrors.Reject(http.StatusBadRequest, msgEmptyBody, o.Now())
		}
		status := httperrors.Status(err)
		if status >= http.StatusInternalServerError {
			logger.Error("upload failed", "error", err)
		} else {
			logger.Warn("upload rejected", "error", err)
		}
		return httperrors.Response(err, o.Now())
	}

	kind, size = res.Kind, res.Size
	logger.Info("upload stored",
		"media_id", res.MediaID,
		"media_type", res.Kind,
		"size", res.Size,
	)

	return transport.JSON(http.StatusOK, successBody{
		Status:          "success",
		MediaID:         res.MediaID,
		Filename:        res.Filename,
		MediaType:       res.Kind,
		FileSize:        res.Size,
		ServerTimestamp: o.Now().UTC(),
	})
}

var errEmptyBody = errors.New("empty request body")

// Upload разбирает тело, проверяет поля и место, сохраняет файл.
// Временные файлы запроса удаляются до возврата на любом пути.
func (o *Orchestrator) Upload(ctx context.Context, body io.Reader, contentLength int64, boundary string) (models.UploadResult, error) {
	if body == nil || contentLength == 0 {
		return models.UploadResult{}, errEmptyBody
	}

	br := bufio.NewReader(body)
	if _, err := br.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return models.UploadResult{}, errEmptyBody
		}
		return models.UploadResult{}, fmt.Errorf("%w: %v", models.ErrStreamRead, err)
	}

	fields, cleanup, err := o.parse(ctx, br, contentLength, boundary)
	if err != nil {
		return models.UploadResult{}, err
	}
	defer cleanup()

	up, err := mediasvc.Validate(fields)
	if err != nil {
		return models.UploadResult{}, err
	}

	if o.Capacity != nil {
		if err = o.Capacity.Check(up.File.Size()); err != nil {
			return models.UploadResult{}, err
		}
	}

	saveReq := mediasvc.SaveRequest{
		Filename:     up.Filename,
		Kind:         up.Kind,
		CapturedAt:   up.CapturedAt,
		MIMEOverride: up.MIMEOverride,
	}

	var rec models.MediaRecord
	if up.File.IsSpooled() {
		rec, err = o.Storage.SaveStreaming(ctx, up.File.Spool.Path, saveReq)
	} else {
		rec, err = o.Storage.SaveInline(ctx, up.File.Data, saveReq)
	}
	if err != nil {
		return models.UploadResult{}, err
	}

	return models.UploadResult{
		MediaID:  rec.MediaID,
		Filename: rec.StoredFilename,
		Kind:     rec.Kind,
		Size:     rec.SizeBytes,
	}, nil
}

// parse выбирает разбор целиком в памяти для малых тел с известной длиной
// и потоковый разбор для остальных.
func (o *Orchestrator) parse(ctx context.Context, body io.Reader, contentLength int64, boundary string) (map[string]formdata.Part, func(), error) {
	noop := func() {}

	if contentLength > 0 && contentLength <= o.InlineThreshold {
		buf, err := io.ReadAll(io.LimitReader(body, o.InlineThreshold+1))
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %v", models.ErrStreamRead, err)
		}
		if int64(len(buf)) <= o.InlineThreshold {
			fields, err := formdata.Parse(buf, boundary)
			if err != nil {
				return nil, noop, err
			}
			return fields, noop, nil
		}
		body = io.MultiReader(bytes.NewReader(buf), body)
	}

	form, err := o.Ingester.Ingest(ctx, body, boundary)
	if err != nil {
		return nil, noop, err
	}
	for _, p := range form.Parts {
		if p.IsSpooled() {
			o.Metrics.PartSpooled()
		}
	}

	return form.Parts, func() {
		if err := form.RemoveAll(); err != nil {
			logger.Warn("failed to remove upload temp dir", "dir", form.Dir(), "error", err)
		}
	}, nil
}

// multipartBoundary достаёт boundary из заголовка Content-Type.
func multipartBoundary(contentType string) (string, bool) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.EqualFold(mediaType, "multipart/form-data") {
		return "", false
	}
	b := params["boundary"]
	return b, b != ""
}

func outcome(status int, err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientStorage):
		return metrics.StatusNoSpace
	case status == http.StatusOK:
		return metrics.StatusOK
	case status < http.StatusInternalServerError:
		return metrics.StatusBadRequest
	default:
		return metrics.StatusError
	}
}
