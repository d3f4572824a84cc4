// Package mediaclient — HTTP-клиент сервиса медиа с индикатором загрузки.
package mediaclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sir_venger/media_lite/pkg/mediaproto"
)

// ErrNotFound — сервер не знает такого mediaId.
var ErrNotFound = errors.New("media not found")

type UploadRequest struct {
	Filename   string
	MediaType  string
	CapturedAt time.Time
	MIMEType   string
	Reader     io.Reader
	Size       int64 // 0, если неизвестен; нужен только индикатору
}

// UploadResult — ответ сервера на загрузку.
type UploadResult struct {
	Status          string    `json:"status"`
	MediaID         string    `json:"mediaId"`
	Filename        string    `json:"filename"`
	MediaType       string    `json:"mediaType"`
	FileSize        int64     `json:"fileSize"`
	ServerTimestamp time.Time `json:"serverTimestamp"`
	Error           string    `json:"error"`
}

type Client interface {
	// Upload потоково отправляет файл multipart-формой.
	Upload(ctx context.Context, baseURL string, req UploadRequest) (UploadResult, error)
	// Delete удаляет запись и файл на сервере.
	Delete(ctx context.Context, baseURL, mediaID string) error
	// Health спрашивает у сервера место на томе хранилища.
	Health(ctx context.Context, baseURL string) (Health, error)
}

// Health — ответ /health.
type Health struct {
	OK         bool   `json:"ok"`
	FreeBytes  uint64 `json:"free_bytes"`
	TotalBytes uint64 `json:"total_bytes"`
}

type httpClient struct {
	c        *http.Client
	progress io.Writer
}

// New создаёт HTTP-клиент. Если progress не nil, туда рисуется индикатор загрузки.
func New(progress io.Writer) Client {
	return &httpClient{
		c:        &http.Client{},
		progress: progress,
	}
}

// Upload пишет форму в pipe, не читая файл целиком в память.
func (h *httpClient) Upload(ctx context.Context, baseURL string, req UploadRequest) (UploadResult, error) {
	var bar *progressBar
	body := req.Reader
	if h.progress != nil {
		bar = newProgressBar(h.progress, "Uploading "+req.Filename, req.Size)
		body = io.TeeReader(req.Reader, progressWriter{bar: bar})
	}
	bar.render(true, "")

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeForm(mw, req, body))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+mediaproto.PathUpload, pr)
	if err != nil {
		pr.Close()
		<-done
		bar.Fail(err)
		return UploadResult{}, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := h.c.Do(httpReq)
	pr.Close()
	<-done
	if err != nil {
		bar.Fail(err)
		return UploadResult{}, err
	}
	defer resp.Body.Close()

	var out UploadResult
	if err = json.NewDecoder(resp.Body).Decode(&out); err != nil {
		err = fmt.Errorf("decode upload response (%s): %w", resp.Status, err)
		bar.Fail(err)
		return UploadResult{}, err
	}
	if resp.StatusCode != http.StatusOK {
		err = fmt.Errorf("upload failed: %s: %s", resp.Status, out.Error)
		bar.Fail(err)
		return out, err
	}

	bar.Finish()
	return out, nil
}

func writeForm(mw *multipart.Writer, req UploadRequest, body io.Reader) error {
	fields := [][2]string{
		{mediaproto.FieldFilename, req.Filename},
		{mediaproto.FieldMediaType, req.MediaType},
		{mediaproto.FieldTimestamp, req.CapturedAt.UTC().Format(mediaproto.TimestampLayout)},
	}
	if req.MIMEType != "" {
		fields = append(fields, [2]string{mediaproto.FieldMIMEType, req.MIMEType})
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return err
		}
	}

	fw, err := mw.CreateFormFile(mediaproto.FieldFile, req.Filename)
	if err != nil {
		return err
	}
	if _, err = io.Copy(fw, body); err != nil {
		return err
	}
	return mw.Close()
}

// Delete удаляет запись; 404 превращается в ErrNotFound.
func (h *httpClient) Delete(ctx context.Context, baseURL, mediaID string) error {
	u := fmt.Sprintf(mediaproto.MediaPathFormat, baseURL, url.PathEscape(mediaID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, mediaID)
	case resp.StatusCode >= http.StatusMultipleChoices:
		return fmt.Errorf("delete failed: %s", resp.Status)
	}
	return nil
}

// Health возвращает состояние тома; не-200 считается ошибкой.
func (h *httpClient) Health(ctx context.Context, baseURL string) (payload Health, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+mediaproto.PathHealth, nil)
	if err != nil {
		return Health{}, err
	}

	resp, err := h.c.Do(req)
	if err != nil {
		return Health{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Health{}, fmt.Errorf("health check failed: %s", resp.Status)
	}

	if err = json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Health{}, err
	}

	return payload, nil
}

func humanBytes(v int64) string {
	if v < 0 {
		v = 0
	}
	return humanize.IBytes(uint64(v))
}
