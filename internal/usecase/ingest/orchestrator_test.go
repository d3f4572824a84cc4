package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/media_lite/internal/metrics"
	"github.com/sir_venger/media_lite/internal/models"
	"github.com/sir_venger/media_lite/internal/transport"
	"github.com/sir_venger/media_lite/internal/usecase/mediasvc"
	"github.com/sir_venger/media_lite/pkg/formdata"
)

const tempRoot = "/tmp"

type stubProbe struct{ free uint64 }

func (p stubProbe) Available(string) (uint64, error) { return p.free, nil }

type env struct {
	fs      afero.Fs
	storage *mediasvc.Storage
	metrics *metrics.Metrics
	orch    *Orchestrator
}

func newEnv(t *testing.T, inlineThreshold int64, free uint64) *env {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll(tempRoot, 0o755))

	storage := mediasvc.New(mediasvc.Deps{Fs: fs, Root: "/media", CopyChunkSize: 16})
	m := metrics.New(prometheus.NewRegistry())
	orch := New(Deps{
		Storage:         storage,
		Capacity:        mediasvc.NewCapacityGuard(stubProbe{free: free}, "/media"),
		Ingester:        formdata.NewIngester(formdata.IngesterConfig{Fs: fs, TempRoot: tempRoot, ReadChunkSize: 32}),
		InlineThreshold: inlineThreshold,
		Metrics:         m,
		Now:             func() time.Time { return time.Date(2025, 7, 8, 12, 0, 0, 0, time.UTC) },
	})
	return &env{fs: fs, storage: storage, metrics: m, orch: orch}
}

func multipartBody(t *testing.T, fields map[string]string, filename string, payload []byte) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if payload != nil {
		fw, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return w.FormDataContentType(), buf.Bytes()
}

func photoUpload(t *testing.T, kind string, payload []byte) (string, []byte) {
	return multipartBody(t, map[string]string{
		"filename":  "a.jpg",
		"mediaType": kind,
		"timestamp": "2025-07-08T10:00:00Z",
	}, "a.jpg", payload)
}

func request(contentType string, body []byte, contentLength int64) *transport.Request {
	h := make(http.Header)
	h.Set("Content-Type", contentType)
	return &transport.Request{
		Method:        http.MethodPost,
		Path:          "/upload",
		Header:        h,
		Body:          bytes.NewReader(body),
		ContentLength: contentLength,
	}
}

func decode(t *testing.T, resp *transport.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(resp.Body, &out), string(resp.Body))
	return out
}

func assertNoTempDirs(t *testing.T, fs afero.Fs) {
	t.Helper()
	entries, err := afero.ReadDir(fs, tempRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHandle_StoresPhoto(t *testing.T) {
	cases := []struct {
		name      string
		threshold int64
		length    func(n int) int64
	}{
		{"inline", 1 << 20, func(n int) int64 { return int64(n) }},
		{"streaming", 0, func(n int) int64 { return int64(n) }},
		{"unknown length", 1 << 20, func(int) int64 { return -1 }},
		{"length lies", 10, func(int) int64 { return 5 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t, tc.threshold, 1<<30)
			payload := bytes.Repeat([]byte{0xAB}, 100)
			ct, body := photoUpload(t, "photo", payload)

			resp := e.orch.Handle(context.Background(), request(ct, body, tc.length(len(body))))
			require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))

			out := decode(t, resp)
			assert.Equal(t, "success", out["status"])
			assert.Equal(t, "photo", out["mediaType"])
			assert.EqualValues(t, 100, out["fileSize"])
			assert.Equal(t, "2025-07-08T12:00:00Z", out["serverTimestamp"])
			assert.True(t, strings.HasPrefix(out["mediaId"].(string), "20250708_100000_a_"))

			list, err := e.storage.List(context.Background())
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, "a.jpg", list[0].OriginalFilename)
			assert.Equal(t, out["filename"], list[0].StoredFilename)

			stored, err := afero.ReadFile(e.fs, "/media/"+list[0].RelativePath)
			require.NoError(t, err)
			assert.Equal(t, payload, stored)

			assertNoTempDirs(t, e.fs)
			assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.UploadsTotal.WithLabelValues(metrics.StatusOK, "photo")))
		})
	}
}

func TestHandle_InvalidMediaType(t *testing.T) {
	e := newEnv(t, 0, 1<<30)
	ct, body := photoUpload(t, "audio", bytes.Repeat([]byte("x"), 100))

	resp := e.orch.Handle(context.Background(), request(ct, body, int64(len(body))))
	require.Equal(t, http.StatusBadRequest, resp.Status)

	out := decode(t, resp)
	assert.Equal(t, "error", out["status"])
	assert.Contains(t, out["error"], "invalid mediaType")
	assert.NotEmpty(t, out["serverTimestamp"])

	assertNoTempDirs(t, e.fs)
	list, err := e.storage.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestHandle_RequiresMultipart(t *testing.T) {
	e := newEnv(t, 0, 1<<30)

	for _, ct := range []string{"application/json", "multipart/form-data", "multipart/mixed; boundary=x", ""} {
		resp := e.orch.Handle(context.Background(), request(ct, []byte(`{"a":1}`), 7))
		require.Equal(t, http.StatusBadRequest, resp.Status, ct)
		assert.Contains(t, decode(t, resp)["error"], "multipart/form-data", ct)
	}
}

func TestHandle_EmptyBody(t *testing.T) {
	e := newEnv(t, 0, 1<<30)
	ct := "multipart/form-data; boundary=abc"

	for _, length := range []int64{0, -1} {
		resp := e.orch.Handle(context.Background(), request(ct, nil, length))
		require.Equal(t, http.StatusBadRequest, resp.Status)
		assert.Equal(t, msgEmptyBody, decode(t, resp)["error"])
	}
}

func TestHandle_Malformed(t *testing.T) {
	for _, threshold := range []int64{0, 1 << 20} {
		t.Run(fmt.Sprint(threshold), func(t *testing.T) {
			e := newEnv(t, threshold, 1<<30)
			body := []byte("--abc\r\nContent-Disposition: form-data; name=\"filename\"\r\n\r\na.jpg\r\n")

			resp := e.orch.Handle(context.Background(), request("multipart/form-data; boundary=abc", body, int64(len(body))))
			require.Equal(t, http.StatusBadRequest, resp.Status)
			assert.True(t, strings.HasPrefix(decode(t, resp)["error"].(string), "Failed to parse multipart data: "))
			assertNoTempDirs(t, e.fs)
		})
	}
}

func TestHandle_UnsupportedExtension(t *testing.T) {
	e := newEnv(t, 0, 1<<30)
	ct, body := multipartBody(t, map[string]string{
		"filename":  "notes.txt",
		"mediaType": "video",
		"timestamp": "2025-07-08T10:00:00Z",
	}, "notes.txt", []byte("hello"))

	resp := e.orch.Handle(context.Background(), request(ct, body, int64(len(body))))
	require.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, `unsupported file type "txt" for video`, decode(t, resp)["error"])
	assertNoTempDirs(t, e.fs)
}

func TestHandle_InsufficientStorage(t *testing.T) {
	e := newEnv(t, 0, 199)
	ct, body := photoUpload(t, "photo", bytes.Repeat([]byte("x"), 100))

	resp := e.orch.Handle(context.Background(), request(ct, body, int64(len(body))))
	require.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.Equal(t, "Insufficient storage space", decode(t, resp)["error"])
	assertNoTempDirs(t, e.fs)
	assert.Equal(t, 1.0, testutil.ToFloat64(e.metrics.UploadsTotal.WithLabelValues(metrics.StatusNoSpace, "unknown")))
}

type failingStorage struct{ mediasvc.Service }

func (failingStorage) SaveInline(context.Context, []byte, mediasvc.SaveRequest) (models.MediaRecord, error) {
	return models.MediaRecord{}, fmt.Errorf("%w: disk on fire", models.ErrStreamWrite)
}

func (failingStorage) SaveStreaming(context.Context, string, mediasvc.SaveRequest) (models.MediaRecord, error) {
	return models.MediaRecord{}, fmt.Errorf("%w: disk on fire", models.ErrStreamWrite)
}

func TestHandle_StorageFailureIsGeneric(t *testing.T) {
	for _, threshold := range []int64{0, 1 << 20} {
		e := newEnv(t, threshold, 1<<30)
		e.orch.Storage = failingStorage{}
		ct, body := photoUpload(t, "photo", []byte("x"))

		resp := e.orch.Handle(context.Background(), request(ct, body, int64(len(body))))
		require.Equal(t, http.StatusInternalServerError, resp.Status)
		assert.Equal(t, "Internal server error", decode(t, resp)["error"])
		assertNoTempDirs(t, e.fs)
	}
}

func TestHandle_CanceledRequest(t *testing.T) {
	e := newEnv(t, 0, 1<<30)
	ct, body := photoUpload(t, "photo", bytes.Repeat([]byte("x"), 4096))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp := e.orch.Handle(ctx, request(ct, body, int64(len(body))))
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assertNoTempDirs(t, e.fs)

	list, err := e.storage.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMultipartBoundary(t *testing.T) {
	b, ok := multipartBoundary(`Multipart/Form-Data; boundary="a b"`)
	assert.True(t, ok)
	assert.Equal(t, "a b", b)

	_, ok = multipartBoundary("text/plain")
	assert.False(t, ok)
}
