package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		got = append(got, r.FormValue("filename")+"@"+r.FormValue("timestamp")+"/"+r.FormValue("mediaType"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status": "success", "mediaId": "id-" + r.FormValue("filename"), "filename": "stored",
		})
	}))
	defer srv.Close()

	dir := t.TempDir()
	file := filepath.Join(dir, "clip.mov")
	require.NoError(t, os.WriteFile(file, []byte("movie"), 0o644))
	mtime := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(file, mtime, mtime))

	out, err := run(t, "upload", file, "--server", srv.URL, "--type", "Video", "-q")
	require.NoError(t, err)
	assert.Contains(t, out, "id-clip.mov\tstored")
	assert.Equal(t, []string{"clip.mov@2024-01-02T03:04:05Z/video"}, got)

	_, err = run(t, "upload", file, "--server", srv.URL, "--type", "audio")
	assert.Error(t, err)

	_, err = run(t, "upload", filepath.Join(dir, "missing.mov"), "--server", srv.URL, "--type", "video", "-q")
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"free_bytes":1073741824,"total_bytes":4294967296}`))
	}))
	defer srv.Close()

	out, err := run(t, "status", "--server", srv.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "1.0 GiB")
	assert.Contains(t, out, "4.0 GiB")
	assert.Contains(t, out, "75.0%")
}
