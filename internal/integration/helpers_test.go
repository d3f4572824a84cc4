package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/sir_venger/media_lite/internal/app/mediahttp"
	"github.com/sir_venger/media_lite/internal/config"
	"github.com/sir_venger/media_lite/internal/transport"
)

type uploadResponse struct {
	Status    string `json:"status"`
	MediaID   string `json:"mediaId"`
	Filename  string `json:"filename"`
	MediaType string `json:"mediaType"`
	FileSize  int64  `json:"fileSize"`
	Error     string `json:"error"`
}

type listResponse struct {
	Status string `json:"status"`
	Data   []struct {
		MediaID          string `json:"mediaId"`
		OriginalFilename string `json:"originalFilename"`
		StoredFilename   string `json:"storedFilename"`
		RelativePath     string `json:"relativeStoragePath"`
		SizeBytes        int64  `json:"sizeBytes"`
	} `json:"data"`
}

// startServer поднимает сервис на реальной ФС и свободном порту.
func startServer(t *testing.T, backend string, inlineThreshold config.ByteSize) (string, *config.Config) {
	t.Helper()

	cfg := config.Default()
	cfg.ListenAddr = "127.0.0.1:0"
	cfg.Transport = backend
	cfg.MediaRoot = filepath.Join(t.TempDir(), "media")
	cfg.TempDir = t.TempDir()
	cfg.CatalogDSN = "memory://"
	cfg.InlineThreshold = inlineThreshold
	cfg.CopyChunkSize = 64 << 10
	cfg.ReadChunkSize = 4 << 10

	srv, err := mediahttp.NewServer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(srv.Close)

	b, err := transport.New(cfg.Transport, cfg.ListenAddr)
	if err != nil {
		t.Fatalf("new backend: %v", err)
	}
	srv.Register(b)
	if err := b.Start(); err != nil {
		t.Fatalf("start backend: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = b.Stop(ctx)
	})

	addr := b.(interface{ Addr() string }).Addr()
	return "http://" + addr, cfg
}

func uploadMedia(url, filename, kind, ts string, data []byte) (int, uploadResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range map[string]string{"filename": filename, "mediaType": kind, "timestamp": ts} {
		if err := w.WriteField(k, v); err != nil {
			return 0, uploadResponse{}, err
		}
	}
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		return 0, uploadResponse{}, err
	}
	if _, err = fw.Write(data); err != nil {
		return 0, uploadResponse{}, err
	}
	if err = w.Close(); err != nil {
		return 0, uploadResponse{}, err
	}

	resp, err := http.Post(url+"/upload", w.FormDataContentType(), &buf)
	if err != nil {
		return 0, uploadResponse{}, err
	}
	defer resp.Body.Close()

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return resp.StatusCode, uploadResponse{}, err
	}
	return resp.StatusCode, out, nil
}

func listMedia(url string) (listResponse, error) {
	resp, err := http.Get(url + "/media")
	if err != nil {
		return listResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return listResponse{}, fmt.Errorf("unexpected status %s: %s", resp.Status, string(body))
	}

	var out listResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return listResponse{}, err
	}
	return out, nil
}
