package integration

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sir_venger/media_lite/internal/transport"
)

func Test_ManualGC_RemovesStaleTempState(t *testing.T) {
	url, cfg := startServer(t, transport.BackendChi, 0)

	// брошенный каталог запроса и недописанный payload
	stale := filepath.Join(cfg.TempDir, "ingest-123")
	if err := os.MkdirAll(stale, 0o755); err != nil {
		t.Fatal(err)
	}
	partial := filepath.Join(cfg.MediaRoot, "photos", "2025", "07", ".x_a.jpg.tmp-1")
	if err := os.MkdirAll(filepath.Dir(partial), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(partial, []byte("half"), 0o644); err != nil {
		t.Fatal(err)
	}

	old := time.Now().Add(-48 * time.Hour)
	_ = os.Chtimes(stale, old, old)
	_ = os.Chtimes(partial, old, old)

	resp, err := http.Post(url+"/admin/gc", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("gc status %s", resp.Status)
	}

	for _, p := range []string{stale, partial} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Fatalf("%s not removed", p)
		}
	}
}
