package mediasvc

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/sir_venger/media_lite/internal/models"
)

func (s *Storage) metadataDir() string {
	return filepath.Join(s.Root, metadataDir)
}

func (s *Storage) sidecarPath(id string) string {
	return filepath.Join(s.metadataDir(), id+".json")
}

// writeSidecar записывает metadata/{mediaId}.json через временный файл и rename.
func (s *Storage) writeSidecar(rec models.MediaRecord) error {
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	dir := s.metadataDir()
	if err = s.Fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create metadata dir: %w", err)
	}

	tmp, err := afero.TempFile(s.Fs, dir, "."+rec.MediaID+".json.tmp-*")
	if err != nil {
		return fmt.Errorf("create sidecar: %w", err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(b); err != nil {
		_ = tmp.Close()
		_ = s.Fs.Remove(tmpName)
		return fmt.Errorf("write sidecar: %w", err)
	}
	if err = tmp.Close(); err != nil {
		_ = s.Fs.Remove(tmpName)
		return fmt.Errorf("close sidecar: %w", err)
	}
	if err = s.Fs.Rename(tmpName, s.sidecarPath(rec.MediaID)); err != nil {
		_ = s.Fs.Remove(tmpName)
		return fmt.Errorf("commit sidecar: %w", err)
	}

	return nil
}

// readSidecar читает запись с диска.
func (s *Storage) readSidecar(path string) (models.MediaRecord, error) {
	b, err := afero.ReadFile(s.Fs, path)
	if err != nil {
		return models.MediaRecord{}, err
	}

	var rec models.MediaRecord
	if err = json.Unmarshal(b, &rec); err != nil {
		return models.MediaRecord{}, err
	}
	if rec.MediaID == "" {
		return models.MediaRecord{}, fmt.Errorf("sidecar %s has no mediaId", filepath.Base(path))
	}

	return rec, nil
}

// validID отсекает идентификаторы, которые могли бы выйти за пределы metadata/.
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`+"\x00")
}
