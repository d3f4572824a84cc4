package mediasvc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/sir_venger/media_lite/internal/logger"
	"github.com/sir_venger/media_lite/internal/models"
)

// List читает все sidecar'ы и сортирует по времени съёмки, новые первыми.
// Повреждённый sidecar пропускается с предупреждением.
func (s *Storage) List(ctx context.Context) ([]models.MediaRecord, error) {
	entries, err := afero.ReadDir(s.Fs, s.metadataDir())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.MediaRecord{}, nil
		}
		return nil, fmt.Errorf("read metadata dir: %w", err)
	}

	out := make([]models.MediaRecord, 0, len(entries))
	for _, e := range entries {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || filepath.Ext(e.Name()) != ".json" {
			continue
		}

		rec, err := s.readSidecar(filepath.Join(s.metadataDir(), e.Name()))
		if err != nil {
			logger.Warn("skipping unreadable sidecar", "file", e.Name(), "error", err)
			continue
		}
		out = append(out, rec)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CapturedAt.Equal(out[j].CapturedAt) {
			return out[i].CapturedAt.After(out[j].CapturedAt)
		}
		return out[i].MediaID < out[j].MediaID
	})

	return out, nil
}

// Get ищет запись в каталоге, при промахе читает sidecar.
func (s *Storage) Get(ctx context.Context, id string) (models.MediaRecord, error) {
	if !validID(id) {
		return models.MediaRecord{}, models.ErrMediaNotFound
	}

	if s.Catalog != nil {
		rec, err := s.Catalog.Get(ctx, id)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, models.ErrMediaNotFound) {
			logger.Warn("catalog lookup failed", "media_id", id, "error", err)
		}
	}

	rec, err := s.readSidecar(s.sidecarPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.MediaRecord{}, models.ErrMediaNotFound
		}
		return models.MediaRecord{}, fmt.Errorf("read sidecar %s: %w", id, err)
	}
	return rec, nil
}

// Delete удаляет payload и sidecar вместе.
func (s *Storage) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return models.ErrMediaNotFound
	}

	sidecar := s.sidecarPath(id)
	rec, err := s.readSidecar(sidecar)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.ErrMediaNotFound
		}
		return fmt.Errorf("read sidecar %s: %w", id, err)
	}

	payload := filepath.Join(s.Root, filepath.FromSlash(rec.RelativePath))
	if err = s.Fs.Remove(payload); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove payload %s: %w", rec.RelativePath, err)
	}
	if err = s.Fs.Remove(sidecar); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove sidecar %s: %w", id, err)
	}

	if s.Catalog != nil {
		if err = s.Catalog.Delete(ctx, id); err != nil && !errors.Is(err, models.ErrMediaNotFound) {
			logger.Warn("catalog delete failed", "media_id", id, "error", err)
		}
	}

	return nil
}

// Reindex переписывает каталог по sidecar'ам; возвращает число записей.
func (s *Storage) Reindex(ctx context.Context) (int, error) {
	if s.Catalog == nil {
		return 0, nil
	}

	recs, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, rec := range recs {
		if err = s.Catalog.Save(ctx, rec); err != nil {
			return 0, fmt.Errorf("catalog save %s: %w", rec.MediaID, err)
		}
	}
	return len(recs), nil
}
