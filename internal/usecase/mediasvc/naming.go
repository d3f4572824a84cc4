package mediasvc

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sir_venger/media_lite/internal/logger"
	"github.com/sir_venger/media_lite/internal/models"
)

// MaxNameRetries — сколько суффиксов _1.._N пробуется. Исчерпание фатально
// для загрузки и пишется в лог уровня error.
const MaxNameRetries = 1000

// DeriveMediaID строит {yyyyMMdd_HHmmss}_{basename}_{8 hex}.
func DeriveMediaID(filename string, capturedAt time.Time) string {
	base, _ := splitName(filename)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s_%s_%s", capturedAt.UTC().Format("20060102_150405"), base, suffix)
}

// SubdirectoryFor возвращает {photos|videos}/{yyyy}/{mm} относительно корня.
func SubdirectoryFor(kind models.MediaKind, capturedAt time.Time) string {
	t := capturedAt.UTC()
	return filepath.Join(kind.Dir(), t.Format("2006"), t.Format("01"))
}

// UniqueFilenameIn подбирает свободное имя в каталоге dir (относительно корня):
// сначала {id}_{base}.{ext}, затем {id}_{base}_{1..N}.{ext}.
// Проверка и запись не атомарны: узкая гонка между параллельными загрузками допустима.
func (s *Storage) UniqueFilenameIn(dir, mediaID, base, ext string) (string, error) {
	for i := 0; i <= MaxNameRetries; i++ {
		name := candidateName(mediaID, base, ext, i)
		_, err := s.Fs.Stat(filepath.Join(s.Root, dir, name))
		if errors.Is(err, os.ErrNotExist) {
			return name, nil
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", name, err)
		}
	}

	logger.Error("unique filename retries exhausted",
		"dir", dir,
		"media_id", mediaID,
		"retries", MaxNameRetries,
	)
	return "", fmt.Errorf("%w: %s/%s_%s", models.ErrNameSpaceExhausted, dir, mediaID, base)
}

func candidateName(mediaID, base, ext string, n int) string {
	name := mediaID + "_" + base
	if n > 0 {
		name = fmt.Sprintf("%s_%d", name, n)
	}
	if ext != "" {
		name += "." + ext
	}
	return name
}

// splitName делит клиентское имя файла на безопасное базовое имя и расширение без точки.
func splitName(filename string) (base, ext string) {
	name := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext = strings.TrimPrefix(filepath.Ext(name), ".")
	base = strings.TrimSuffix(name, filepath.Ext(name))

	base = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '_'
		}
		return r
	}, base)
	base = strings.TrimLeft(base, ".")
	if base == "" {
		base = "media"
	}
	return base, ext
}
