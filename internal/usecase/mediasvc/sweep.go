package mediasvc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/sir_venger/media_lite/internal/logger"
)

// IngestDirPrefix — префикс временных каталогов запросов во временном корне.
const IngestDirPrefix = "ingest-"

// Sweeper убирает временные файлы, брошенные после падения процесса:
// каталоги ingest-* во временном корне и скрытые *.tmp-* под корнем хранилища.
type Sweeper struct {
	Fs        afero.Fs
	MediaRoot string
	TempRoot  string
	TTL       time.Duration
	Now       func() time.Time
}

// SweepOnce удаляет всё, что старше TTL, и возвращает число удалённых записей.
func (s *Sweeper) SweepOnce() (int, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	cutoff := now().Add(-s.TTL)

	removed, err := s.sweepIngestDirs(cutoff)
	if err != nil {
		return removed, err
	}

	err = afero.Walk(s.Fs, s.MediaRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return err
		}
		if info.IsDir() || !isTempName(info.Name()) || info.ModTime().After(cutoff) {
			return nil
		}
		if err := s.Fs.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		removed++
		return nil
	})

	return removed, err
}

func (s *Sweeper) sweepIngestDirs(cutoff time.Time) (int, error) {
	root := s.TempRoot
	if root == "" {
		root = os.TempDir()
	}

	entries, err := afero.ReadDir(s.Fs, root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), IngestDirPrefix) {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if s.lastActivity(dir, e.ModTime()).After(cutoff) {
			continue
		}
		if err = s.Fs.RemoveAll(dir); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// lastActivity возвращает самое позднее mtime среди каталога и его содержимого.
// Растущий spool-файл не меняет mtime каталога, поэтому смотрим на файлы.
func (s *Sweeper) lastActivity(dir string, dirMtime time.Time) time.Time {
	latest := dirMtime
	_ = afero.Walk(s.Fs, dir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
		return nil
	})
	return latest
}

// isTempName узнаёт временные имена из save и writeSidecar: .{name}.tmp-{rand}.
func isTempName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.Contains(name, ".tmp-")
}

// StartGC периодически запускает SweepOnce. Возвращает функцию остановки.
func StartGC(s *Sweeper, every time.Duration) func() {
	if every <= 0 || s.TTL <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(every)
	stop := make(chan struct{})
	var once sync.Once
	go func() {
		for {
			select {
			case <-ticker.C:
				n, err := s.SweepOnce()
				if err != nil {
					logger.Warn("temp sweep failed", "error", err)
				} else if n > 0 {
					logger.Info("temp sweep removed stale entries", "count", n)
				}
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stop)
		})
	}
}
