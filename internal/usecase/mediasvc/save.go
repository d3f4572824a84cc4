package mediasvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/sir_venger/media_lite/internal/logger"
	"github.com/sir_venger/media_lite/internal/models"
)

// SaveInline сохраняет payload, уже лежащий в памяти.
func (s *Storage) SaveInline(ctx context.Context, data []byte, req SaveRequest) (models.MediaRecord, error) {
	return s.save(ctx, req, int64(len(data)), func(_ context.Context, dst io.Writer) (int64, error) {
		n, err := dst.Write(data)
		if err != nil {
			return int64(n), fmt.Errorf("%w: %v", models.ErrStreamWrite, err)
		}
		if n != len(data) {
			return int64(n), fmt.Errorf("%w: wrote %d of %d bytes", models.ErrStreamWrite, n, len(data))
		}
		return int64(n), nil
	})
}

// SaveStreaming переносит spool-файл в хранилище чанками фиксированного размера.
// Размер берётся из метаданных исходного файла.
func (s *Storage) SaveStreaming(ctx context.Context, spoolPath string, req SaveRequest) (models.MediaRecord, error) {
	src, err := s.Fs.Open(spoolPath)
	if err != nil {
		return models.MediaRecord{}, fmt.Errorf("%w: open spool: %v", models.ErrStreamRead, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return models.MediaRecord{}, fmt.Errorf("%w: stat spool: %v", models.ErrStreamRead, err)
	}

	return s.save(ctx, req, info.Size(), func(ctx context.Context, dst io.Writer) (int64, error) {
		return copyChunked(ctx, dst, src, s.CopyChunkSize)
	})
}

type writeFunc func(ctx context.Context, dst io.Writer) (int64, error)

// save — общий путь записи: временный файл в целевом каталоге, rename в уникальное имя,
// штамп времени съёмки, sidecar. Незавершённый payload удаляется на любом пути ошибки.
func (s *Storage) save(ctx context.Context, req SaveRequest, size int64, write writeFunc) (models.MediaRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.MediaRecord{}, err
	}

	mediaID := DeriveMediaID(req.Filename, req.CapturedAt)
	base, ext := splitName(req.Filename)
	subdir := SubdirectoryFor(req.Kind, req.CapturedAt)
	absDir := filepath.Join(s.Root, subdir)

	if err := s.Fs.MkdirAll(absDir, 0o755); err != nil {
		return models.MediaRecord{}, fmt.Errorf("%w: create %s: %v", models.ErrStreamCreationFailed, subdir, err)
	}

	stored, err := s.UniqueFilenameIn(subdir, mediaID, base, ext)
	if err != nil {
		return models.MediaRecord{}, err
	}

	tmp, err := afero.TempFile(s.Fs, absDir, "."+stored+".tmp-*")
	if err != nil {
		return models.MediaRecord{}, fmt.Errorf("%w: %v", models.ErrStreamCreationFailed, err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = s.Fs.Remove(tmpName)
		}
	}()

	written, err := write(ctx, tmp)
	if err != nil {
		_ = tmp.Close()
		return models.MediaRecord{}, err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return models.MediaRecord{}, fmt.Errorf("%w: sync: %v", models.ErrStreamWrite, err)
	}
	if err = tmp.Close(); err != nil {
		return models.MediaRecord{}, fmt.Errorf("%w: close: %v", models.ErrStreamWrite, err)
	}
	if written != size {
		return models.MediaRecord{}, fmt.Errorf("%w: copied %d of %d bytes", models.ErrStreamWrite, written, size)
	}
	if err = ctx.Err(); err != nil {
		return models.MediaRecord{}, err
	}

	finalPath := filepath.Join(absDir, stored)
	if err = s.Fs.Rename(tmpName, finalPath); err != nil {
		return models.MediaRecord{}, fmt.Errorf("%w: commit: %v", models.ErrStreamWrite, err)
	}
	committed = true

	if err = s.Fs.Chtimes(finalPath, req.CapturedAt, req.CapturedAt); err != nil {
		logger.Warn("failed to stamp capture time", "path", finalPath, "error", err)
	}

	rec := models.MediaRecord{
		MediaID:          mediaID,
		OriginalFilename: req.Filename,
		StoredFilename:   stored,
		Kind:             req.Kind,
		SizeBytes:        size,
		MIMEType:         MIMEType(req.Filename, req.MIMEOverride),
		CapturedAt:       req.CapturedAt.UTC(),
		StoredAt:         s.Now().UTC(),
		RelativePath:     filepath.ToSlash(filepath.Join(subdir, stored)),
	}

	if err = s.writeSidecar(rec); err != nil {
		_ = s.Fs.Remove(finalPath)
		return models.MediaRecord{}, err
	}

	if s.Catalog != nil {
		if err = s.Catalog.Save(ctx, rec); err != nil {
			logger.Warn("catalog save failed", "media_id", rec.MediaID, "error", err)
		}
	}

	return rec, nil
}

// copyChunked копирует src в dst двумя горутинами: чтение следующего чанка идёт,
// пока пишется текущий. В полёте не больше двух буферов. Каждая запись сверяется
// с прочитанным объёмом. Возврат только после завершения обеих горутин.
func copyChunked(ctx context.Context, dst io.Writer, src io.Reader, chunkSize int) (int64, error) {
	eg, egCtx := errgroup.WithContext(ctx)

	free := make(chan []byte, 2)
	free <- make([]byte, chunkSize)
	free <- make([]byte, chunkSize)
	filled := make(chan []byte, 1)

	eg.Go(func() error {
		defer close(filled)
		for {
			var buf []byte
			select {
			case buf = <-free:
			case <-egCtx.Done():
				return egCtx.Err()
			}

			n, err := io.ReadFull(src, buf)
			if n > 0 {
				select {
				case filled <- buf[:n]:
				case <-egCtx.Done():
					return egCtx.Err()
				}
			}
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("%w: %v", models.ErrStreamRead, err)
			}
		}
	})

	var total int64
	eg.Go(func() error {
		for chunk := range filled {
			if err := egCtx.Err(); err != nil {
				return err
			}
			n, err := dst.Write(chunk)
			if err != nil {
				return fmt.Errorf("%w: %v", models.ErrStreamWrite, err)
			}
			if n != len(chunk) {
				return fmt.Errorf("%w: wrote %d of %d bytes", models.ErrStreamWrite, n, len(chunk))
			}
			total += int64(n)
			free <- chunk[:cap(chunk)]
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return total, err
	}
	return total, nil
}
