package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sir_venger/media_lite/internal/models"
)

const mediaTable = "media_records"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PGStore хранит индекс записей в Postgres.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore создаёт пул подключений к Postgres.
func NewPGStore(ctx context.Context, dsn string) (*PGStore, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("catalog dsn is empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}

	return &PGStore{pool: pool}, nil
}

// Get возвращает запись по идентификатору.
func (s *PGStore) Get(ctx context.Context, id string) (models.MediaRecord, error) {
	sqlStr, args, err := selectQuery(id)
	if err != nil {
		return models.MediaRecord{}, fmt.Errorf("build select: %w", err)
	}

	var (
		rec  models.MediaRecord
		kind string
	)
	err = s.pool.QueryRow(ctx, sqlStr, args...).Scan(
		&rec.MediaID,
		&rec.OriginalFilename,
		&rec.StoredFilename,
		&kind,
		&rec.SizeBytes,
		&rec.MIMEType,
		&rec.CapturedAt,
		&rec.StoredAt,
		&rec.RelativePath,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.MediaRecord{}, models.ErrMediaNotFound
		}
		return models.MediaRecord{}, fmt.Errorf("scan media row: %w", err)
	}
	rec.Kind = models.MediaKind(kind)
	rec.CapturedAt = rec.CapturedAt.UTC()
	rec.StoredAt = rec.StoredAt.UTC()

	return rec, nil
}

// Save записывает (или обновляет) запись.
func (s *PGStore) Save(ctx context.Context, rec models.MediaRecord) error {
	sqlStr, args, err := upsertQuery(rec)
	if err != nil {
		return fmt.Errorf("build upsert sql: %w", err)
	}

	if _, err = s.pool.Exec(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("exec upsert: %w", err)
	}
	return nil
}

// Delete удаляет строку или возвращает ErrMediaNotFound.
func (s *PGStore) Delete(ctx context.Context, id string) error {
	sqlStr, args, err := deleteQuery(id)
	if err != nil {
		return fmt.Errorf("build delete sql: %w", err)
	}

	tag, err := s.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		return fmt.Errorf("exec delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrMediaNotFound
	}
	return nil
}

// Close освобождает подключения пула.
func (s *PGStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func selectQuery(id string) (string, []any, error) {
	return psql.
		Select(
			"media_id",
			"original_filename",
			"stored_filename",
			"media_type",
			"size_bytes",
			"mime_type",
			"captured_at",
			"stored_at",
			"relative_path",
		).
		From(mediaTable).
		Where(sq.Eq{"media_id": id}).
		Limit(1).
		ToSql()
}

func upsertQuery(rec models.MediaRecord) (string, []any, error) {
	return psql.
		Insert(mediaTable).
		Columns(
			"media_id",
			"original_filename",
			"stored_filename",
			"media_type",
			"size_bytes",
			"mime_type",
			"captured_at",
			"stored_at",
			"relative_path",
		).
		Values(
			rec.MediaID,
			rec.OriginalFilename,
			rec.StoredFilename,
			string(rec.Kind),
			rec.SizeBytes,
			rec.MIMEType,
			rec.CapturedAt,
			rec.StoredAt,
			rec.RelativePath,
		).
		Suffix(`
			ON CONFLICT (media_id) DO UPDATE
			SET original_filename = EXCLUDED.original_filename,
				stored_filename   = EXCLUDED.stored_filename,
				media_type        = EXCLUDED.media_type,
				size_bytes        = EXCLUDED.size_bytes,
				mime_type         = EXCLUDED.mime_type,
				captured_at       = EXCLUDED.captured_at,
				stored_at         = EXCLUDED.stored_at,
				relative_path     = EXCLUDED.relative_path`).
		ToSql()
}

func deleteQuery(id string) (string, []any, error) {
	return psql.
		Delete(mediaTable).
		Where(sq.Eq{"media_id": id}).
		ToSql()
}
