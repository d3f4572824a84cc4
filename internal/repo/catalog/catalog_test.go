package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sir_venger/media_lite/internal/models"
)

func sampleRecord(id string) models.MediaRecord {
	at := time.Date(2025, 7, 8, 10, 0, 0, 0, time.UTC)
	return models.MediaRecord{
		MediaID:          id,
		OriginalFilename: "a.jpg",
		StoredFilename:   id + "_a.jpg",
		Kind:             models.KindPhoto,
		SizeBytes:        100,
		MIMEType:         "image/jpeg",
		CapturedAt:       at,
		StoredAt:         at.Add(time.Minute),
		RelativePath:     "photos/2025/07/" + id + "_a.jpg",
	}
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, models.ErrMediaNotFound)

	rec := sampleRecord("20250708_100000_a_deadbeef")
	require.NoError(t, s.Save(ctx, rec))
	assert.Equal(t, 1, s.Len())

	got, err := s.Get(ctx, rec.MediaID)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	require.NoError(t, s.Delete(ctx, rec.MediaID))
	assert.ErrorIs(t, s.Delete(ctx, rec.MediaID), models.ErrMediaNotFound)
	assert.Zero(t, s.Len())
}

func TestOpen_MemoryDSN(t *testing.T) {
	for _, dsn := range []string{"", "memory://", "  memory://catalog "} {
		st, err := Open(context.Background(), dsn)
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, st)
		st.Close()
	}
}

func TestQueries(t *testing.T) {
	sqlStr, args, err := selectQuery("id1")
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "FROM media_records WHERE media_id = $1 LIMIT 1")
	assert.Equal(t, []any{"id1"}, args)

	rec := sampleRecord("id2")
	sqlStr, args, err = upsertQuery(rec)
	require.NoError(t, err)
	assert.Contains(t, sqlStr, "INSERT INTO media_records")
	assert.Contains(t, sqlStr, "ON CONFLICT (media_id) DO UPDATE")
	require.Len(t, args, 9)
	assert.Equal(t, "id2", args[0])
	assert.Equal(t, "photo", args[3])

	sqlStr, args, err = deleteQuery("id3")
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM media_records WHERE media_id = $1", sqlStr)
	assert.Equal(t, []any{"id3"}, args)
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := migrationFiles.ReadDir(migrationsDir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, "00001_create_media_records.sql", entries[0].Name())
}
