package ingestion

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO ingestion_batches`).
		WithArgs("c1_p1", "c1", "p1", "partial_failure", 25, 3, `[]`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("batch-1", now))

	rec := &BatchRecord{
		Collection:    "c1_p1",
		CommunityID:   "c1",
		PlatformID:    "p1",
		OverallStatus: "partial_failure",
		DocumentCount: 25,
		ChunkCount:    3,
		Outcomes:      json.RawMessage(`[]`),
	}
	err = repo.Save(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "batch-1", rec.ID)
	assert.Equal(t, now, rec.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "collection", "community_id", "platform_id", "overall_status", "document_count", "chunk_count", "outcomes", "created_at"}).
		AddRow("b1", "c1_p1", "c1", "p1", "success", 10, 1, []byte(`[{"chunk_index":0}]`), now).
		AddRow("b2", "c1_p1", "c1", "p1", "failed", 5, 1, []byte(`[]`), now)

	mock.ExpectQuery(`SELECT .* FROM ingestion_batches ORDER BY created_at DESC`).WillReturnRows(rows)

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "b1", records[0].ID)
	assert.Equal(t, "success", records[0].OverallStatus)
	assert.JSONEq(t, `[{"chunk_index":0}]`, string(records[0].Outcomes))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)
	now := time.Now()

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "collection", "community_id", "platform_id", "overall_status", "document_count", "chunk_count", "outcomes", "created_at"}).
			AddRow("b1", "c1_p1", "c1", "p1", "success", 10, 1, []byte(`[]`), now)
		mock.ExpectQuery(`SELECT .* FROM ingestion_batches WHERE id = \$1`).
			WithArgs("b1").WillReturnRows(rows)

		rec, err := repo.Get(context.Background(), "b1")
		require.NoError(t, err)
		assert.Equal(t, "c1_p1", rec.Collection)
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM ingestion_batches WHERE id = \$1`).
			WithArgs("missing").WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), "missing")
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestPostgresRepo_CountByStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPostgresRepo(db)

	rows := sqlmock.NewRows([]string{"overall_status", "count"}).
		AddRow("success", 7).
		AddRow("partial_failure", 2).
		AddRow("failed", 1)
	mock.ExpectQuery(`SELECT overall_status, COUNT\(\*\) FROM ingestion_batches GROUP BY overall_status`).
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"success": 7, "partial_failure": 2, "failed": 1}, counts)
}
