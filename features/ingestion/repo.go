package ingestion

import (
	"context"
	"database/sql"
	"encoding/json"
)

type Repository interface {
	Save(ctx context.Context, record *BatchRecord) error
	List(ctx context.Context) ([]BatchRecord, error)
	Get(ctx context.Context, id string) (*BatchRecord, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
}

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) Save(ctx context.Context, record *BatchRecord) error {
	query := `INSERT INTO ingestion_batches (collection, community_id, platform_id, overall_status, document_count, chunk_count, outcomes)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	// Outcomes go over the wire as text: lib/pq sends []byte as bytea,
	// which the jsonb column rejects.
	return r.db.QueryRowContext(ctx, query,
		record.Collection, record.CommunityID, record.PlatformID,
		record.OverallStatus, record.DocumentCount, record.ChunkCount,
		string(record.Outcomes),
	).Scan(&record.ID, &record.CreatedAt)
}

func (r *PostgresRepo) List(ctx context.Context) ([]BatchRecord, error) {
	query := `SELECT id, collection, community_id, platform_id, overall_status, document_count, chunk_count, outcomes, created_at
		FROM ingestion_batches ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []BatchRecord
	for rows.Next() {
		var rec BatchRecord
		var outcomes []byte
		if err := rows.Scan(&rec.ID, &rec.Collection, &rec.CommunityID, &rec.PlatformID,
			&rec.OverallStatus, &rec.DocumentCount, &rec.ChunkCount, &outcomes, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Outcomes = json.RawMessage(outcomes)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*BatchRecord, error) {
	rec := &BatchRecord{}
	var outcomes []byte
	query := `SELECT id, collection, community_id, platform_id, overall_status, document_count, chunk_count, outcomes, created_at
		FROM ingestion_batches WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.Collection, &rec.CommunityID, &rec.PlatformID,
		&rec.OverallStatus, &rec.DocumentCount, &rec.ChunkCount, &outcomes, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.Outcomes = json.RawMessage(outcomes)
	return rec, nil
}

func (r *PostgresRepo) CountByStatus(ctx context.Context) (map[string]int, error) {
	query := `SELECT overall_status, COUNT(*) FROM ingestion_batches GROUP BY overall_status`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}
