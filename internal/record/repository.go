package record

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warit/linedrive/internal/classify"
)

const selectColumns = `id, file_name, file_type, mime_type, size_bytes, storage_id, storage_link, uploaded_by, uploaded_at`

// Repository provides access to relayed file metadata.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a new record repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a record for a freshly uploaded file. The ID and upload
// timestamp are assigned here.
func (r *Repository) Create(ctx context.Context, rec Record) (Record, error) {
	query := `
INSERT INTO files (id, file_name, file_type, mime_type, size_bytes, storage_id, storage_link, uploaded_by, uploaded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
RETURNING ` + selectColumns + `;`

	row := r.pool.QueryRow(ctx, query,
		uuid.New(),
		rec.FileName,
		rec.FileType,
		rec.MimeType,
		rec.SizeBytes,
		rec.StorageID,
		rec.StorageLink,
		rec.UploadedBy,
	)

	stored, err := scanRecord(row)
	if err != nil {
		return Record{}, fmt.Errorf("create file record: %w", err)
	}
	return stored, nil
}

// ListAll returns every record, newest first.
func (r *Repository) ListAll(ctx context.Context) ([]Record, error) {
	query := `SELECT ` + selectColumns + ` FROM files ORDER BY uploaded_at DESC;`
	return r.queryRecords(ctx, query)
}

// ListByType returns records of one category, newest first.
func (r *Repository) ListByType(ctx context.Context, fileType classify.FileType) ([]Record, error) {
	query := `SELECT ` + selectColumns + ` FROM files WHERE file_type = $1 ORDER BY uploaded_at DESC;`
	return r.queryRecords(ctx, query, fileType)
}

// Search returns records whose name contains the term, case-insensitively,
// newest first.
func (r *Repository) Search(ctx context.Context, term string) ([]Record, error) {
	query := `SELECT ` + selectColumns + ` FROM files WHERE file_name ILIKE '%' || $1 || '%' ORDER BY uploaded_at DESC;`
	return r.queryRecords(ctx, query, term)
}

// Stats recomputes the aggregate counts from the table.
func (r *Repository) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{FileTypeCounts: make(map[string]int64)}

	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM files;`).Scan(&stats.TotalFiles); err != nil {
		return Stats{}, fmt.Errorf("count files: %w", err)
	}

	rows, err := r.pool.Query(ctx, `SELECT file_type, count(*) FROM files GROUP BY file_type;`)
	if err != nil {
		return Stats{}, fmt.Errorf("count files by type: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fileType string
		var count int64
		if err := rows.Scan(&fileType, &count); err != nil {
			return Stats{}, fmt.Errorf("scan type count: %w", err)
		}
		stats.FileTypeCounts[fileType] = count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("iterate type counts: %w", err)
	}

	return stats, nil
}

func (r *Repository) queryRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list file records: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate file records: %w", err)
	}
	return records, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(
		&rec.ID,
		&rec.FileName,
		&rec.FileType,
		&rec.MimeType,
		&rec.SizeBytes,
		&rec.StorageID,
		&rec.StorageLink,
		&rec.UploadedBy,
		&rec.UploadedAt,
	)
	return rec, err
}
