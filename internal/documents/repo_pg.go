package documents

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new document.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    file_name,
    original_name,
    mime_type,
    size_bytes,
    uploaded_from,
    storage_key,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	originalName := doc.OriginalName
	if originalName == "" {
		originalName = doc.FileName
	}
	uploadedFrom := doc.UploadedFrom
	if uploadedFrom == "" {
		uploadedFrom = "web"
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.UserID,
		doc.FileName,
		originalName,
		doc.MimeType,
		doc.SizeBytes,
		uploadedFrom,
		doc.StorageKey,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID for a user.
func (r *PGRepo) GetByID(ctx context.Context, userId, documentID string) (Document, error) {
	const query = `
SELECT id, user_id, file_name, original_name, mime_type, size_bytes, uploaded_from, storage_key, created_at
FROM documents
WHERE user_id = $1 AND id = $2
LIMIT 1`
	var doc Document
	err := r.DB.QueryRowContext(ctx, query, userId, documentID).Scan(
		&doc.ID,
		&doc.UserID,
		&doc.FileName,
		&doc.OriginalName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.UploadedFrom,
		&doc.StorageKey,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// ListByUser lists documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, user_id, file_name, original_name, mime_type, size_bytes, uploaded_from, storage_key, created_at
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(
			&doc.ID,
			&doc.UserID,
			&doc.FileName,
			&doc.OriginalName,
			&doc.MimeType,
			&doc.SizeBytes,
			&doc.UploadedFrom,
			&doc.StorageKey,
			&doc.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Delete removes a document row. Returns ErrNotFound when nothing was deleted.
func (r *PGRepo) Delete(ctx context.Context, userId, documentID string) error {
	const query = `
DELETE FROM documents
WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userId, documentID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// StatsByUser aggregates counts and sizes across a user's documents.
func (r *PGRepo) StatsByUser(ctx context.Context, userId string) (Stats, error) {
	stats := Stats{ByMimeType: make(map[string]int)}

	const totals = `
SELECT COUNT(*), COALESCE(SUM(size_bytes), 0)
FROM documents
WHERE user_id = $1`
	if err := r.DB.QueryRowContext(ctx, totals, userId).Scan(&stats.TotalDocuments, &stats.TotalSizeBytes); err != nil {
		return Stats{}, err
	}

	const byType = `
SELECT mime_type, COUNT(*)
FROM documents
WHERE user_id = $1
GROUP BY mime_type`
	rows, err := r.DB.QueryContext(ctx, byType, userId)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var mimeType string
		var count int
		if err := rows.Scan(&mimeType, &count); err != nil {
			return Stats{}, err
		}
		stats.ByMimeType[mimeType] = count
	}
	return stats, rows.Err()
}

var _ DocumentsRepo = (*PGRepo)(nil)
