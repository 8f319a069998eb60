package synopsis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements SynopsisRepo using Postgres. Extraction fields live in a
// JSONB column and are addressed with the ->> operator.
type PGRepo struct {
	DB *sql.DB
}

const synopsisColumns = `id, user_id, COALESCE(document_id, ''), title, fields, created_at, updated_at`

func (r *PGRepo) Create(ctx context.Context, s Synopsis) error {
	const query = `
INSERT INTO synopses (id, user_id, document_id, title, fields, created_at, updated_at)
VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7)`

	fields, err := marshalFields(s.Fields)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query, s.ID, s.UserID, s.DocumentID, s.Title, fields, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userId, id string) (Synopsis, error) {
	query := fmt.Sprintf(`SELECT %s FROM synopses WHERE user_id = $1 AND id = $2 LIMIT 1`, synopsisColumns)
	return scanSynopsis(r.DB.QueryRowContext(ctx, query, userId, id))
}

func (r *PGRepo) Update(ctx context.Context, s Synopsis) error {
	const query = `
UPDATE synopses
SET title = $3, document_id = NULLIF($4, ''), fields = $5, updated_at = $6
WHERE user_id = $1 AND id = $2`

	fields, err := marshalFields(s.Fields)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query, s.UserID, s.ID, s.Title, s.DocumentID, fields, s.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, userId, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM synopses WHERE user_id = $1 AND id = $2`, userId, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) ListByUser(ctx context.Context, userId string, opts ListOptions) ([]Synopsis, int, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	if !validSortFields[opts.SortField] {
		opts.SortField = "created_at"
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM synopses WHERE user_id = $1`, userId).Scan(&total); err != nil {
		return nil, 0, err
	}

	orderExpr := "created_at"
	if opts.SortField != "created_at" {
		// Sort fields other than created_at come from the JSONB column. The
		// field name is vetted against validSortFields above.
		orderExpr = fmt.Sprintf("fields->>'%s'", opts.SortField)
	}
	direction := "ASC"
	if opts.Descending {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
SELECT %s FROM synopses
WHERE user_id = $1
ORDER BY %s %s
LIMIT $2 OFFSET $3`, synopsisColumns, orderExpr, direction)

	rows, err := r.DB.QueryContext(ctx, query, userId, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	list, err := collectSynopses(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *PGRepo) Search(ctx context.Context, userId, query string, limit int) ([]Synopsis, error) {
	if limit <= 0 {
		limit = 10
	}
	pattern := "%" + query + "%"

	sqlQuery := fmt.Sprintf(`
SELECT %s FROM synopses
WHERE user_id = $1 AND (
	fields->>'tender_name' ILIKE $2 OR
	fields->>'customer_name' ILIKE $2 OR
	fields->>'consultant_name' ILIKE $2 OR
	fields->>'cbs_software' ILIKE $2
)
ORDER BY
	CASE
		WHEN fields->>'tender_name' ILIKE $2 THEN 1
		WHEN fields->>'customer_name' ILIKE $2 THEN 2
		ELSE 3
	END,
	created_at DESC
LIMIT $3`, synopsisColumns)

	rows, err := r.DB.QueryContext(ctx, sqlQuery, userId, pattern, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSynopses(rows)
}

func (r *PGRepo) Recent(ctx context.Context, userId string, limit int) ([]Synopsis, error) {
	if limit <= 0 {
		limit = 5
	}
	query := fmt.Sprintf(`
SELECT %s FROM synopses
WHERE user_id = $1
ORDER BY updated_at DESC
LIMIT $2`, synopsisColumns)

	rows, err := r.DB.QueryContext(ctx, query, userId, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSynopses(rows)
}

func (r *PGRepo) StatsByUser(ctx context.Context, userId string) (Stats, error) {
	const query = `
SELECT
	COUNT(*),
	COUNT(*) FILTER (WHERE COALESCE(fields->>'submission_date', '') <> ''),
	COUNT(*) FILTER (WHERE COALESCE(fields->>'tender_fee', '') <> ''),
	COUNT(*) FILTER (WHERE document_id IS NOT NULL),
	COALESCE(MIN(NULLIF(fields->>'submission_date', '')), ''),
	COALESCE(MAX(NULLIF(fields->>'submission_date', '')), '')
FROM synopses
WHERE user_id = $1`

	var stats Stats
	err := r.DB.QueryRowContext(ctx, query, userId).Scan(
		&stats.Total,
		&stats.WithSubmissionDate,
		&stats.WithTenderFee,
		&stats.WithDocuments,
		&stats.EarliestSubmission,
		&stats.LatestSubmission,
	)
	if err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (r *PGRepo) UnbindDocument(ctx context.Context, userId, documentID string) (int, error) {
	const query = `
UPDATE synopses
SET document_id = NULL
WHERE user_id = $1 AND document_id = $2`

	res, err := r.DB.ExecContext(ctx, query, userId, documentID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func marshalFields(fields map[string]string) ([]byte, error) {
	if fields == nil {
		fields = map[string]string{}
	}
	return json.Marshal(fields)
}

func scanSynopsis(row *sql.Row) (Synopsis, error) {
	var s Synopsis
	var fields []byte
	err := row.Scan(&s.ID, &s.UserID, &s.DocumentID, &s.Title, &fields, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Synopsis{}, ErrNotFound
	}
	if err != nil {
		return Synopsis{}, err
	}
	if err := json.Unmarshal(fields, &s.Fields); err != nil {
		return Synopsis{}, err
	}
	return s, nil
}

func collectSynopses(rows *sql.Rows) ([]Synopsis, error) {
	var list []Synopsis
	for rows.Next() {
		var s Synopsis
		var fields []byte
		if err := rows.Scan(&s.ID, &s.UserID, &s.DocumentID, &s.Title, &fields, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(fields, &s.Fields); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

var _ SynopsisRepo = (*PGRepo)(nil)
