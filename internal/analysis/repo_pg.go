package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements ResultsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new analysis result.
func (r *PGRepo) Create(ctx context.Context, result Result) error {
	const query = `
INSERT INTO analysis_results (
	id, user_id, analysis_type, document_ids, questions, answers, model, status, created_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	documentIDs, err := marshalJSONB(result.DocumentIDs)
	if err != nil {
		return err
	}
	questions, err := marshalJSONB(result.Questions)
	if err != nil {
		return err
	}
	answers, err := marshalJSONB(result.Answers)
	if err != nil {
		return err
	}

	status := result.Status
	if status == "" {
		status = "completed"
	}

	_, err = r.DB.ExecContext(ctx, query,
		result.ID,
		result.UserID,
		result.AnalysisType,
		documentIDs,
		questions,
		answers,
		result.Model,
		status,
		result.CreatedAt,
	)
	return err
}

// GetByID fetches one result owned by the user.
func (r *PGRepo) GetByID(ctx context.Context, userId, resultID string) (Result, error) {
	const query = `
SELECT id, user_id, analysis_type, document_ids, questions, answers, model, status, created_at
FROM analysis_results
WHERE user_id = $1 AND id = $2
LIMIT 1`
	return scanResult(r.DB.QueryRowContext(ctx, query, userId, resultID))
}

// ListByUser returns results newest-first with the total matching count.
func (r *PGRepo) ListByUser(ctx context.Context, userId, analysisType string, limit, offset int) ([]Result, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	countQuery := `SELECT COUNT(*) FROM analysis_results WHERE user_id = $1`
	listQuery := `
SELECT id, user_id, analysis_type, document_ids, questions, answers, model, status, created_at
FROM analysis_results
WHERE user_id = $1`
	args := []any{userId}
	if analysisType != "" {
		countQuery += ` AND analysis_type = $2`
		listQuery += ` AND analysis_type = $2`
		args = append(args, analysisType)
	}
	listQuery += ` ORDER BY created_at DESC`

	var total int
	if err := r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	if analysisType != "" {
		listQuery += ` LIMIT $3 OFFSET $4`
	} else {
		listQuery += ` LIMIT $2 OFFSET $3`
	}

	rows, err := r.DB.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, result)
	}
	return out, total, rows.Err()
}

// Delete removes one result owned by the user.
func (r *PGRepo) Delete(ctx context.Context, userId, resultID string) error {
	const query = `DELETE FROM analysis_results WHERE user_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, userId, resultID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteByDocument removes all results referencing a document.
func (r *PGRepo) DeleteByDocument(ctx context.Context, userId, documentID string) (int, error) {
	const query = `
DELETE FROM analysis_results
WHERE user_id = $1 AND document_ids @> to_jsonb(ARRAY[$2::text])`
	res, err := r.DB.ExecContext(ctx, query, userId, documentID)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

// StatsByUser aggregates totals, per-type counts and the last 30 days of activity.
func (r *PGRepo) StatsByUser(ctx context.Context, userId string) (Stats, error) {
	stats := Stats{ByType: make(map[string]int)}

	const byType = `
SELECT analysis_type, COUNT(*)
FROM analysis_results
WHERE user_id = $1
GROUP BY analysis_type`
	rows, err := r.DB.QueryContext(ctx, byType, userId)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var analysisType string
		var count int
		if err := rows.Scan(&analysisType, &count); err != nil {
			return Stats{}, err
		}
		stats.ByType[analysisType] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return Stats{}, err
	}

	const daily = `
SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS analysis_date, COUNT(id)
FROM analysis_results
WHERE user_id = $1
GROUP BY date_trunc('day', created_at)
ORDER BY date_trunc('day', created_at) DESC
LIMIT 30`
	dailyRows, err := r.DB.QueryContext(ctx, daily, userId)
	if err != nil {
		return Stats{}, err
	}
	defer dailyRows.Close()
	for dailyRows.Next() {
		var day DailyCount
		if err := dailyRows.Scan(&day.Date, &day.Count); err != nil {
			return Stats{}, err
		}
		stats.DailyActivity = append(stats.DailyActivity, day)
	}
	return stats, dailyRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (Result, error) {
	var result Result
	var documentIDs, questions, answers []byte
	err := row.Scan(
		&result.ID,
		&result.UserID,
		&result.AnalysisType,
		&documentIDs,
		&questions,
		&answers,
		&result.Model,
		&result.Status,
		&result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrNotFound
		}
		return Result{}, err
	}
	if len(documentIDs) > 0 {
		if err := json.Unmarshal(documentIDs, &result.DocumentIDs); err != nil {
			return Result{}, err
		}
	}
	if len(questions) > 0 {
		if err := json.Unmarshal(questions, &result.Questions); err != nil {
			return Result{}, err
		}
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &result.Answers); err != nil {
			return Result{}, err
		}
	}
	return result, nil
}

func marshalJSONB(value any) ([]byte, error) {
	if value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(value)
}

var _ ResultsRepo = (*PGRepo)(nil)
