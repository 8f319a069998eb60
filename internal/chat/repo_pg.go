package chat

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements ChatRepo using Postgres. Message rows cascade with their
// session through the schema's foreign key.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) CreateSession(ctx context.Context, s Session) error {
	const query = `
INSERT INTO chat_sessions (id, user_id, title, document_id, created_at, updated_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)`

	_, err := r.DB.ExecContext(ctx, query, s.ID, s.UserID, s.Title, s.DocumentID, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *PGRepo) GetSession(ctx context.Context, userId, sessionID string) (Session, error) {
	const query = `
SELECT id, user_id, title, COALESCE(document_id, ''), created_at, updated_at
FROM chat_sessions
WHERE user_id = $1 AND id = $2
LIMIT 1`

	var s Session
	err := r.DB.QueryRowContext(ctx, query, userId, sessionID).Scan(
		&s.ID, &s.UserID, &s.Title, &s.DocumentID, &s.CreatedAt, &s.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrSessionNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return s, nil
}

func (r *PGRepo) UpdateSession(ctx context.Context, s Session) error {
	const query = `
UPDATE chat_sessions
SET title = $3, document_id = NULLIF($4, ''), updated_at = $5
WHERE user_id = $1 AND id = $2`

	res, err := r.DB.ExecContext(ctx, query, s.UserID, s.ID, s.Title, s.DocumentID, s.UpdatedAt)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *PGRepo) ListSessions(ctx context.Context, userId string, limit, offset int) ([]SessionSummary, error) {
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
SELECT s.id, s.user_id, s.title, COALESCE(s.document_id, ''), s.created_at, s.updated_at,
	COUNT(m.id) AS message_count,
	COALESCE(MAX(m.created_at), s.updated_at) AS last_message_at
FROM chat_sessions s
LEFT JOIN chat_messages m ON m.session_id = s.id
WHERE s.user_id = $1
GROUP BY s.id
ORDER BY last_message_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userId, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(
			&sum.ID, &sum.UserID, &sum.Title, &sum.DocumentID, &sum.CreatedAt, &sum.UpdatedAt,
			&sum.MessageCount, &sum.LastMessageAt,
		); err != nil {
			return nil, err
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

func (r *PGRepo) DeleteSession(ctx context.Context, userId, sessionID string) error {
	const query = `DELETE FROM chat_sessions WHERE user_id = $1 AND id = $2`

	res, err := r.DB.ExecContext(ctx, query, userId, sessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *PGRepo) UnbindDocument(ctx context.Context, userId, documentID string) (int, error) {
	const query = `
UPDATE chat_sessions
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

func (r *PGRepo) AppendMessage(ctx context.Context, m Message) error {
	const query = `
INSERT INTO chat_messages (id, session_id, role, content, created_at)
VALUES ($1, $2, $3, $4, $5)`

	_, err := r.DB.ExecContext(ctx, query, m.ID, m.SessionID, m.Role, m.Content, m.CreatedAt)
	return err
}

func (r *PGRepo) ListMessages(ctx context.Context, sessionID string, limit, offset int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	const query = `
SELECT id, session_id, role, content, created_at
FROM chat_messages
WHERE session_id = $1
ORDER BY created_at ASC
LIMIT $2 OFFSET $3`

	return r.queryMessages(ctx, query, sessionID, limit, offset)
}

func (r *PGRepo) RecentMessages(ctx context.Context, sessionID string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 10
	}

	// Newest N rows, returned in conversation order.
	const query = `
SELECT id, session_id, role, content, created_at
FROM (
	SELECT id, session_id, role, content, created_at
	FROM chat_messages
	WHERE session_id = $1
	ORDER BY created_at DESC
	LIMIT $2
) recent
ORDER BY created_at ASC`

	return r.queryMessages(ctx, query, sessionID, limit)
}

func (r *PGRepo) ClearMessages(ctx context.Context, sessionID string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM chat_messages WHERE session_id = $1`, sessionID)
	return err
}

func (r *PGRepo) queryMessages(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

var _ ChatRepo = (*PGRepo)(nil)
