package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoGetSessionNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT (.+) FROM chat_sessions").
		WithArgs("guest:alice", "missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "title", "document_id", "created_at", "updated_at",
		}))

	if _, err := repo.GetSession(context.Background(), "guest:alice", "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoAppendMessage(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	msg := Message{
		ID:        "msg-1",
		SessionID: "sess-1",
		Role:      RoleUser,
		Content:   "What is the budget?",
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO chat_messages").
		WithArgs(msg.ID, msg.SessionID, msg.Role, msg.Content, msg.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.AppendMessage(context.Background(), msg); err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUnbindDocumentReportsCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("UPDATE chat_sessions").
		WithArgs("guest:alice", "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.UnbindDocument(context.Background(), "guest:alice", "doc-1")
	if err != nil {
		t.Fatalf("UnbindDocument: %v", err)
	}
	if n != 3 {
		t.Fatalf("unbound = %d, want 3", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
