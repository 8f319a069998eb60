package synopsis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateMarshalsFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	s := Synopsis{
		ID:         "syn-1",
		UserID:     "guest:alice",
		DocumentID: "doc-1",
		Title:      "Springfield IT tender",
		Fields:     map[string]string{"tender_name": "Springfield IT"},
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	mock.ExpectExec("INSERT INTO synopses").
		WithArgs(
			"syn-1",
			"guest:alice",
			"doc-1",
			"Springfield IT tender",
			[]byte(`{"tender_name":"Springfield IT"}`),
			now,
			now,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT (.+) FROM synopses").
		WithArgs("guest:alice", "missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "document_id", "title", "fields", "created_at", "updated_at",
		}))

	if _, err := repo.GetByID(context.Background(), "guest:alice", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUserSortsByVettedField(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM synopses").
		WithArgs("guest:alice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("ORDER BY fields->>'tender_name' DESC").
		WithArgs("guest:alice", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "document_id", "title", "fields", "created_at", "updated_at",
		}).AddRow("syn-1", "guest:alice", "", "Springfield IT tender", []byte(`{"tender_name":"Springfield IT"}`), now, now))

	list, total, err := repo.ListByUser(context.Background(), "guest:alice", ListOptions{
		SortField:  "tender_name",
		Descending: true,
		Limit:      20,
	})
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("total = %d, len = %d, want 1 and 1", total, len(list))
	}
	if list[0].Fields["tender_name"] != "Springfield IT" {
		t.Fatalf("fields not unmarshaled: %+v", list[0].Fields)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListByUserRejectsUnknownSortField(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	// An unvetted sort field falls back to created_at; the JSONB operator
	// never appears in the query.
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM synopses").
		WithArgs("guest:alice").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("ORDER BY created_at ASC").
		WithArgs("guest:alice", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "document_id", "title", "fields", "created_at", "updated_at",
		}))

	if _, _, err := repo.ListByUser(context.Background(), "guest:alice", ListOptions{
		SortField: "fields->>'x'; DROP TABLE synopses",
		Limit:     20,
	}); err != nil {
		t.Fatalf("ListByUser: %v", err)
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

	mock.ExpectExec("UPDATE synopses").
		WithArgs("guest:alice", "doc-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.UnbindDocument(context.Background(), "guest:alice", "doc-1")
	if err != nil {
		t.Fatalf("UnbindDocument: %v", err)
	}
	if n != 2 {
		t.Fatalf("n = %d, want 2", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
