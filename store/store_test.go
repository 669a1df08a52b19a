package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresGet_FoundAndMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer db.Close()

	s := &PostgresStore{DB: db}
	ctx := context.Background()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries WHERE key=$1`)).
		WithArgs(KeyCart).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[{"id":1}]`)))

	got, err := s.Get(ctx, KeyCart)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `[{"id":1}]` {
		t.Fatalf("unexpected value %q", got)
	}

	// no rows -> ErrNotFound
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries WHERE key=$1`)).
		WithArgs(KeyUsers).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	if _, err := s.Get(ctx, KeyUsers); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresPutAndDelete(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(upsertSQL)).
		WithArgs(KeyCart, []byte(`[]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	if err := s.Put(ctx, KeyCart, []byte(`[]`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// deleting a missing key is fine
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM kv_entries WHERE key=$1`)).
		WithArgs(KeyCurrentUser).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := s.Delete(ctx, KeyCurrentUser); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdate_Success(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(seedSQL)).
		WithArgs(KeyUsers).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries WHERE key=$1 FOR UPDATE`)).
		WithArgs(KeyUsers).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`["a"]`)))
	mock.ExpectExec(regexp.QuoteMeta(upsertSQL)).
		WithArgs(KeyUsers, []byte(`["a","b"]`)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	var seen string
	err := s.Update(context.Background(), KeyUsers, func(current []byte) ([]byte, error) {
		seen = string(current)
		return []byte(`["a","b"]`), nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if seen != `["a"]` {
		t.Fatalf("fn saw %q", seen)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdate_MissingRowAndAbort(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	// missing row -> seeded and locked before fn runs; fn error -> seed rolled back
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(seedSQL)).
		WithArgs(KeyUsers).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM kv_entries WHERE key=$1 FOR UPDATE`)).
		WithArgs(KeyUsers).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte{}))
	mock.ExpectRollback()

	abort := errors.New("duplicate")
	var sawNil bool
	err := s.Update(context.Background(), KeyUsers, func(current []byte) ([]byte, error) {
		sawNil = current == nil
		return nil, abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("expected abort error, got %v", err)
	}
	if !sawNil {
		t.Fatalf("expected nil current value for a freshly seeded row")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresMigrate(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectExec(regexp.QuoteMeta(migrationSQL)).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresUpdate_SeedFailureAborts(t *testing.T) {
	db, mock, _ := sqlmock.New()
	defer db.Close()
	s := &PostgresStore{DB: db}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(seedSQL)).
		WithArgs(KeyOrders).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	called := false
	err := s.Update(context.Background(), KeyOrders, func(current []byte) ([]byte, error) {
		called = true
		return current, nil
	})
	if err == nil {
		t.Fatalf("expected seed error")
	}
	if called {
		t.Fatalf("fn must not run when the row could not be locked")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
