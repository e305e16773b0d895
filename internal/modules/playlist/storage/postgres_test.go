package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &PostgresStore{db: db}, mock
}

func TestPostgresStore_AppendTracksRollsBackOnMidBatchFailure(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectPrepare(`INSERT INTO tracks`)
	mock.ExpectExec(`INSERT INTO tracks`).
		WithArgs(int64(1), int64(7), "enc-a").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO tracks`).
		WithArgs(int64(1), int64(7), "enc-b").
		WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	err := store.AppendTracks(context.Background(), 1, 7, []string{"enc-a", "enc-b", "enc-c"})
	if err == nil {
		t.Fatal("AppendTracks() should fail when a row insert fails")
	}

	// The transaction rolled back and never committed, so the first row is
	// not observable.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_AppendTracksCommitsFullBatch(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(1), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectPrepare(`INSERT INTO tracks`)
	mock.ExpectExec(`INSERT INTO tracks`).
		WithArgs(int64(1), int64(7), "enc-a").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO tracks`).
		WithArgs(int64(1), int64(7), "enc-b").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	if err := store.AppendTracks(context.Background(), 1, 7, []string{"enc-a", "enc-b"}); err != nil {
		t.Fatalf("AppendTracks() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresStore_AppendTracksRejectsNonOwnerBeforeInsert(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(1), int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	err := store.AppendTracks(context.Background(), 1, 99, []string{"enc-a"})
	if err == nil {
		t.Fatal("AppendTracks() should reject a non-owner")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
