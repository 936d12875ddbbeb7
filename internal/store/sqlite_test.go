package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillnote/quill-sync/internal/logger"
)

func newTestSQLiteStore(t *testing.T) (*sqliteStore, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	s := &sqliteStore{db: db, logger: logger.Nop()}
	return s, mock, db
}

func TestSQLiteGet_Found(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"seq":1}`))
	mock.ExpectQuery("SELECT value FROM kv").
		WithArgs("queue/op/1").
		WillReturnRows(rows)

	value, err := s.Get(context.Background(), "queue/op/1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"seq":1}`), value)
}

func TestSQLiteGet_NotFound(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM kv").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestSQLiteGet_IOFailureIsFatalClass(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	mock.ExpectQuery("SELECT value FROM kv").
		WillReturnError(errors.New("disk I/O error"))

	_, err := s.Get(context.Background(), "any")
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestSQLitePut_Upserts(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO kv").
		WithArgs("meta/base/n1", []byte("v")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, s.Put(context.Background(), "meta/base/n1", []byte("v")))
}

func TestSQLiteDelete_AbsentKeyIsNoop(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	mock.ExpectExec("DELETE FROM kv").
		WithArgs("gone").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.Delete(context.Background(), "gone"))
}

func TestSQLiteList_ReturnsPrefixedKeys(t *testing.T) {
	s, mock, db := newTestSQLiteStore(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"key", "value"}).
		AddRow("queue/op/00000001", []byte("a")).
		AddRow("queue/op/00000002", []byte("b"))
	mock.ExpectQuery("SELECT key, value FROM kv").
		WithArgs(`queue/op/%`).
		WillReturnRows(rows)

	out, err := s.List(context.Background(), "queue/op/")
	require.NoError(t, err)
	assert.Len(t, out, 2)
	assert.Equal(t, []byte("a"), out["queue/op/00000001"])
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `queue/op/`, escapeLike("queue/op/"))
	assert.Equal(t, `a\%b\_c`, escapeLike("a%b_c"))
}
