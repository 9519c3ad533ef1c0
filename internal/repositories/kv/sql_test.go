package kv

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accessflow/internal/migrations"
)

func openTestSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenSQLite_MigrationsAreIdempotent(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "kv.db")

	db, err := OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, NewSQLiteRepository(db).Set(ctx, "k", []byte("v")))
	require.NoError(t, db.Close())

	db, err = OpenSQLite(ctx, dsn)
	require.NoError(t, err)
	defer db.Close()

	v, err := NewSQLiteRepository(db).Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
}

func TestSQLiteRepository_SetMany(t *testing.T) {
	r := NewSQLiteRepository(openTestSQLite(t))
	ctx := context.Background()

	require.NoError(t, r.SetMany(ctx,
		Entry{Key: "users", Value: []byte(`[]`)},
		Entry{Key: "user", Value: []byte(`null`)},
	))

	v, err := r.Get(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), v)

	v, err = r.Get(ctx, "user")
	require.NoError(t, err)
	assert.Equal(t, []byte(`null`), v)
}

func TestSQLiteRepository_ClosedDB(t *testing.T) {
	db := openTestSQLite(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())
	ctx := context.Background()

	_, err := r.Get(ctx, "k")
	assert.ErrorContains(t, err, "failed to get kv[k]")
	assert.ErrorContains(t, r.Set(ctx, "k", nil), "failed to set kv[k]")
	assert.ErrorContains(t, r.Delete(ctx, "k"), "failed to delete kv[k]")
}

func newPostgresMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const (
	pgGet    = `SELECT value FROM kv_store WHERE key = $1`
	pgUpsert = `INSERT INTO kv_store (key, value) VALUES ($1, $2) ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	pgDelete = `DELETE FROM kv_store WHERE key = $1`
)

func TestPostgresRepository_Get(t *testing.T) {
	r, mock := newPostgresMock(t)
	mock.ExpectQuery(pgGet).WithArgs("cart").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`[]`)))

	v, err := r.Get(context.Background(), "cart")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Get_EmptyValueIsPresent(t *testing.T) {
	r, mock := newPostgresMock(t)
	mock.ExpectQuery(pgGet).WithArgs("cart").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte{}))

	v, err := r.Get(context.Background(), "cart")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Empty(t, v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteRepository_EmptyBlobIsPresent(t *testing.T) {
	db := openTestSQLite(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := db.ExecContext(ctx, `INSERT INTO kv_store (key, value) VALUES ('cart', x'')`)
	require.NoError(t, err)

	v, err := r.Get(ctx, "cart")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Empty(t, v)
}

func TestPostgresRepository_Get_NoRows(t *testing.T) {
	r, mock := newPostgresMock(t)
	mock.ExpectQuery(pgGet).WithArgs("cart").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))

	v, err := r.Get(context.Background(), "cart")
	require.NoError(t, err)
	assert.Nil(t, v)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_Get_Error(t *testing.T) {
	r, mock := newPostgresMock(t)
	mock.ExpectQuery(pgGet).WithArgs("cart").WillReturnError(errors.New("boom"))

	_, err := r.Get(context.Background(), "cart")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestPostgresRepository_SetAndDelete(t *testing.T) {
	r, mock := newPostgresMock(t)
	mock.ExpectExec(pgUpsert).WithArgs("k", []byte("v")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pgDelete).WithArgs("k").WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	require.NoError(t, r.Set(ctx, "k", []byte("v")))
	require.NoError(t, r.Delete(ctx, "k"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SetMany_Commits(t *testing.T) {
	r, mock := newPostgresMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(pgUpsert).WithArgs("a", []byte("1")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(pgUpsert).WithArgs("b", []byte("2")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := r.SetMany(context.Background(),
		Entry{Key: "a", Value: []byte("1")},
		Entry{Key: "b", Value: []byte("2")},
	)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_SetMany_RollsBack(t *testing.T) {
	r, mock := newPostgresMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(pgUpsert).WithArgs("a", []byte("1")).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := r.SetMany(context.Background(), Entry{Key: "a", Value: []byte("1")})
	require.ErrorContains(t, err, "disk full")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_UpError(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	old := gooseUpContext
	t.Cleanup(func() { gooseUpContext = old })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return errors.New("no table for you")
	}

	err = RunMigrations(context.Background(), db, "postgres", migrations.PostgresDir)
	require.ErrorContains(t, err, "failed to run migrations")
	assert.Equal(t, migrations.PostgresDir, gotDir)
}

func TestRunMigrations_BadDialect(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	err = RunMigrations(context.Background(), db, "no-such-dialect", migrations.SQLiteDir)
	require.ErrorContains(t, err, "failed to set goose dialect")
}
