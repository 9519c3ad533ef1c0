package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accessflow/internal/dbx"
)

const (
	queryGet    = `SELECT value FROM kv_store WHERE key = ?`
	queryUpsert = `INSERT INTO kv_store (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value`
	queryDelete = `DELETE FROM kv_store WHERE key = ?`
)

// SQLRepository keeps values in the kv_store table created by the embedded
// goose migrations. The same code serves SQLite and PostgreSQL; only the
// placeholder style differs.
type SQLRepository struct {
	db      *sql.DB
	dialect dbx.Dialect
}

func NewSQLiteRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.DialectSQLite}
}

func NewPostgresRepository(db *sql.DB) *SQLRepository {
	return &SQLRepository{db: db, dialect: dbx.DialectPostgres}
}

func (r *SQLRepository) Get(ctx context.Context, key string) ([]byte, error) {
	return r.get(ctx, r.db, key)
}

func (r *SQLRepository) get(ctx context.Context, db dbx.DBTX, key string) ([]byte, error) {
	var value []byte
	err := db.QueryRowContext(ctx, r.dialect.Rebind(queryGet), key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	// an existing row is never absent, even with an empty value
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (r *SQLRepository) Set(ctx context.Context, key string, value []byte) error {
	return r.set(ctx, r.db, key, value)
}

func (r *SQLRepository) set(ctx context.Context, db dbx.DBTX, key string, value []byte) error {
	if _, err := db.ExecContext(ctx, r.dialect.Rebind(queryUpsert), key, value); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.dialect.Rebind(queryDelete), key); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

// SetMany upserts all entries in a single transaction.
func (r *SQLRepository) SetMany(ctx context.Context, entries ...Entry) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, e := range entries {
			if err := r.set(ctx, tx, e.Key, e.Value); err != nil {
				return err
			}
		}
		return nil
	})
}
