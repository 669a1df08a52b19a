package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"sync"

	_ "github.com/lib/pq"
)

//go:embed migrations.sql
var migrationSQL string

// PostgresStore is a Store backed by a single Postgres table and has in-process locks
type PostgresStore struct {
	DB *sql.DB

	// per-key mutexes so goroutines in this process queue up on the same key
	// before they reach the row lock. Keys are store key -> *sync.Mutex
	locks sync.Map
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	DB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := DB.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{DB: DB}, nil
}

func (s *PostgresStore) Close() error { return s.DB.Close() }

// Migrate creates the kv_entries table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, migrationSQL)
	return err
}

// helper: acquire per-key lock (process-local). Returns unlock func.
func (s *PostgresStore) lockForKey(key string) func() {
	return lockFrom(&s.locks, key)
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.DB.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key=$1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

const upsertSQL = `
		INSERT INTO kv_entries (key, value) VALUES ($1, $2)
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`

// seedSQL inserts an empty placeholder that only survives if the transaction commits.
const seedSQL = `INSERT INTO kv_entries (key, value) VALUES ($1, '') ON CONFLICT (key) DO NOTHING`

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.DB.ExecContext(ctx, upsertSQL, key, value)
	return err
}

// Delete removes key. Deleting a missing key is not an error.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM kv_entries WHERE key=$1`, key)
	return err
}

// Update reads the row under FOR UPDATE, applies fn and writes the result in one transaction.
func (s *PostgresStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	unlock := s.lockForKey(key)
	defer unlock()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	// ensure rollback on early return
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// make sure there is a row to lock; concurrent seeders wait on the primary key
	if _, err := tx.ExecContext(ctx, seedSQL, key); err != nil {
		return err
	}

	var current []byte
	err = tx.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key=$1 FOR UPDATE`, key).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if len(current) == 0 {
		current = nil
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, upsertSQL, key, next); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
