package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore keeps form fields in the form_fields table. Each store is
// bound to one scope so several instances can share a database.
type PostgresStore struct {
	DB    *sql.DB
	scope string
}

// OpenPostgres connects, pings and migrates. scope may be empty.
func OpenPostgres(ctx context.Context, dsn, scope string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &PostgresStore{DB: db, scope: scope}
	if err := s.migrate(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS form_fields (
			scope      TEXT NOT NULL DEFAULT '',
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (scope, key)
		);`,
	}
	for _, q := range stmts {
		if _, err := s.DB.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the connection pool
func (s *PostgresStore) Close() error { return s.DB.Close() }

func (s *PostgresStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := s.DB.QueryRowContext(ctx,
		`SELECT value FROM form_fields WHERE scope=$1 AND key=$2`, s.scope, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *PostgresStore) SetItem(ctx context.Context, key, value string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO form_fields (scope, key, value, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (scope, key) DO UPDATE SET value=EXCLUDED.value, updated_at=EXCLUDED.updated_at`,
		s.scope, key, value)
	return err
}

func (s *PostgresStore) RemoveItem(ctx context.Context, key string) error {
	_, err := s.DB.ExecContext(ctx,
		`DELETE FROM form_fields WHERE scope=$1 AND key=$2`, s.scope, key)
	return err
}
