package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteBackend struct {
	db   *sql.DB
	path string
}

func NewSQLiteBackend(ctx context.Context, path string) (*SQLiteBackend, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS snapshots (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		data BLOB NOT NULL,
		saved_at INTEGER NOT NULL
	);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &SQLiteBackend{db: db, path: path}, nil
}

func (s *SQLiteBackend) Name() string { return "sqlite:" + s.path }

func (s *SQLiteBackend) Read(ctx context.Context) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM snapshots WHERE id = 1`).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *SQLiteBackend) Write(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, data, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET data = excluded.data, saved_at = excluded.saved_at`,
		data, time.Now().Unix())
	return err
}

func (s *SQLiteBackend) Close() error {
	return s.db.Close()
}
