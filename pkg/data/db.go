package data

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"
	memoryPath = ":memory:"
)

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")
)

// Store holds the working tables for a single scoring run.
type Store struct {
	db *sql.DB
}

// Open creates an in-memory database and applies the schema.
func Open(ctx context.Context) (*Store, error) {
	db, err := GetDB(memoryPath)
	if err != nil {
		return nil, err
	}

	// every :memory: connection is its own database
	db.SetMaxOpenConns(1)

	b, err := f.ReadFile("sql/ddl.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read the schema creation file: %w", err)
	}
	if _, err := db.ExecContext(ctx, string(b)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create database schema: %w", err)
	}
	slog.Debug("db schema created")

	return &Store{db: db}, nil
}

// GetDB opens a sqlite database at path.
func GetDB(path string) (*sql.DB, error) {
	if path == "" {
		return nil, errors.New("db path not specified")
	}
	conn, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return conn, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) conn() (*sql.DB, error) {
	if s == nil || s.db == nil {
		return nil, errDBNotInitialized
	}
	return s.db, nil
}

// Load inserts observations into the result table in a single transaction.
func (s *Store) Load(ctx context.Context, list []Observation) error {
	db, err := s.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting result tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, insertResultSQL)
	if err != nil {
		return fmt.Errorf("error preparing result insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range list {
		var avg sql.NullFloat64
		if o.Average.Valid {
			avg = sql.NullFloat64{Float64: o.Average.Value, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i+1, o.Submission, o.Schedule, avg, !o.Average.Valid); err != nil {
			return fmt.Errorf("error inserting result %d (%s/%s): %w", i+1, o.Submission, o.Schedule, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing results: %w", err)
	}

	slog.Debug("results loaded", "count", len(list))
	return nil
}
