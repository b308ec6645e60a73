// Package store keeps SQLite snapshots of loaded data sets so that an upload
// can still be inspected after a newer one replaced it in memory.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jalad-shrimali/bureaux-filter/bureau"
)

var ErrNotFound = errors.New("dataset not found")

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
    id           TEXT PRIMARY KEY,
    file_name    TEXT NOT NULL,
    loaded_at    INTEGER NOT NULL,
    record_count INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
    dataset_id   TEXT NOT NULL REFERENCES datasets(id) ON DELETE CASCADE,
    position     INTEGER NOT NULL,
    title        TEXT NOT NULL,
    location     TEXT NOT NULL,
    city         TEXT NOT NULL,
    phone        TEXT NOT NULL,
    fax          TEXT NOT NULL,
    category_raw TEXT NOT NULL,
    identifier   TEXT NOT NULL,
    PRIMARY KEY (dataset_id, position)
);
CREATE INDEX IF NOT EXISTS records_city ON records(dataset_id, city);`

// Snapshot describes one stored data set.
type Snapshot struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	LoadedAt    time.Time `json:"loaded_at"`
	RecordCount int       `json:"record_count"`
}

type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path))
	if err != nil {
		return nil, fmt.Errorf("cannot open snapshot DB at %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save writes ds and all its records in one transaction.
func (s *Store) Save(ctx context.Context, ds *bureau.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO datasets (id, file_name, loaded_at, record_count) VALUES (?, ?, ?, ?)`,
		ds.ID, ds.FileName, ds.LoadedAt.UnixNano(), len(ds.Records)); err != nil {
		return fmt.Errorf("insert dataset: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO records (dataset_id, position, title, location, city, phone, fax, category_raw, identifier)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range ds.Records {
		if _, err := stmt.ExecContext(ctx, ds.ID, i,
			r.Title, r.Location, r.City, r.Phone, r.Fax, r.CategoryRaw, r.Identifier); err != nil {
			return fmt.Errorf("insert record %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Datasets lists stored snapshots, newest first.
func (s *Store) Datasets(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, file_name, loaded_at, record_count
          FROM datasets
         ORDER BY loaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Snapshot{}
	for rows.Next() {
		var snap Snapshot
		var nanos int64
		if err := rows.Scan(&snap.ID, &snap.FileName, &nanos, &snap.RecordCount); err != nil {
			return nil, err
		}
		snap.LoadedAt = time.Unix(0, nanos).UTC()
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Load rebuilds a stored data set. Categories are split again from the raw
// cell, exactly as at upload time.
func (s *Store) Load(ctx context.Context, id string) (*bureau.Dataset, error) {
	ds := &bureau.Dataset{ID: id}
	var nanos int64
	err := s.db.QueryRowContext(ctx,
		`SELECT file_name, loaded_at FROM datasets WHERE id = ?`, id).Scan(&ds.FileName, &nanos)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ds.LoadedAt = time.Unix(0, nanos).UTC()

	rows, err := s.db.QueryContext(ctx, `
        SELECT title, location, city, phone, fax, category_raw, identifier
          FROM records
         WHERE dataset_id = ?
         ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ds.Records = []bureau.Record{}
	for rows.Next() {
		var r bureau.Record
		if err := rows.Scan(&r.Title, &r.Location, &r.City, &r.Phone, &r.Fax, &r.CategoryRaw, &r.Identifier); err != nil {
			return nil, err
		}
		r.Categories = bureau.SplitCategories(r.CategoryRaw)
		ds.Records = append(ds.Records, r)
	}
	return ds, rows.Err()
}
