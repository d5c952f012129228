package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	indexFile = "index.db"
	// Fixed width so that created_at sorts as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// Index is a SQLite catalog of run metadata. The run directories remain
// the source of truth; Rebuild recreates the catalog from them.
type Index struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

func NewIndex(baseDir string) *Index {
	return &Index{path: filepath.Join(baseDir, indexFile)}
}

func (x *Index) Init(ctx context.Context) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", x.path)
	if err != nil {
		return err
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return err
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	x.db = db
	return nil
}

func (x *Index) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if x.db == nil {
		return nil
	}
	err := x.db.Close()
	x.db = nil
	return err
}

func (x *Index) Add(ctx context.Context, meta RunMetadata) error {
	db, err := x.getDB()
	if err != nil {
		return err
	}

	metrics, err := json.Marshal(meta.Metrics)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, name, created_at, precision, dt, steps, nu, nx, ny, controller, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			created_at = excluded.created_at,
			precision = excluded.precision,
			dt = excluded.dt,
			steps = excluded.steps,
			nu = excluded.nu,
			nx = excluded.nx,
			ny = excluded.ny,
			controller = excluded.controller,
			metrics = excluded.metrics
	`, meta.ID, meta.Name, meta.Timestamp.UTC().Format(timeLayout), meta.Precision, meta.Dt, meta.Steps,
		meta.Shape.NU, meta.Shape.NX, meta.Shape.NY, meta.Controller, metrics)
	return err
}

func (x *Index) Remove(ctx context.Context, id string) error {
	db, err := x.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	return err
}

// List returns catalogued runs newest first. An empty name matches every
// run; limit <= 0 means no limit.
func (x *Index) List(ctx context.Context, name string, limit int) ([]RunMetadata, error) {
	db, err := x.getDB()
	if err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = -1
	}
	rows, err := db.QueryContext(ctx, `
		SELECT id, name, created_at, precision, dt, steps, nu, nx, ny, controller, metrics
		FROM runs
		WHERE ? = '' OR name = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, name, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		var (
			meta    RunMetadata
			created string
			metrics []byte
		)
		if err := rows.Scan(&meta.ID, &meta.Name, &created, &meta.Precision, &meta.Dt, &meta.Steps,
			&meta.Shape.NU, &meta.Shape.NX, &meta.Shape.NY, &meta.Controller, &metrics); err != nil {
			return nil, err
		}
		meta.Timestamp, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, fmt.Errorf("storage: run %s: %w", meta.ID, err)
		}
		if err := json.Unmarshal(metrics, &meta.Metrics); err != nil {
			return nil, fmt.Errorf("storage: run %s: %w", meta.ID, err)
		}
		runs = append(runs, meta)
	}
	return runs, rows.Err()
}

// Rebuild replaces the catalog with the metadata found in the store.
func (x *Index) Rebuild(ctx context.Context, s *Store) (int, error) {
	db, err := x.getDB()
	if err != nil {
		return 0, err
	}

	runs, err := s.List()
	if err != nil {
		return 0, err
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM runs`); err != nil {
		return 0, err
	}
	for _, meta := range runs {
		if err := x.Add(ctx, meta); err != nil {
			return 0, err
		}
	}
	return len(runs), nil
}

func (x *Index) getDB() (*sql.DB, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if x.db == nil {
		return nil, errors.New("storage: index is not initialized")
	}
	return x.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL,
			precision TEXT NOT NULL,
			dt REAL NOT NULL,
			steps INTEGER NOT NULL,
			nu INTEGER NOT NULL,
			nx INTEGER NOT NULL,
			ny INTEGER NOT NULL,
			controller TEXT NOT NULL,
			metrics BLOB NOT NULL
		)
	`)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS runs_name ON runs (name, created_at)`)
	return err
}
